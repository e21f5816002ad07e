package temporal

import (
	"strings"
	"testing"
)

func TestGenerateExtractionWorkflowID(t *testing.T) {
	id := GenerateExtractionWorkflowID()
	if !strings.HasPrefix(id, ExtractionWorkflowIDPrefix) {
		t.Errorf("Expected workflow ID with prefix '%s', got '%s'", ExtractionWorkflowIDPrefix, id)
	}

	// IDs carry a UUID so concurrent submissions never collide
	if id == GenerateExtractionWorkflowID() {
		t.Error("Expected distinct workflow IDs for distinct submissions")
	}
}

func TestExtractionRequestStructure(t *testing.T) {
	request := ExtractionRequest{
		LogDir:         "/data/logs",
		ComplexityFile: "/data/complexity.txt",
		OutputPath:     "/data/out.arff",
	}

	if request.LogDir != "/data/logs" {
		t.Errorf("Expected log dir '/data/logs', got '%s'", request.LogDir)
	}
	if request.Relation != "" {
		t.Errorf("Relation should default inside the workflow, got '%s'", request.Relation)
	}
}
