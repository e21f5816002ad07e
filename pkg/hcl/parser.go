// Package hcl parses extraction job definitions written in HCL, and
// sniffs whether a request body is HCL or JSON.
package hcl

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"

	"github.com/leowmjw/go-tutor-featex/pkg/temporal"
)

// Job is one named extraction job from an HCL definition file.
type Job struct {
	Name    string                     `json:"name"`
	Request temporal.ExtractionRequest `json:"request"`
}

// hclJobFile is the top-level HCL structure: one or more job blocks.
type hclJobFile struct {
	Jobs []hclJob `hcl:"job,block"`
}

// hclJob mirrors a single job block.
//
//	job "weekly" {
//	  log_dir         = "/data/logs/week-14"
//	  complexity_file = env("COMPLEXITY_FILE")
//	  output          = "/data/out/week-14.arff"
//	  relation        = "student_features"
//	  max_concurrency = 8
//	}
type hclJob struct {
	Name           string  `hcl:"name,label"`
	LogDir         string  `hcl:"log_dir"`
	ComplexityFile string  `hcl:"complexity_file"`
	Output         string  `hcl:"output"`
	Relation       *string `hcl:"relation,optional"`
	MaxConcurrency *int    `hcl:"max_concurrency,optional"`
}

// ParseJobs parses HCL content into extraction jobs. The filename only
// labels diagnostics.
func ParseJobs(content []byte, filename string) ([]Job, error) {
	parser := hclparse.NewParser()
	file, diags := parser.ParseHCL(content, filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL: %s", diags.Error())
	}

	// Evaluation context with helper functions available to job files
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{
			"env": function.New(&function.Spec{
				Params: []function.Parameter{
					{
						Name: "name",
						Type: cty.String,
					},
				},
				Type: function.StaticReturnType(cty.String),
				Impl: func(args []cty.Value, retType cty.Type) (cty.Value, error) {
					return cty.StringVal(os.Getenv(args[0].AsString())), nil
				},
			}),
		},
	}

	var jobFile hclJobFile
	diags = gohcl.DecodeBody(file.Body, evalCtx, &jobFile)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL body: %s", diags.Error())
	}

	if len(jobFile.Jobs) == 0 {
		return nil, fmt.Errorf("%s defines no job blocks", filename)
	}

	jobs := make([]Job, 0, len(jobFile.Jobs))
	for _, hj := range jobFile.Jobs {
		if hj.LogDir == "" {
			return nil, fmt.Errorf("job %q: log_dir must not be empty", hj.Name)
		}
		if hj.ComplexityFile == "" {
			return nil, fmt.Errorf("job %q: complexity_file must not be empty", hj.Name)
		}
		if hj.Output == "" {
			return nil, fmt.Errorf("job %q: output must not be empty", hj.Name)
		}

		request := temporal.ExtractionRequest{
			LogDir:         hj.LogDir,
			ComplexityFile: hj.ComplexityFile,
			OutputPath:     hj.Output,
		}
		if hj.Relation != nil {
			request.Relation = *hj.Relation
		}
		if hj.MaxConcurrency != nil {
			request.MaxConcurrency = *hj.MaxConcurrency
		}

		jobs = append(jobs, Job{Name: hj.Name, Request: request})
	}

	return jobs, nil
}

// ParseJobFile parses an HCL job definition file from disk.
func ParseJobFile(path string) ([]Job, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseJobs(content, path)
}

// IsHCL attempts to detect if the given content is in HCL format
func IsHCL(content []byte) bool {
	_, err := hclsyntax.ParseConfig(content, "", hcl.Pos{Line: 1, Column: 1})
	return err == nil
}
