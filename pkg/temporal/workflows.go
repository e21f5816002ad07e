package temporal

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/leowmjw/go-tutor-featex/pkg/extract"
)

const (
	// Workflow IDs
	ExtractionWorkflowIDPrefix = "extraction-"

	// Task queue shared by the server worker and CLI submissions
	TaskQueue = "featex-task-queue"

	// Activity names
	ListLogFilesActivityName = "list-log-files"
	ExtractFileActivityName  = "extract-file"
	WriteOutputActivityName  = "write-output"

	// Default values
	DefaultRelation       = "student_features"
	DefaultMaxConcurrency = 4
)

// ExtractionRequest describes one extraction job: a directory of tutor
// logs that becomes a single ARFF relation on disk.
type ExtractionRequest struct {
	LogDir         string `json:"log_dir"`
	ComplexityFile string `json:"complexity_file"`
	OutputPath     string `json:"output_path"`
	Relation       string `json:"relation,omitempty"`
	MaxConcurrency int    `json:"max_concurrency,omitempty"`
}

// FileRequest asks an activity to extract a single log file.
type FileRequest struct {
	Path           string `json:"path"`
	ComplexityFile string `json:"complexity_file"`
}

// FileResult is the outcome for one log file. Skipped is set for files
// that are not valid UTF-8; those are dropped, not failed.
type FileResult struct {
	Data    *extract.FileData `json:"data,omitempty"`
	Skipped bool              `json:"skipped,omitempty"`
}

// WriteRequest asks an activity to combine per-file results and write
// the relation to OutputPath.
type WriteRequest struct {
	OutputPath string              `json:"output_path"`
	Relation   string              `json:"relation"`
	Files      []*extract.FileData `json:"files"`
}

// ExtractionResult summarizes a completed extraction job.
type ExtractionResult struct {
	OutputPath   string   `json:"output_path"`
	Files        int      `json:"files"`
	SkippedFiles []string `json:"skipped_files,omitempty"`
	Rows         int      `json:"rows"`
	Submissions  int      `json:"submissions"`
}

// ExtractionWorkflow runs one extraction job: list the log files, fan
// out per-file extraction activities, then combine and write the
// relation. Per-file work runs in bounded waves so a directory of
// thousands of logs does not schedule everything at once.
func ExtractionWorkflow(ctx workflow.Context, request ExtractionRequest) (*ExtractionResult, error) {
	logger := workflow.GetLogger(ctx)
	logger.Info("Starting extraction workflow", "logDir", request.LogDir, "output", request.OutputPath)

	if request.Relation == "" {
		request.Relation = DefaultRelation
	}
	concurrency := request.MaxConcurrency
	if concurrency <= 0 {
		concurrency = DefaultMaxConcurrency
	}

	ao := workflow.ActivityOptions{
		ScheduleToCloseTimeout: 5 * time.Minute,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 3,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var paths []string
	err := workflow.ExecuteActivity(ctx, ListLogFilesActivityName, request.LogDir).Get(ctx, &paths)
	if err != nil {
		return nil, fmt.Errorf("failed to list log files: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no log files found in %s", request.LogDir)
	}
	logger.Info("Found log files", "count", len(paths))

	result := &ExtractionResult{OutputPath: request.OutputPath}
	var files []*extract.FileData

	for start := 0; start < len(paths); start += concurrency {
		end := start + concurrency
		if end > len(paths) {
			end = len(paths)
		}
		wave := paths[start:end]

		futures := make([]workflow.Future, len(wave))
		for i, path := range wave {
			futures[i] = workflow.ExecuteActivity(ctx, ExtractFileActivityName, FileRequest{
				Path:           path,
				ComplexityFile: request.ComplexityFile,
			})
		}
		for i, future := range futures {
			var fr FileResult
			if err := future.Get(ctx, &fr); err != nil {
				return nil, fmt.Errorf("failed to extract %s: %w", wave[i], err)
			}
			if fr.Skipped {
				result.SkippedFiles = append(result.SkippedFiles, wave[i])
				continue
			}
			files = append(files, fr.Data)
			result.Files++
			result.Rows += fr.Data.Rows()
			result.Submissions += fr.Data.Submissions
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("every log file in %s was skipped", request.LogDir)
	}

	err = workflow.ExecuteActivity(ctx, WriteOutputActivityName, WriteRequest{
		OutputPath: request.OutputPath,
		Relation:   request.Relation,
		Files:      files,
	}).Get(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to write output: %w", err)
	}

	logger.Info("Extraction completed",
		"files", result.Files,
		"skipped", len(result.SkippedFiles),
		"rows", result.Rows)
	return result, nil
}

// GenerateExtractionWorkflowID creates a workflow ID for an extraction job
func GenerateExtractionWorkflowID() string {
	return ExtractionWorkflowIDPrefix + uuid.NewString()
}
