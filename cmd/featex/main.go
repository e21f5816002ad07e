package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"go.temporal.io/sdk/client"

	"github.com/leowmjw/go-tutor-featex/pkg/extract"
	"github.com/leowmjw/go-tutor-featex/pkg/features"
	"github.com/leowmjw/go-tutor-featex/pkg/hcl"
	"github.com/leowmjw/go-tutor-featex/pkg/temporal"
)

func main() {
	// Set up logging
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Define command line flags
	var (
		jobPath        string
		logDir         string
		complexityFile string
		output         string
		relation       string
		mode           string // "local" or "submit"
		address        string
		namespace      string
		taskQueue      string
		displayJSON    bool
	)

	flag.StringVar(&jobPath, "job", "", "Path to an HCL job file or a directory of them")
	flag.StringVar(&logDir, "dir", "", "Directory of tutor log files (alternative to -job)")
	flag.StringVar(&complexityFile, "complexity", "", "Problem complexity table file")
	flag.StringVar(&output, "out", "", "Output ARFF file")
	flag.StringVar(&relation, "relation", temporal.DefaultRelation, "ARFF relation name")
	flag.StringVar(&mode, "mode", "local", "Operation mode: 'local' or 'submit'")
	flag.StringVar(&address, "address", "localhost:7233", "Address of Temporal server (submit mode)")
	flag.StringVar(&namespace, "namespace", "default", "Temporal namespace (submit mode)")
	flag.StringVar(&taskQueue, "task-queue", temporal.TaskQueue, "Temporal task queue (submit mode)")
	flag.BoolVar(&displayJSON, "json", false, "Display results as JSON")
	flag.Parse()

	if mode != "local" && mode != "submit" {
		logger.Error("Mode must be either 'local' or 'submit'")
		os.Exit(1)
	}

	jobs, err := collectJobs(jobPath, logDir, complexityFile, output, relation, logger)
	if err != nil {
		logger.Error("Failed to collect jobs", "error", err)
		flag.Usage()
		os.Exit(1)
	}

	ctx := context.Background()

	switch mode {
	case "local":
		for _, job := range jobs {
			if err := runLocal(job, logger, displayJSON); err != nil {
				logger.Error("Extraction failed", "job", job.Name, "error", err)
				os.Exit(1)
			}
		}
	case "submit":
		if err := runSubmit(ctx, jobs, address, namespace, taskQueue, logger, displayJSON); err != nil {
			logger.Error("Submission failed", "error", err)
			os.Exit(1)
		}
	}
}

// collectJobs resolves the job list either from HCL definition files or
// from the direct flags.
func collectJobs(jobPath, logDir, complexityFile, output, relation string, logger *slog.Logger) ([]hcl.Job, error) {
	if jobPath == "" {
		if logDir == "" || complexityFile == "" || output == "" {
			return nil, fmt.Errorf("either -job or all of -dir, -complexity and -out are required")
		}
		return []hcl.Job{{
			Name: filepath.Base(logDir),
			Request: temporal.ExtractionRequest{
				LogDir:         logDir,
				ComplexityFile: complexityFile,
				OutputPath:     output,
				Relation:       relation,
			},
		}}, nil
	}

	fileInfo, err := os.Stat(jobPath)
	if err != nil {
		return nil, fmt.Errorf("failed to access path: %w", err)
	}

	var jobFiles []string
	if fileInfo.IsDir() {
		logger.Info("Processing directory", "path", jobPath)
		entries, err := os.ReadDir(jobPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read directory: %w", err)
		}
		for _, e := range entries {
			if e.Type().IsRegular() && hcl.IsHCLBasedOnExtension(e.Name()) {
				jobFiles = append(jobFiles, filepath.Join(jobPath, e.Name()))
			}
		}
		if len(jobFiles) == 0 {
			return nil, fmt.Errorf("no HCL files found in directory")
		}
	} else {
		if !hcl.IsHCLBasedOnExtension(jobPath) {
			return nil, fmt.Errorf("file does not have an HCL extension: %s", jobPath)
		}
		jobFiles = []string{jobPath}
	}

	logger.Info("Found job files", "count", len(jobFiles))

	var jobs []hcl.Job
	for _, f := range jobFiles {
		parsed, err := hcl.ParseJobFile(f)
		if err != nil {
			return nil, fmt.Errorf("parsing %s: %w", f, err)
		}
		jobs = append(jobs, parsed...)
	}
	return jobs, nil
}

// runLocal executes one job in-process, without a Temporal server.
func runLocal(job hcl.Job, logger *slog.Logger, displayJSON bool) error {
	request := job.Request
	if request.Relation == "" {
		request.Relation = temporal.DefaultRelation
	}
	logger.Info("Extracting locally", "job", job.Name, "dir", request.LogDir, "out", request.OutputPath)

	table, err := features.LoadComplexityFile(request.ComplexityFile)
	if err != nil {
		return fmt.Errorf("loading complexity table: %w", err)
	}

	files, err := extract.ProcessDir(request.LogDir, table, logger)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no usable log files in %s", request.LogDir)
	}

	w, err := extract.Combine(request.Relation, files)
	if err != nil {
		return err
	}
	if err := w.WriteFile(request.OutputPath); err != nil {
		return err
	}

	result := temporal.ExtractionResult{
		OutputPath: request.OutputPath,
		Files:      len(files),
	}
	for _, fd := range files {
		result.Rows += fd.Rows()
		result.Submissions += fd.Submissions
	}
	return displayResult(job.Name, &result, logger, displayJSON)
}

// runSubmit sends the jobs to a Temporal worker and waits for results.
func runSubmit(ctx context.Context, jobs []hcl.Job, address, namespace, taskQueue string, logger *slog.Logger, displayJSON bool) error {
	c, err := client.Dial(client.Options{
		HostPort:  address,
		Namespace: namespace,
	})
	if err != nil {
		return fmt.Errorf("unable to create Temporal client: %w", err)
	}
	defer c.Close()

	for _, job := range jobs {
		workflowID := temporal.GenerateExtractionWorkflowID()
		logger.Info("Submitting extraction", "job", job.Name, "workflowID", workflowID)

		run, err := c.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
			ID:        workflowID,
			TaskQueue: taskQueue,
		}, temporal.ExtractionWorkflow, job.Request)
		if err != nil {
			return fmt.Errorf("starting workflow for job %q: %w", job.Name, err)
		}

		var result *temporal.ExtractionResult
		if err := run.Get(ctx, &result); err != nil {
			return fmt.Errorf("job %q failed: %w", job.Name, err)
		}
		if err := displayResult(job.Name, result, logger, displayJSON); err != nil {
			return err
		}
	}
	return nil
}

func displayResult(name string, result *temporal.ExtractionResult, logger *slog.Logger, displayJSON bool) error {
	if displayJSON {
		out, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}
	logger.Info("Extraction completed",
		"job", name,
		"output", result.OutputPath,
		"files", result.Files,
		"skipped", len(result.SkippedFiles),
		"rows", result.Rows,
		"submissions", result.Submissions,
	)
	return nil
}
