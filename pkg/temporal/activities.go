package temporal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/leowmjw/go-tutor-featex/pkg/extract"
	"github.com/leowmjw/go-tutor-featex/pkg/features"
)

// Activities interface defines all the activities used by workflows
type Activities interface {
	ListLogFilesActivity(ctx context.Context, dir string) ([]string, error)
	ExtractFileActivity(ctx context.Context, request FileRequest) (*FileResult, error)
	WriteOutputActivity(ctx context.Context, request WriteRequest) error
}

// ActivitiesImpl implements the Activities interface. Complexity tables
// are cached per path so a job with thousands of log files parses its
// table once per worker.
type ActivitiesImpl struct {
	logger *slog.Logger

	mu     sync.Mutex
	tables map[string]features.ComplexityTable
}

// NewActivitiesImpl creates a new activities implementation
func NewActivitiesImpl(logger *slog.Logger) *ActivitiesImpl {
	return &ActivitiesImpl{
		logger: logger,
		tables: make(map[string]features.ComplexityTable),
	}
}

// ListLogFilesActivity returns the *.log files directly under dir,
// sorted so extraction order is stable across runs.
func (a *ActivitiesImpl) ListLogFilesActivity(ctx context.Context, dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".log") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	a.logger.Info("Listed log files", "dir", dir, "count", len(paths))
	return paths, nil
}

// ExtractFileActivity runs the extraction pipeline over one log file.
// Files that are not valid UTF-8 come back marked skipped.
func (a *ActivitiesImpl) ExtractFileActivity(ctx context.Context, request FileRequest) (*FileResult, error) {
	table, err := a.complexityTable(request.ComplexityFile)
	if err != nil {
		return nil, err
	}

	fd, err := extract.ProcessFile(request.Path, table, a.logger)
	if errors.Is(err, extract.ErrNotUTF8) {
		a.logger.Warn("Skipping undecodable log file", "file", request.Path)
		return &FileResult{Skipped: true}, nil
	}
	if err != nil {
		a.logger.Error("Failed to extract log file", "file", request.Path, "error", err)
		return nil, fmt.Errorf("failed to extract %s: %w", request.Path, err)
	}

	a.logger.Info("Extracted log file", "file", request.Path, "rows", fd.Rows(), "submissions", fd.Submissions)
	return &FileResult{Data: fd}, nil
}

// WriteOutputActivity combines per-file results and writes the relation
// to disk.
func (a *ActivitiesImpl) WriteOutputActivity(ctx context.Context, request WriteRequest) error {
	w, err := extract.Combine(request.Relation, request.Files)
	if err != nil {
		a.logger.Error("Failed to combine file results", "error", err)
		return fmt.Errorf("failed to combine file results: %w", err)
	}

	if err := w.WriteFile(request.OutputPath); err != nil {
		a.logger.Error("Failed to write output", "path", request.OutputPath, "error", err)
		return fmt.Errorf("failed to write %s: %w", request.OutputPath, err)
	}

	a.logger.Info("Wrote relation", "path", request.OutputPath, "relation", request.Relation)
	return nil
}

func (a *ActivitiesImpl) complexityTable(path string) (features.ComplexityTable, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if table, ok := a.tables[path]; ok {
		return table, nil
	}
	table, err := features.LoadComplexityFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load complexity table: %w", err)
	}
	a.tables[path] = table
	return table, nil
}
