// Package extract runs the full pipeline for tutor log files: scan,
// classify, fold into submissions, extract features, label, trim and
// assemble the output relation.
package extract

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/leowmjw/go-tutor-featex/pkg/arff"
	"github.com/leowmjw/go-tutor-featex/pkg/features"
	"github.com/leowmjw/go-tutor-featex/pkg/logparse"
	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// Column name suffixes for the running statistics of cumulative
// features.
const (
	MaxSuffix   = "_max"
	MinSuffix   = "_min"
	MeanSuffix  = "_mean"
	StdevSuffix = "_stdev"
)

// ClassAttribute names the label column.
const ClassAttribute = "Class"

// ErrNotUTF8 marks a log file that is not valid UTF-8; such files are
// skipped, not fatal.
var ErrNotUTF8 = errors.New("log file is not valid utf-8")

// FileData is the extraction result for one log file: the fully
// expanded output columns, label column included, ready to concatenate
// with other files.
type FileData struct {
	Filename   string           `json:"filename"`
	Attributes []arff.Attribute `json:"attributes"`

	// Scan accounting, for operators eyeballing log quality.
	TotalLines       int `json:"total_lines"`
	NoTimestampLines int `json:"no_timestamp_lines"`
	ParseFailures    int `json:"parse_failures"`
	UnknownEvents    int `json:"unknown_events"`
	Submissions      int `json:"submissions"`
}

// Rows returns the number of data rows the file contributed.
func (d *FileData) Rows() int {
	if len(d.Attributes) == 0 {
		return 0
	}
	return len(d.Attributes[0].Values)
}

// ProcessFile extracts one log file. Files that are not valid UTF-8
// yield ErrNotUTF8.
func ProcessFile(path string, table features.ComplexityTable, logger *slog.Logger) (*FileData, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: %s", ErrNotUTF8, path)
	}
	return Process(path, bytes.NewReader(data), table, logger)
}

// Process extracts one log stream. The name only identifies the source
// in logs and data comments.
func Process(name string, r io.Reader, table features.ComplexityTable, logger *slog.Logger) (*FileData, error) {
	logger = logger.With("file", name)
	stream, err := logparse.BuildStream(r, logger)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", name, err)
	}
	logger.Info("scanned log file",
		"lines", stream.TotalLines,
		"events", len(stream.Events),
		"no_timestamp", len(stream.NoTimestampLines),
		"parse_failures", stream.ParseFailures,
		"unknown", stream.UnknownCount())

	subs := submission.FromEvents(stream.Events)
	extractors := features.BuildAll(table, logger)
	features.Run(extractors, subs, logger)
	labels := features.Classify(subs)

	labels = trimWarmUp(extractors, labels)

	attrs := expand(extractors)
	classVals := make([]features.Value, len(labels))
	for i, l := range labels {
		classVals[i] = features.String(l)
	}
	attrs = append(attrs, arff.Attribute{
		Name:   ClassAttribute,
		Type:   features.LabelType,
		Values: classVals,
	})

	return &FileData{
		Filename:         name,
		Attributes:       attrs,
		TotalLines:       stream.TotalLines,
		NoTimestampLines: len(stream.NoTimestampLines),
		ParseFailures:    stream.ParseFailures,
		UnknownEvents:    stream.UnknownCount(),
		Submissions:      len(subs),
	}, nil
}

// trimWarmUp drops the rows where fewer than two problems had been
// attempted in the session. Those early rows have degenerate aggregate
// features and would skew training. The label column is trimmed with
// the same mask so rows and labels stay aligned.
func trimWarmUp(extractors []features.Extractor, labels []string) []string {
	var attempted features.Extractor
	for _, ex := range extractors {
		if ex.Name() == "session_problems_attempted" {
			attempted = ex
			break
		}
	}
	if attempted == nil {
		return labels
	}
	var drop []int
	for i, v := range attempted.Values() {
		if f, ok := v.Float(); ok && f < 2 {
			drop = append(drop, i)
		}
	}
	// highest first so deletions do not shift pending indices
	sort.Sort(sort.Reverse(sort.IntSlice(drop)))
	features.DropRows(extractors, drop)
	for _, i := range drop {
		labels = append(labels[:i], labels[i+1:]...)
	}
	return labels
}

// expand turns extractors into output columns. Cumulative extractors
// contribute their four statistics columns, plus the raw column when
// they keep it.
func expand(extractors []features.Extractor) []arff.Attribute {
	var attrs []arff.Attribute
	for _, ex := range extractors {
		cum, ok := ex.(features.CumulativeExtractor)
		if !ok {
			attrs = append(attrs, arff.Attribute{Name: ex.Name(), Type: ex.ARFFType(), Values: ex.Values()})
			continue
		}
		attrs = append(attrs,
			arff.Attribute{Name: ex.Name() + MaxSuffix, Type: ex.ARFFType(), Values: cum.MaxValues()},
			arff.Attribute{Name: ex.Name() + MinSuffix, Type: ex.ARFFType(), Values: cum.MinValues()},
			arff.Attribute{Name: ex.Name() + MeanSuffix, Type: ex.ARFFType(), Values: cum.MeanValues()},
			arff.Attribute{Name: ex.Name() + StdevSuffix, Type: ex.ARFFType(), Values: cum.StdevValues()},
		)
		if cum.UseRawValues() {
			attrs = append(attrs, arff.Attribute{Name: ex.Name(), Type: ex.ARFFType(), Values: ex.Values()})
		}
	}
	return attrs
}

// ProcessDir extracts every *.log file directly under dir, skipping
// files that are not valid UTF-8.
func ProcessDir(dir string, table features.ComplexityTable, logger *slog.Logger) ([]*FileData, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, e := range entries {
		if e.Type().IsRegular() && strings.HasSuffix(e.Name(), ".log") {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var out []*FileData
	for _, p := range paths {
		fd, err := ProcessFile(p, table, logger)
		if errors.Is(err, ErrNotUTF8) {
			logger.Warn("skipping undecodable log file", "file", p)
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, fd)
	}
	return out, nil
}

// Combine concatenates per-file results into one relation. Column names
// and types must line up across files; a mismatch means the inputs were
// extracted with different configurations.
func Combine(relation string, files []*FileData) (*arff.Writer, error) {
	w := arff.New(relation)
	instances := 0
	for _, fd := range files {
		w.Comments = append(w.Comments, arff.DataComment{Index: instances, Comment: fd.Filename})
		if len(w.Attributes) == 0 {
			w.Attributes = make([]arff.Attribute, len(fd.Attributes))
			copy(w.Attributes, fd.Attributes)
			instances += fd.Rows()
			continue
		}
		if len(fd.Attributes) != len(w.Attributes) {
			return nil, fmt.Errorf("%s has %d columns, want %d", fd.Filename, len(fd.Attributes), len(w.Attributes))
		}
		for i := range fd.Attributes {
			if fd.Attributes[i].Name != w.Attributes[i].Name || fd.Attributes[i].Type != w.Attributes[i].Type {
				return nil, fmt.Errorf("%s column %d is %s %s, want %s %s", fd.Filename, i,
					fd.Attributes[i].Name, fd.Attributes[i].Type,
					w.Attributes[i].Name, w.Attributes[i].Type)
			}
			w.Attributes[i].Values = append(w.Attributes[i].Values, fd.Attributes[i].Values...)
		}
		instances += fd.Rows()
	}
	return w, nil
}
