package hcl

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleJobs = `
job "week14" {
  log_dir         = "/data/logs/week-14"
  complexity_file = "/data/complexity.txt"
  output          = "/data/out/week-14.arff"
  relation        = "features_w14"
  max_concurrency = 8
}

job "week15" {
  log_dir         = "/data/logs/week-15"
  complexity_file = "/data/complexity.txt"
  output          = "/data/out/week-15.arff"
}
`

func TestParseJobs(t *testing.T) {
	jobs, err := ParseJobs([]byte(sampleJobs), "jobs.hcl")
	require.NoError(t, err)
	require.Len(t, jobs, 2)

	assert.Equal(t, "week14", jobs[0].Name)
	assert.Equal(t, "/data/logs/week-14", jobs[0].Request.LogDir)
	assert.Equal(t, "/data/complexity.txt", jobs[0].Request.ComplexityFile)
	assert.Equal(t, "/data/out/week-14.arff", jobs[0].Request.OutputPath)
	assert.Equal(t, "features_w14", jobs[0].Request.Relation)
	assert.Equal(t, 8, jobs[0].Request.MaxConcurrency)

	// optional attributes stay zero so the workflow applies its defaults
	assert.Equal(t, "week15", jobs[1].Name)
	assert.Equal(t, "", jobs[1].Request.Relation)
	assert.Equal(t, 0, jobs[1].Request.MaxConcurrency)
}

func TestParseJobsEnvFunction(t *testing.T) {
	t.Setenv("FEATEX_TEST_COMPLEXITY", "/tmp/complexity.txt")

	content := `
job "envy" {
  log_dir         = "/data/logs"
  complexity_file = env("FEATEX_TEST_COMPLEXITY")
  output          = "/data/out.arff"
}
`
	jobs, err := ParseJobs([]byte(content), "jobs.hcl")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "/tmp/complexity.txt", jobs[0].Request.ComplexityFile)
}

func TestParseJobsErrors(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"no job blocks", `relation = "features"`},
		{"missing log_dir", `
job "broken" {
  complexity_file = "/data/complexity.txt"
  output          = "/data/out.arff"
}
`},
		{"empty output", `
job "broken" {
  log_dir         = "/data/logs"
  complexity_file = "/data/complexity.txt"
  output          = ""
}
`},
		{"not hcl at all", `{"log_dir": "/data/logs"`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseJobs([]byte(tc.content), "jobs.hcl")
			require.Error(t, err)
		})
	}
}

func TestParseJobFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobs.hcl")
	require.NoError(t, os.WriteFile(path, []byte(sampleJobs), 0o644))

	jobs, err := ParseJobFile(path)
	require.NoError(t, err)
	assert.Len(t, jobs, 2)

	_, err = ParseJobFile(filepath.Join(t.TempDir(), "missing.hcl"))
	require.Error(t, err)
}

func TestIsHCL(t *testing.T) {
	assert.True(t, IsHCL([]byte(sampleJobs)))
	assert.False(t, IsHCL([]byte(`{"log_dir": "/data/logs"`)))
}
