package temporal

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/testsuite"
)

const testComplexityTable = "101 2\n102 3\n"

// testLog holds a session with one failed problem and one solved one,
// so extraction yields a single row after the warm-up trim.
const testLog = `10:15:00 02/03/2005 Logged in as student42
10:15:01 02/03/2005 Database is set to movies
10:15:02 02/03/2005 drawing problem: 101, problem status: UNSOLVED
10:15:10 02/03/2005 responding: problem is 101 its status is UNSOLVED
10:15:10 02/03/2005 responding: also set help-level to 2, feedback=Detailed hint
10:16:00 02/03/2005 Pre-process: student solution follows
SELECT title
Mode: select
10:16:01 02/03/2005 Post-process: Satisfied constraints: (1 2); Violated constraints: (7); Feedback level: 2
10:17:00 02/03/2005 drawing problem: 102, problem status: UNSOLVED
10:17:05 02/03/2005 responding: problem is 102 its status is UNSOLVED
10:17:05 02/03/2005 responding: also set help-level to 1, feedback=Simple hint
10:18:00 02/03/2005 Pre-process: student solution follows
SELECT name
Mode: select
10:18:30 02/03/2005 Post-process: Satisfied constraints: (1 2 7); Violated constraints: NIL; Feedback level: 2
10:19:00 02/03/2005 Logged out
`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func registerActivities(env *testsuite.TestWorkflowEnvironment, a *ActivitiesImpl) {
	env.RegisterActivityWithOptions(a.ListLogFilesActivity, activity.RegisterOptions{Name: ListLogFilesActivityName})
	env.RegisterActivityWithOptions(a.ExtractFileActivity, activity.RegisterOptions{Name: ExtractFileActivityName})
	env.RegisterActivityWithOptions(a.WriteOutputActivity, activity.RegisterOptions{Name: WriteOutputActivityName})
}

func TestExtractionWorkflow(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "student1.log"), []byte(testLog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "student2.log"), []byte(testLog), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbled.log"), []byte{0xff, 0xfe, 0x00, 0x41}, 0o644))
	complexityPath := filepath.Join(dir, "complexity.txt")
	require.NoError(t, os.WriteFile(complexityPath, []byte(testComplexityTable), 0o644))
	outputPath := filepath.Join(dir, "out.arff")

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExtractionWorkflow)
	registerActivities(env, NewActivitiesImpl(testLogger()))

	request := ExtractionRequest{
		LogDir:         dir,
		ComplexityFile: complexityPath,
		OutputPath:     outputPath,
		Relation:       "features",
	}

	var result *ExtractionResult
	env.ExecuteWorkflow(ExtractionWorkflow, request)

	require.True(t, env.IsWorkflowCompleted())
	require.NoError(t, env.GetWorkflowError())
	require.NoError(t, env.GetWorkflowResult(&result))

	assert.Equal(t, 2, result.Files)
	assert.Equal(t, []string{filepath.Join(dir, "garbled.log")}, result.SkippedFiles)
	assert.Equal(t, 2, result.Rows)
	assert.Equal(t, 4, result.Submissions)
	assert.Equal(t, outputPath, result.OutputPath)

	out, err := os.ReadFile(outputPath)
	require.NoError(t, err)
	rendered := string(out)
	assert.True(t, strings.HasPrefix(rendered, "@relation features\n"), rendered)
	assert.Contains(t, rendered, "% "+filepath.Join(dir, "student1.log"))
	assert.Contains(t, rendered, "% "+filepath.Join(dir, "student2.log"))
	assert.Contains(t, rendered, "not_abandoned")
}

func TestExtractionWorkflowEmptyDirectory(t *testing.T) {
	dir := t.TempDir()
	complexityPath := filepath.Join(dir, "complexity.txt")
	require.NoError(t, os.WriteFile(complexityPath, []byte(testComplexityTable), 0o644))

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExtractionWorkflow)
	registerActivities(env, NewActivitiesImpl(testLogger()))

	env.ExecuteWorkflow(ExtractionWorkflow, ExtractionRequest{
		LogDir:         dir,
		ComplexityFile: complexityPath,
		OutputPath:     filepath.Join(dir, "out.arff"),
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no log files found")
}

func TestExtractionWorkflowAllFilesSkipped(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "garbled.log"), []byte{0xff, 0xfe}, 0o644))
	complexityPath := filepath.Join(dir, "complexity.txt")
	require.NoError(t, os.WriteFile(complexityPath, []byte(testComplexityTable), 0o644))

	testSuite := &testsuite.WorkflowTestSuite{}
	env := testSuite.NewTestWorkflowEnvironment()
	env.RegisterWorkflow(ExtractionWorkflow)
	registerActivities(env, NewActivitiesImpl(testLogger()))

	env.ExecuteWorkflow(ExtractionWorkflow, ExtractionRequest{
		LogDir:         dir,
		ComplexityFile: complexityPath,
		OutputPath:     filepath.Join(dir, "out.arff"),
	})

	require.True(t, env.IsWorkflowCompleted())
	err := env.GetWorkflowError()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "skipped")
}
