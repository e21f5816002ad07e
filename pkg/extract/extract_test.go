package extract

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/leowmjw/go-tutor-featex/pkg/features"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

var testTable = features.ComplexityTable{101: 2, 102: 3}

// twoProblemLog exercises the whole pipeline: one failed attempt on
// problem 101, then a solved attempt on problem 102. Only the second
// problem's row survives the warm-up trim.
const twoProblemLog = `10:15:00 02/03/2005 Logged in as student42
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

func TestProcess(t *testing.T) {
	fd, err := Process("student42.log", strings.NewReader(twoProblemLog), testTable, discard())
	if err != nil {
		t.Fatal(err)
	}
	if fd.Submissions != 2 {
		t.Errorf("submissions = %d, want 2", fd.Submissions)
	}
	// the first problem's row is warm-up
	if fd.Rows() != 1 {
		t.Fatalf("rows = %d, want 1", fd.Rows())
	}

	// 29 plain columns, 6 cumulative features with 4 statistics each,
	// 2 of them also keeping the raw column, plus the class
	if len(fd.Attributes) != 56 {
		t.Errorf("columns = %d, want 56", len(fd.Attributes))
	}

	class := fd.Attributes[len(fd.Attributes)-1]
	if class.Name != ClassAttribute {
		t.Fatalf("last column = %s", class.Name)
	}
	if class.Values[0] != features.String(features.LabelNotAbandoned) {
		t.Errorf("class = %v", class.Values[0])
	}

	byName := map[string][]features.Value{}
	for _, a := range fd.Attributes {
		byName[a.Name] = a.Values
		if len(a.Values) != 1 {
			t.Errorf("column %s has %d rows", a.Name, len(a.Values))
		}
	}
	if v := byName["session_problems_attempted"][0]; v != features.Number(2) {
		t.Errorf("session_problems_attempted = %v", v)
	}
	if v := byName["violated_constraints"][0]; v != features.Number(0) {
		t.Errorf("violated_constraints = %v", v)
	}
	if v := byName["prev_submission_count"][0]; v != features.Number(1) {
		t.Errorf("prev_submission_count = %v", v)
	}
	if v := byName["current_problem_complexity"][0]; v != features.Number(3) {
		t.Errorf("current_problem_complexity = %v", v)
	}
	if _, ok := byName["violated_constraints"+StdevSuffix]; !ok {
		t.Error("missing expanded stdev column")
	}
	if _, ok := byName["help_level"+MaxSuffix]; ok {
		t.Error("plain features must not grow statistics columns")
	}
}

func TestProcessIsDeterministic(t *testing.T) {
	a, err := Process("a.log", strings.NewReader(twoProblemLog), testTable, discard())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Process("a.log", strings.NewReader(twoProblemLog), testTable, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(a.Attributes) != len(b.Attributes) {
		t.Fatal("column sets differ between runs")
	}
	for i := range a.Attributes {
		av, bv := a.Attributes[i], b.Attributes[i]
		if av.Name != bv.Name || len(av.Values) != len(bv.Values) {
			t.Fatalf("column %d differs between runs", i)
		}
		for j := range av.Values {
			if av.Values[j] != bv.Values[j] {
				t.Errorf("%s row %d: %v vs %v", av.Name, j, av.Values[j], bv.Values[j])
			}
		}
	}
}

func TestProcessDirSkipsUndecodableFiles(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "good.log"), []byte(twoProblemLog), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "bad.log"), []byte{0xff, 0xfe, 0x00, 0x41}, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a log"), 0o644); err != nil {
		t.Fatal(err)
	}

	files, err := ProcessDir(dir, testTable, discard())
	if err != nil {
		t.Fatal(err)
	}
	if len(files) != 1 {
		t.Fatalf("got %d files, want 1", len(files))
	}
	if filepath.Base(files[0].Filename) != "good.log" {
		t.Errorf("processed %s", files[0].Filename)
	}
}

func TestCombine(t *testing.T) {
	a, err := Process("a.log", strings.NewReader(twoProblemLog), testTable, discard())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Process("b.log", strings.NewReader(twoProblemLog), testTable, discard())
	if err != nil {
		t.Fatal(err)
	}

	w, err := Combine("features", []*FileData{a, b})
	if err != nil {
		t.Fatal(err)
	}
	if len(w.Attributes) != len(a.Attributes) {
		t.Errorf("combined columns = %d", len(w.Attributes))
	}
	if len(w.Attributes[0].Values) != a.Rows()+b.Rows() {
		t.Errorf("combined rows = %d", len(w.Attributes[0].Values))
	}
	if len(w.Comments) != 2 {
		t.Fatalf("comments = %v", w.Comments)
	}
	if w.Comments[1].Index != a.Rows() {
		t.Errorf("second file's comment sits at row %d, want %d", w.Comments[1].Index, a.Rows())
	}

	var sb strings.Builder
	if err := w.Write(&sb); err != nil {
		t.Fatal(err)
	}
	out := sb.String()
	if !strings.Contains(out, "@relation features") ||
		!strings.Contains(out, "% a.log") || !strings.Contains(out, "% b.log") {
		t.Errorf("rendered relation:\n%s", out)
	}
}

func TestCombineRejectsMismatchedColumns(t *testing.T) {
	a, err := Process("a.log", strings.NewReader(twoProblemLog), testTable, discard())
	if err != nil {
		t.Fatal(err)
	}
	b, err := Process("b.log", strings.NewReader(twoProblemLog), testTable, discard())
	if err != nil {
		t.Fatal(err)
	}
	b.Attributes[0].Name = "renamed"
	if _, err := Combine("features", []*FileData{a, b}); err == nil {
		t.Fatal("want error for mismatched columns")
	}
}
