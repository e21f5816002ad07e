package features

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

var base = time.Date(2005, time.March, 2, 10, 0, 0, 0, time.UTC)

func at(sec int) *time.Time {
	t := base.Add(time.Duration(sec) * time.Second)
	return &t
}

func iptr(i int) *int { return &i }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testSub builds a plausible finalized submission: solved problems have
// no violated constraints and vice versa.
func testSub(problem int, beginSec, submitSec int, solved bool) *submission.Submission {
	s := submission.New()
	s.ProblemID = iptr(problem)
	s.BeginTime = at(beginSec)
	s.SubmitTime = at(submitSec)
	s.Solved = solved
	s.Solution = "SELECT 1"
	s.SubmitHelpLevel = iptr(2)
	if !solved {
		s.ViolatedConstraints = []int{7, 9}
	}
	return s
}

func withSession(s *submission.Submission, sec int) *submission.Submission {
	s.BeginSession = at(sec)
	return s
}

func feed(ex Extractor, subs ...*submission.Submission) []Value {
	for _, s := range subs {
		ex.Consume(s)
	}
	return ex.Values()
}

func wantNumbers(t *testing.T, got []Value, want []any) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("got %d values, want %d", len(got), len(want))
	}
	for i := range want {
		if want[i] == nil {
			if !got[i].IsNull() {
				t.Errorf("value %d = %v, want missing", i, got[i])
			}
			continue
		}
		f, ok := got[i].Float()
		if !ok {
			t.Errorf("value %d = %v, want number", i, got[i])
			continue
		}
		var w float64
		switch n := want[i].(type) {
		case int:
			w = float64(n)
		case float64:
			w = n
		}
		if f != w {
			t.Errorf("value %d = %v, want %v", i, f, w)
		}
	}
}
