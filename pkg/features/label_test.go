package features

import (
	"testing"

	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

func TestClassifySolvedIsNeverAbandoned(t *testing.T) {
	labels := Classify([]*submission.Submission{testSub(1, 0, 10, true)})
	if len(labels) != 1 || labels[0] != LabelNotAbandoned {
		t.Errorf("labels = %v", labels)
	}
}

func TestClassifyLastSubmissionIsAbandoned(t *testing.T) {
	labels := Classify([]*submission.Submission{testSub(1, 0, 10, false)})
	if labels[0] != LabelAbandoned {
		t.Errorf("labels = %v", labels)
	}
}

func TestClassifyLookahead(t *testing.T) {
	subs := []*submission.Submission{
		testSub(1, 0, 10, false), // retried on the same problem
		testSub(1, 0, 20, false), // next submission moves on
		testSub(2, 30, 40, true),
	}
	labels := Classify(subs)
	want := []string{LabelNotAbandoned, LabelAbandoned, LabelNotAbandoned}
	for i := range want {
		if labels[i] != want[i] {
			t.Errorf("label %d = %s, want %s", i, labels[i], want[i])
		}
	}
}

func TestClassifySkippedRowsGetNoLabelButStillCount(t *testing.T) {
	skipped := submission.New() // no solution, no session start
	skipped.ProblemID = iptr(1)
	subs := []*submission.Submission{
		testSub(1, 0, 10, false),
		skipped,
		testSub(2, 30, 40, true),
	}
	labels := Classify(subs)
	if len(labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(labels))
	}
	// the unlabeled successor on the same problem still signals
	// abandonment
	if labels[0] != LabelAbandoned {
		t.Errorf("label 0 = %s", labels[0])
	}
}

func TestClassifyMatchesRunRowCount(t *testing.T) {
	skipped := submission.New()
	subs := []*submission.Submission{
		testSub(1, 0, 10, false),
		skipped,
		testSub(1, 0, 20, false),
		testSub(2, 30, 40, true),
	}
	extractors := BuildAll(ComplexityTable{}, discard())
	Run(extractors, subs, discard())
	labels := Classify(subs)
	if len(labels) != len(extractors[0].Values()) {
		t.Errorf("labels %d, rows %d", len(labels), len(extractors[0].Values()))
	}
}
