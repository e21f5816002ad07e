package features

import (
	"testing"
)

func TestSatisfiedConstraints(t *testing.T) {
	withSolution := testSub(1, 0, 10, false)
	withSolution.SatisfiedConstraints = []int{1, 2, 3}
	noSolution := testSub(1, 0, 20, false)
	noSolution.Solution = ""
	got := feed(NewSatisfiedConstraints(), withSolution, noSolution)
	wantNumbers(t, got, []any{3, nil})
}

func TestHelpLevel(t *testing.T) {
	s1 := testSub(1, 0, 10, false)
	s2 := testSub(1, 0, 20, false)
	s2.SubmitHelpLevel = nil
	got := feed(NewHelpLevel(), s1, s2)
	wantNumbers(t, got, []any{2, nil})
}

func TestDecreasedViolatedConstraints(t *testing.T) {
	s1 := testSub(1, 0, 10, false) // two violated
	s2 := testSub(1, 0, 20, false)
	s2.ViolatedConstraints = []int{7}
	s3 := testSub(1, 0, 30, false) // back to two
	got := feed(NewDecreasedViolatedConstraints(), s1, s2, s3)
	if !got[0].IsNull() {
		t.Error("first submission has nothing to compare against")
	}
	if got[1] != Bool(true) || got[2] != Bool(false) {
		t.Errorf("got %v %v", got[1], got[2])
	}
}

func TestTimeSincePreviousSubmission(t *testing.T) {
	s1 := testSub(1, 0, 10, false)
	s2 := testSub(1, 0, 25, false)
	s3 := withSession(testSub(1, 0, 40, false), 30) // new session breaks the chain
	got := feed(NewTimeSincePreviousSubmission(), s1, s2, s3)
	wantNumbers(t, got, []any{nil, 15, nil})
}

func TestProblemTimeFromStart(t *testing.T) {
	s1 := testSub(5, 0, 10, false)
	s2 := testSub(5, 8, 30, false)  // same problem keeps the original start
	s3 := testSub(6, 40, 55, false) // new problem restarts the clock
	got := feed(NewProblemTimeFromStart(), s1, s2, s3)
	wantNumbers(t, got, []any{10, 30, 15})
}

func TestSubmissionNumber(t *testing.T) {
	got := feed(NewSubmissionNumber(),
		testSub(5, 0, 10, false),
		testSub(5, 0, 20, false),
		testSub(6, 30, 40, false),
		testSub(6, 30, 50, true),
	)
	wantNumbers(t, got, []any{1, 2, 1, 2})
}

func TestSessionTimeFromStart(t *testing.T) {
	s1 := withSession(testSub(1, 5, 30, false), 0)
	s2 := testSub(1, 5, 70, false)
	got := feed(NewSessionTimeFromStart(discard()), s1, s2)
	wantNumbers(t, got, []any{30, 70})
}

func TestSessionTimeFromStartNoSessionYet(t *testing.T) {
	got := feed(NewSessionTimeFromStart(discard()), testSub(1, 0, 10, false))
	wantNumbers(t, got, []any{nil})
}

func TestSubmissionTimeDifference(t *testing.T) {
	got := feed(NewSubmissionTimeDifference(),
		testSub(1, 0, 10, false),
		testSub(1, 0, 14, false),
	)
	wantNumbers(t, got, []any{nil, 16})
}

func TestProblemsAttemptedCumulative(t *testing.T) {
	s1 := withSession(testSub(5, 0, 10, false), 0)
	s2 := testSub(5, 0, 20, false)
	s3 := testSub(6, 30, 40, false)
	s4 := withSession(testSub(7, 50, 60, false), 45) // new session resets
	got := feed(NewProblemsAttemptedCumulative(), s1, s2, s3, s4)
	wantNumbers(t, got, []any{1, 1, 2, 1})
}

func TestProblemsCompletedCumulative(t *testing.T) {
	got := feed(NewProblemsCompletedCumulative(),
		testSub(5, 0, 10, false),
		testSub(5, 0, 20, true),
		testSub(6, 30, 40, true),
	)
	wantNumbers(t, got, []any{0, 1, 2})
}

func TestDatabaseChangesCumulative(t *testing.T) {
	s1 := testSub(1, 0, 10, false)
	s1.DatabaseChanges = 1
	s2 := testSub(1, 0, 20, false)
	s3 := testSub(2, 30, 40, false)
	s3.DatabaseChanges = 2
	got := feed(NewDatabaseChangesCumulative(), s1, s2, s3)
	wantNumbers(t, got, []any{1, 1, 3})
}

func TestMissingProblemIDCountsOnce(t *testing.T) {
	s1 := testSub(1, 0, 10, false)
	s2 := testSub(2, 20, 30, false)
	s2.ProblemID = nil
	s3 := testSub(3, 40, 50, false)
	s3.ProblemID = nil
	got := feed(NewProblemsAttemptedCumulative(), s1, s2, s3)
	wantNumbers(t, got, []any{1, 2, 2})
}
