package features

import (
	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// levelState estimates the student's skill level from solve outcomes.
// The level drops one step after two consecutive problems at or below
// the current level each take five or more attempts without a solve,
// and rises one step after two consecutive problems at or above the
// current level are each solved within three attempts. Both checks
// compare against the problem before the current one, so a change
// always lags the evidence by one problem.
type levelState struct {
	table ComplexityTable

	level        int
	curID        *int
	curAttempts  int
	curSolved    bool
	curLevel     int
	prevLevel    int
	prevSolved   bool
	prevAttempts int
}

func (s *levelState) update(sub *submission.Submission) int {
	known := false
	if sub.ProblemID != nil {
		_, known = s.table[*sub.ProblemID]
	}
	if !intPtrEq(s.curID, sub.ProblemID) && known {
		if !s.prevSolved && !s.curSolved &&
			s.curAttempts >= 5 && s.prevAttempts >= 5 &&
			s.prevLevel <= s.level && s.curLevel <= s.level &&
			s.level > 0 {
			s.level--
		}
		s.prevLevel = s.curLevel
		s.prevSolved = s.curSolved
		s.prevAttempts = s.curAttempts
		s.curID = sub.ProblemID
		s.curLevel = s.table[*sub.ProblemID]
		s.curAttempts = 1
	} else {
		s.curAttempts++
	}
	s.curSolved = sub.Solved
	if s.prevAttempts <= 3 && s.curAttempts <= 3 &&
		s.prevSolved && s.curSolved &&
		s.prevLevel >= s.level && s.curLevel >= s.level {
		s.level++
	}
	return s.level
}

// StudentLevel is the running skill level estimate.
type StudentLevel struct {
	pairState
	column
	levelState
}

func NewStudentLevel(table ComplexityTable) *StudentLevel {
	return &StudentLevel{levelState: levelState{table: table}}
}

func (f *StudentLevel) Name() string     { return "student_level" }
func (f *StudentLevel) ARFFType() string { return TypeNumeric }

func (f *StudentLevel) Consume(sub *submission.Submission) {
	f.advance(sub)
	f.push(Number(float64(f.update(sub))))
}

// StudentLevelComplexityDifference is how far the current problem's
// complexity sits above the student's estimated level.
type StudentLevelComplexityDifference struct {
	pairState
	column
	levelState
}

func NewStudentLevelComplexityDifference(table ComplexityTable) *StudentLevelComplexityDifference {
	return &StudentLevelComplexityDifference{levelState: levelState{table: table}}
}

func (f *StudentLevelComplexityDifference) Name() string {
	return "student_level_complexity_difference"
}
func (f *StudentLevelComplexityDifference) ARFFType() string { return TypeNumeric }

func (f *StudentLevelComplexityDifference) Consume(sub *submission.Submission) {
	f.advance(sub)
	level := f.update(sub)
	f.push(Number(float64(f.curLevel - level)))
}

// IdenticalSubmission reports whether the student resubmitted the exact
// same solution text.
type IdenticalSubmission struct {
	pairState
	column
}

func NewIdenticalSubmission() *IdenticalSubmission { return &IdenticalSubmission{} }

func (f *IdenticalSubmission) Name() string     { return "submission_same_as_previous" }
func (f *IdenticalSubmission) ARFFType() string { return TypeBoolean }

func (f *IdenticalSubmission) Consume(sub *submission.Submission) {
	f.advance(sub)
	if f.last == nil {
		f.push(Bool(false))
		return
	}
	f.push(Bool(sub.Solution == f.last.Solution))
}
