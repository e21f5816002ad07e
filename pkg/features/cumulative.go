package features

import (
	"log/slog"
	"time"

	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// ViolatedConstraints counts the constraints a submitted solution
// violated, with running statistics. The raw column is part of the
// output next to the statistics.
type ViolatedConstraints struct {
	pairState
	cumulativeColumn
}

func NewViolatedConstraints() *ViolatedConstraints { return &ViolatedConstraints{} }

func (f *ViolatedConstraints) Name() string       { return "violated_constraints" }
func (f *ViolatedConstraints) ARFFType() string   { return TypeNumeric }
func (f *ViolatedConstraints) UseRawValues() bool { return true }

func (f *ViolatedConstraints) Consume(sub *submission.Submission) {
	f.advance(sub)
	v := Null()
	if sub.Solution != "" {
		v = Number(float64(len(sub.ViolatedConstraints)))
	}
	f.push(v)
	has := sub.Solution != ""
	f.observe(f.Values(), false, has, has)
}

// TimeUntilFirstSubmission is the seconds the current problem's first
// submission took, repeated for every later submission of the problem.
type TimeUntilFirstSubmission struct {
	pairState
	cumulativeColumn
	curID    *int
	firstSub *submission.Submission
}

func NewTimeUntilFirstSubmission() *TimeUntilFirstSubmission {
	return &TimeUntilFirstSubmission{}
}

func (f *TimeUntilFirstSubmission) Name() string       { return "time_until_first_sub" }
func (f *TimeUntilFirstSubmission) ARFFType() string   { return TypeNumeric }
func (f *TimeUntilFirstSubmission) UseRawValues() bool { return false }

func (f *TimeUntilFirstSubmission) Consume(sub *submission.Submission) {
	f.advance(sub)
	if !intPtrEq(f.curID, sub.ProblemID) && sub.ProblemID != nil {
		f.curID = sub.ProblemID
		f.firstSub = sub
	}
	v := Null()
	if f.firstSub != nil && f.firstSub.BeginTime != nil {
		if d, ok := seconds(f.firstSub.SubmitTime, f.firstSub.BeginTime); ok {
			v = Number(d)
		}
	}
	f.push(v)
	add := f.curID != nil && f.firstSub != nil && f.firstSub.BeginTime != nil
	f.observe(f.Values(), false, add, add)
}

// TimeSpentOnProblem is the total duration of the most recently finished
// problem, carried forward until the next problem finishes.
type TimeSpentOnProblem struct {
	pairState
	cumulativeColumn
	curID        *int
	curStart     *time.Time
	lastDuration Value
}

func NewTimeSpentOnProblem() *TimeSpentOnProblem {
	return &TimeSpentOnProblem{lastDuration: Null()}
}

func (f *TimeSpentOnProblem) Name() string       { return "session_problem_completion_time" }
func (f *TimeSpentOnProblem) ARFFType() string   { return TypeNumeric }
func (f *TimeSpentOnProblem) UseRawValues() bool { return false }

func (f *TimeSpentOnProblem) Consume(sub *submission.Submission) {
	f.advance(sub)
	changed := false
	if !intPtrEq(f.curID, sub.ProblemID) {
		if f.curStart != nil && f.last != nil && f.last.SubmitTime != nil {
			f.lastDuration = Number(f.last.SubmitTime.Sub(*f.curStart).Seconds())
			changed = true
		}
		f.curID = sub.ProblemID
		f.curStart = sub.BeginTime
	}
	f.push(f.lastDuration)
	f.observe(f.Values(), false, changed, changed)
}

// TimeBetweenSubmissions is the gap in seconds between consecutive
// submissions, with per-session statistics chains: a session start
// breaks the chain.
type TimeBetweenSubmissions struct {
	pairState
	cumulativeColumn
}

func NewTimeBetweenSubmissions() *TimeBetweenSubmissions { return &TimeBetweenSubmissions{} }

func (f *TimeBetweenSubmissions) Name() string       { return "session_time_between_submissions" }
func (f *TimeBetweenSubmissions) ARFFType() string   { return TypeNumeric }
func (f *TimeBetweenSubmissions) UseRawValues() bool { return false }

func (f *TimeBetweenSubmissions) Consume(sub *submission.Submission) {
	f.advance(sub)
	v := Null()
	if sub.BeginSession != nil {
		// forget the previous submission across a session boundary
		f.last = nil
	} else if f.last != nil {
		if d, ok := seconds(sub.SubmitTime, f.last.SubmitTime); ok {
			v = Number(d)
		}
	}
	add := f.last != nil && sub.SubmitTime != nil && f.last.SubmitTime != nil
	f.push(v)
	f.observe(f.Values(), false, add, add)
}

// NumberOfSubmissions is how many submissions the previously finished
// problem received, carried forward while the current problem runs.
type NumberOfSubmissions struct {
	pairState
	cumulativeColumn
	curID       *int
	curCount    int
	curCounting bool
	prevCount   Value
}

func NewNumberOfSubmissions() *NumberOfSubmissions {
	return &NumberOfSubmissions{prevCount: Null()}
}

func (f *NumberOfSubmissions) Name() string       { return "num_submissions_per_problem" }
func (f *NumberOfSubmissions) ARFFType() string   { return TypeNumeric }
func (f *NumberOfSubmissions) UseRawValues() bool { return false }

func (f *NumberOfSubmissions) Consume(sub *submission.Submission) {
	f.advance(sub)
	changed := false
	switch {
	case f.curID == nil && sub.ProblemID == nil:
		// nothing to attribute the submission to yet
	case !intPtrEq(f.curID, sub.ProblemID):
		if f.curCounting {
			f.prevCount = Number(float64(f.curCount))
			changed = true
		}
		f.curID = sub.ProblemID
		f.curCount = 1
		f.curCounting = true
	default:
		f.curCount++
	}
	f.push(f.prevCount)
	f.observe(f.Values(), false, changed, changed)
}

// ProblemComplexity is the difficulty rank of the current problem. The
// raw column is part of the output next to the statistics; the
// statistics only advance when the problem changes.
type ProblemComplexity struct {
	pairState
	cumulativeColumn
	table  ComplexityTable
	curID  *int
	logger *slog.Logger
}

func NewProblemComplexity(table ComplexityTable, logger *slog.Logger) *ProblemComplexity {
	return &ProblemComplexity{table: table, logger: logger}
}

func (f *ProblemComplexity) Name() string       { return "current_problem_complexity" }
func (f *ProblemComplexity) ARFFType() string   { return TypeNumeric }
func (f *ProblemComplexity) UseRawValues() bool { return true }

func (f *ProblemComplexity) Consume(sub *submission.Submission) {
	f.advance(sub)
	changed := false
	if !intPtrEq(f.curID, sub.ProblemID) {
		changed = true
		f.curID = sub.ProblemID
	}
	v := Null()
	if sub.ProblemID == nil {
		changed = false
	} else if c, ok := f.table[*sub.ProblemID]; ok {
		v = Number(float64(c))
	} else {
		changed = false
		f.logger.Warn("dirty log: problem missing from complexity table", "problem_id", *sub.ProblemID)
	}
	f.push(v)
	f.observe(f.Values(), false, changed, changed)
}
