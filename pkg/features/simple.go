package features

import (
	"log/slog"
	"time"

	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// SatisfiedConstraints counts the constraints a submitted solution
// satisfied. Submissions without a solution yield a missing value.
type SatisfiedConstraints struct {
	pairState
	column
}

func NewSatisfiedConstraints() *SatisfiedConstraints { return &SatisfiedConstraints{} }

func (f *SatisfiedConstraints) Name() string     { return "satisfied_constraints" }
func (f *SatisfiedConstraints) ARFFType() string { return TypeNumeric }

func (f *SatisfiedConstraints) Consume(sub *submission.Submission) {
	f.advance(sub)
	if sub.Solution == "" {
		f.push(Null())
		return
	}
	f.push(Number(float64(len(sub.SatisfiedConstraints))))
}

// HelpLevel is the help level active when the solution was submitted.
type HelpLevel struct {
	pairState
	column
}

func NewHelpLevel() *HelpLevel { return &HelpLevel{} }

func (f *HelpLevel) Name() string     { return "help_level" }
func (f *HelpLevel) ARFFType() string { return TypeNumeric }

func (f *HelpLevel) Consume(sub *submission.Submission) {
	f.advance(sub)
	if sub.SubmitHelpLevel == nil {
		f.push(Null())
		return
	}
	f.push(Number(float64(*sub.SubmitHelpLevel)))
}

// DecreasedViolatedConstraints reports whether this submission violated
// fewer constraints than the one before it.
type DecreasedViolatedConstraints struct {
	pairState
	column
}

func NewDecreasedViolatedConstraints() *DecreasedViolatedConstraints {
	return &DecreasedViolatedConstraints{}
}

func (f *DecreasedViolatedConstraints) Name() string     { return "violated_constraints_decreased" }
func (f *DecreasedViolatedConstraints) ARFFType() string { return TypeBoolean }

func (f *DecreasedViolatedConstraints) Consume(sub *submission.Submission) {
	f.advance(sub)
	if f.last == nil {
		f.push(Null())
		return
	}
	f.push(Bool(len(sub.ViolatedConstraints) < len(f.last.ViolatedConstraints)))
}

// TimeSincePreviousSubmission is the gap in seconds since the previous
// submission. A fresh session breaks the chain.
type TimeSincePreviousSubmission struct {
	pairState
	column
}

func NewTimeSincePreviousSubmission() *TimeSincePreviousSubmission {
	return &TimeSincePreviousSubmission{}
}

func (f *TimeSincePreviousSubmission) Name() string     { return "time_since_previous_submission" }
func (f *TimeSincePreviousSubmission) ARFFType() string { return TypeNumeric }

func (f *TimeSincePreviousSubmission) Consume(sub *submission.Submission) {
	f.advance(sub)
	if f.last == nil || sub.BeginSession != nil {
		f.push(Null())
		return
	}
	if d, ok := seconds(sub.SubmitTime, f.last.SubmitTime); ok {
		f.push(Number(d))
		return
	}
	f.push(Null())
}

// ProblemTimeFromStart is the seconds from when the current problem was
// first picked up to this submission.
type ProblemTimeFromStart struct {
	pairState
	column
	curID *int
	start *time.Time
}

func NewProblemTimeFromStart() *ProblemTimeFromStart { return &ProblemTimeFromStart{} }

func (f *ProblemTimeFromStart) Name() string     { return "problem_time_from_start" }
func (f *ProblemTimeFromStart) ARFFType() string { return TypeNumeric }

func (f *ProblemTimeFromStart) Consume(sub *submission.Submission) {
	f.advance(sub)
	if intPtrEq(f.curID, sub.ProblemID) {
		if d, ok := seconds(sub.SubmitTime, f.start); ok {
			f.push(Number(d))
			return
		}
		f.push(Null())
		return
	}
	f.curID = sub.ProblemID
	f.start = sub.BeginTime
	if d, ok := seconds(sub.SubmitTime, sub.BeginTime); ok {
		f.push(Number(d))
		return
	}
	f.push(Null())
}

// SubmissionNumber counts submissions within the current problem,
// restarting at one when the problem changes.
type SubmissionNumber struct {
	pairState
	column
	count int
}

func NewSubmissionNumber() *SubmissionNumber { return &SubmissionNumber{count: 1} }

func (f *SubmissionNumber) Name() string     { return "submission_number" }
func (f *SubmissionNumber) ARFFType() string { return TypeNumeric }

func (f *SubmissionNumber) Consume(sub *submission.Submission) {
	f.advance(sub)
	switch {
	case f.last == nil:
		f.count = 1
	case !intPtrEq(f.last.ProblemID, sub.ProblemID):
		f.count = 1
	default:
		f.count++
	}
	f.push(Number(float64(f.count)))
}

// SessionTimeFromStart is the seconds from the start of the current
// session to this submission.
type SessionTimeFromStart struct {
	pairState
	column
	start  *time.Time
	logger *slog.Logger
}

func NewSessionTimeFromStart(logger *slog.Logger) *SessionTimeFromStart {
	return &SessionTimeFromStart{logger: logger}
}

func (f *SessionTimeFromStart) Name() string     { return "session_time_from_start" }
func (f *SessionTimeFromStart) ARFFType() string { return TypeNumeric }

func (f *SessionTimeFromStart) Consume(sub *submission.Submission) {
	f.advance(sub)
	if sub.BeginSession != nil {
		f.start = sub.BeginSession
	}
	d, ok := seconds(sub.SubmitTime, f.start)
	if !ok {
		f.push(Null())
		return
	}
	if d < 0 {
		f.logger.Warn("negative session time, inspect log file", "seconds", d)
	}
	f.push(Number(d))
}

// SubmissionTimeDifference is the squared gap in seconds between
// consecutive submissions.
type SubmissionTimeDifference struct {
	pairState
	column
}

func NewSubmissionTimeDifference() *SubmissionTimeDifference { return &SubmissionTimeDifference{} }

func (f *SubmissionTimeDifference) Name() string     { return "submission_time_diff_sq" }
func (f *SubmissionTimeDifference) ARFFType() string { return TypeNumeric }

func (f *SubmissionTimeDifference) Consume(sub *submission.Submission) {
	f.advance(sub)
	if f.last == nil {
		f.push(Null())
		return
	}
	if d, ok := seconds(sub.SubmitTime, f.last.SubmitTime); ok {
		f.push(Number(d * d))
		return
	}
	f.push(Null())
}

// ProblemsAttemptedCumulative counts distinct problems attempted in the
// current session. A missing problem id still counts as one distinct
// problem. This is also the column the warm-up trim keys on.
type ProblemsAttemptedCumulative struct {
	pairState
	column
	ids     map[int]struct{}
	nilSeen bool
}

func NewProblemsAttemptedCumulative() *ProblemsAttemptedCumulative {
	return &ProblemsAttemptedCumulative{ids: map[int]struct{}{}}
}

func (f *ProblemsAttemptedCumulative) Name() string     { return "session_problems_attempted" }
func (f *ProblemsAttemptedCumulative) ARFFType() string { return TypeNumeric }

func (f *ProblemsAttemptedCumulative) Consume(sub *submission.Submission) {
	f.advance(sub)
	if sub.BeginSession != nil {
		f.ids = map[int]struct{}{}
		f.nilSeen = false
	}
	if sub.ProblemID == nil {
		f.nilSeen = true
	} else {
		f.ids[*sub.ProblemID] = struct{}{}
	}
	n := len(f.ids)
	if f.nilSeen {
		n++
	}
	f.push(Number(float64(n)))
}

// ProblemsCompletedCumulative counts distinct problems solved in the
// current session.
type ProblemsCompletedCumulative struct {
	pairState
	column
	ids     map[int]struct{}
	nilSeen bool
}

func NewProblemsCompletedCumulative() *ProblemsCompletedCumulative {
	return &ProblemsCompletedCumulative{ids: map[int]struct{}{}}
}

func (f *ProblemsCompletedCumulative) Name() string     { return "session_problems_completed" }
func (f *ProblemsCompletedCumulative) ARFFType() string { return TypeNumeric }

func (f *ProblemsCompletedCumulative) Consume(sub *submission.Submission) {
	f.advance(sub)
	if sub.BeginSession != nil {
		f.ids = map[int]struct{}{}
		f.nilSeen = false
	}
	if sub.Solved {
		if sub.ProblemID == nil {
			f.nilSeen = true
		} else {
			f.ids[*sub.ProblemID] = struct{}{}
		}
	}
	n := len(f.ids)
	if f.nilSeen {
		n++
	}
	f.push(Number(float64(n)))
}

// DatabaseChangesCumulative is the running total of database switches
// across the whole log.
type DatabaseChangesCumulative struct {
	pairState
	column
	total int
}

func NewDatabaseChangesCumulative() *DatabaseChangesCumulative {
	return &DatabaseChangesCumulative{}
}

func (f *DatabaseChangesCumulative) Name() string     { return "session_database_changes" }
func (f *DatabaseChangesCumulative) ARFFType() string { return TypeNumeric }

func (f *DatabaseChangesCumulative) Consume(sub *submission.Submission) {
	f.advance(sub)
	f.total += sub.DatabaseChanges
	f.push(Number(float64(f.total)))
}
