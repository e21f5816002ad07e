package features

import (
	"log/slog"
	"time"

	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// The prev-problem extractors aggregate over all submissions of the
// problem attempted before the current one. They all emit a missing
// value until a previous problem exists.

// FirstSubmitTimePrev is the seconds the previous problem's first
// submission took.
type FirstSubmitTimePrev struct {
	prevProblemState
	column
}

func NewFirstSubmitTimePrev() *FirstSubmitTimePrev { return &FirstSubmitTimePrev{} }

func (f *FirstSubmitTimePrev) Name() string     { return "prev_first_submit_time" }
func (f *FirstSubmitTimePrev) ARFFType() string { return TypeNumeric }

func (f *FirstSubmitTimePrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		if d, ok := seconds(prev[0].SubmitTime, prev[0].BeginTime); ok {
			return Number(d)
		}
		return Null()
	}))
}

// TimeTakenPrev is the seconds from first pickup to last submission of
// the previous problem.
type TimeTakenPrev struct {
	prevProblemState
	column
	logger *slog.Logger
}

func NewTimeTakenPrev(logger *slog.Logger) *TimeTakenPrev {
	return &TimeTakenPrev{logger: logger}
}

func (f *TimeTakenPrev) Name() string     { return "prev_time_taken" }
func (f *TimeTakenPrev) ARFFType() string { return TypeNumeric }

func (f *TimeTakenPrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		last := prev[len(prev)-1]
		d, ok := seconds(last.SubmitTime, prev[0].BeginTime)
		if !ok {
			return Null()
		}
		if d > 1000000 {
			f.logger.Warn("implausible problem duration, inspect log file", "seconds", d)
		}
		return Number(d)
	}))
}

// CompletedPrev reports whether any submission of the previous problem
// solved it.
type CompletedPrev struct {
	prevProblemState
	column
}

func NewCompletedPrev() *CompletedPrev { return &CompletedPrev{} }

func (f *CompletedPrev) Name() string     { return "prev_completed" }
func (f *CompletedPrev) ARFFType() string { return TypeBoolean }

func (f *CompletedPrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		for _, s := range prev {
			if s.Solved {
				return Bool(true)
			}
		}
		return Bool(false)
	}))
}

// SubmissionCountPrev is the number of submissions the previous problem
// received.
type SubmissionCountPrev struct {
	prevProblemState
	column
}

func NewSubmissionCountPrev() *SubmissionCountPrev { return &SubmissionCountPrev{} }

func (f *SubmissionCountPrev) Name() string     { return "prev_submission_count" }
func (f *SubmissionCountPrev) ARFFType() string { return TypeNumeric }

func (f *SubmissionCountPrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		return Number(float64(len(prev)))
	}))
}

// MaxViolatedConstraints is the worst violation count seen on the
// previous problem.
type MaxViolatedConstraints struct {
	prevProblemState
	column
}

func NewMaxViolatedConstraints() *MaxViolatedConstraints { return &MaxViolatedConstraints{} }

func (f *MaxViolatedConstraints) Name() string     { return "prev_max_violated_constraints" }
func (f *MaxViolatedConstraints) ARFFType() string { return TypeNumeric }

func (f *MaxViolatedConstraints) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		max := 0
		for _, s := range prev {
			if n := len(s.ViolatedConstraints); n > max {
				max = n
			}
		}
		return Number(float64(max))
	}))
}

// NumberWrongSubmissions counts the previous problem's unsolved
// submissions.
type NumberWrongSubmissions struct {
	prevProblemState
	column
}

func NewNumberWrongSubmissions() *NumberWrongSubmissions { return &NumberWrongSubmissions{} }

func (f *NumberWrongSubmissions) Name() string     { return "prev_count_wrong_submissions" }
func (f *NumberWrongSubmissions) ARFFType() string { return TypeNumeric }

func (f *NumberWrongSubmissions) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		wrong := 0
		for _, s := range prev {
			if !s.Solved {
				wrong++
			}
		}
		return Number(float64(wrong))
	}))
}

// AverageSubmissionTime is the mean per-submission duration on the
// previous problem.
type AverageSubmissionTime struct {
	prevProblemState
	column
}

func NewAverageSubmissionTime() *AverageSubmissionTime { return &AverageSubmissionTime{} }

func (f *AverageSubmissionTime) Name() string     { return "prev_avg_submission_time" }
func (f *AverageSubmissionTime) ARFFType() string { return TypeNumeric }

func (f *AverageSubmissionTime) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		data := submissionDurations(prev)
		if len(data) == 0 {
			return Null()
		}
		return Number(mean(data))
	}))
}

// LatestSubmissionTime is the duration of the previous problem's final
// submission.
type LatestSubmissionTime struct {
	prevProblemState
	column
	logger *slog.Logger
}

func NewLatestSubmissionTime(logger *slog.Logger) *LatestSubmissionTime {
	return &LatestSubmissionTime{logger: logger}
}

func (f *LatestSubmissionTime) Name() string     { return "prev_latest_submission_time" }
func (f *LatestSubmissionTime) ARFFType() string { return TypeNumeric }

func (f *LatestSubmissionTime) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		last := prev[len(prev)-1]
		d, ok := seconds(last.SubmitTime, last.BeginTime)
		if !ok {
			return Null()
		}
		if d < 0 {
			f.logger.Warn("submission precedes its problem start, inspect log file", "seconds", d)
		}
		return Number(d)
	}))
}

// StdevSubmissionTime is the spread of per-submission durations on the
// previous problem.
type StdevSubmissionTime struct {
	prevProblemState
	column
}

func NewStdevSubmissionTime() *StdevSubmissionTime { return &StdevSubmissionTime{} }

func (f *StdevSubmissionTime) Name() string     { return "prev_stdev_submission_time" }
func (f *StdevSubmissionTime) ARFFType() string { return TypeNumeric }

func (f *StdevSubmissionTime) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		data := submissionDurations(prev)
		if len(data) < 2 {
			return Null()
		}
		return Number(sampleStdev(data))
	}))
}

// MaxSubmissionTime is the longest per-submission duration on the
// previous problem.
type MaxSubmissionTime struct {
	prevProblemState
	column
}

func NewMaxSubmissionTime() *MaxSubmissionTime { return &MaxSubmissionTime{} }

func (f *MaxSubmissionTime) Name() string     { return "prev_max_submission_time" }
func (f *MaxSubmissionTime) ARFFType() string { return TypeNumeric }

func (f *MaxSubmissionTime) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		data := submissionDurations(prev)
		if len(data) == 0 {
			return Null()
		}
		max := data[0]
		for _, d := range data[1:] {
			if d > max {
				max = d
			}
		}
		return Number(max)
	}))
}

// MinSubmissionTime is the shortest per-submission duration on the
// previous problem.
type MinSubmissionTime struct {
	prevProblemState
	column
}

func NewMinSubmissionTime() *MinSubmissionTime { return &MinSubmissionTime{} }

func (f *MinSubmissionTime) Name() string     { return "prev_min_submission_time" }
func (f *MinSubmissionTime) ARFFType() string { return TypeNumeric }

func (f *MinSubmissionTime) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		data := submissionDurations(prev)
		if len(data) == 0 {
			return Null()
		}
		min := data[0]
		for _, d := range data[1:] {
			if d < min {
				min = d
			}
		}
		return Number(min)
	}))
}

// SameDatabasePrev reports whether the current problem's first
// submission already had a database in place.
type SameDatabasePrev struct {
	prevProblemState
	column
}

func NewSameDatabasePrev() *SameDatabasePrev { return &SameDatabasePrev{} }

func (f *SameDatabasePrev) Name() string     { return "prev_problem_same_db" }
func (f *SameDatabasePrev) ARFFType() string { return TypeBoolean }

func (f *SameDatabasePrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func([]*submission.Submission) Value {
		return Bool(f.curSubs[0].Database != "")
	}))
}

// DifferentFeedbackOptionsPrev counts the distinct help levels used
// across the previous problem's submissions. A missing help level is its
// own distinct option.
type DifferentFeedbackOptionsPrev struct {
	prevProblemState
	column
}

func NewDifferentFeedbackOptionsPrev() *DifferentFeedbackOptionsPrev {
	return &DifferentFeedbackOptionsPrev{}
}

func (f *DifferentFeedbackOptionsPrev) Name() string     { return "prev_diff_feedback_options" }
func (f *DifferentFeedbackOptionsPrev) ARFFType() string { return TypeNumeric }

func (f *DifferentFeedbackOptionsPrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		levels := map[int]struct{}{}
		nilSeen := false
		for _, s := range prev {
			if s.SubmitHelpLevel == nil {
				nilSeen = true
				continue
			}
			levels[*s.SubmitHelpLevel] = struct{}{}
		}
		n := len(levels)
		if nilSeen {
			n++
		}
		return Number(float64(n))
	}))
}

// TimeSinceSessionStartPrev is the seconds from session start to the
// previous problem's pickup.
type TimeSinceSessionStartPrev struct {
	prevProblemState
	column
	sessionStart *time.Time
	logger       *slog.Logger
}

func NewTimeSinceSessionStartPrev(logger *slog.Logger) *TimeSinceSessionStartPrev {
	return &TimeSinceSessionStartPrev{logger: logger}
}

func (f *TimeSinceSessionStartPrev) Name() string     { return "prev_time_since_session_start" }
func (f *TimeSinceSessionStartPrev) ARFFType() string { return TypeNumeric }

func (f *TimeSinceSessionStartPrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		begin := prev[0].BeginTime
		if begin == nil {
			f.logger.Warn("previous problem has no begin time, inspect log file")
			return Null()
		}
		for _, s := range prev {
			if s.BeginSession == nil {
				continue
			}
			if f.sessionStart == nil || !begin.Before(*s.BeginSession) {
				f.sessionStart = s.BeginSession
			}
		}
		d, ok := seconds(begin, f.sessionStart)
		if !ok {
			f.logger.Warn("no session start preceding previous problem, inspect log file")
			return Null()
		}
		if d < 0 || d > 100000 {
			f.logger.Warn("implausible time since session start, inspect log file", "seconds", d)
		}
		return Number(d)
	}))
}

// ProblemComplexityPrev is the difficulty rank of the previous problem.
type ProblemComplexityPrev struct {
	prevProblemState
	column
	table  ComplexityTable
	logger *slog.Logger
}

func NewProblemComplexityPrev(table ComplexityTable, logger *slog.Logger) *ProblemComplexityPrev {
	return &ProblemComplexityPrev{table: table, logger: logger}
}

func (f *ProblemComplexityPrev) Name() string     { return "prev_problem_complexity" }
func (f *ProblemComplexityPrev) ARFFType() string { return TypeNumeric }

func (f *ProblemComplexityPrev) Consume(sub *submission.Submission) {
	f.push(prevValue(&f.prevProblemState, sub, func(prev []*submission.Submission) Value {
		id := prev[0].ProblemID
		if id == nil {
			f.logger.Warn("dirty log: previous problem has no id")
			return Null()
		}
		c, ok := f.table[*id]
		if !ok {
			f.logger.Warn("dirty log: problem missing from complexity table", "problem_id", *id)
			return Null()
		}
		return Number(float64(c))
	}))
}

// prevValue advances the problem buckets and evaluates fn against the
// previous problem's submissions, or yields a missing value while no
// previous problem exists yet.
func prevValue(state *prevProblemState, sub *submission.Submission, fn func([]*submission.Submission) Value) Value {
	state.advanceProblem(sub)
	if len(state.prevSubs) == 0 {
		return Null()
	}
	return fn(state.prevSubs)
}

// submissionDurations collects per-submission durations in seconds,
// skipping submissions missing either endpoint.
func submissionDurations(subs []*submission.Submission) []float64 {
	var data []float64
	for _, s := range subs {
		if d, ok := seconds(s.SubmitTime, s.BeginTime); ok {
			data = append(data, d)
		}
	}
	return data
}
