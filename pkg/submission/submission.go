// Package submission folds classified log events into discrete student
// attempt records.
package submission

import (
	"time"

	"github.com/leowmjw/go-tutor-featex/pkg/logparse"
)

// Submission is one attempt cycle: everything that happened between
// picking up a problem and the tutor evaluating the submitted solution.
// It is mutated in place as qualifying events arrive and finalized by a
// post-process event.
type Submission struct {
	Database        string `json:"database,omitempty"`
	DatabaseChanges int    `json:"database_changes"`

	ProblemID     *int   `json:"problem_id,omitempty"`
	ProblemStatus string `json:"problem_status,omitempty"`

	BeginHelpLevel  *int `json:"begin_help_level,omitempty"`
	SubmitHelpLevel *int `json:"submit_help_level,omitempty"`

	BeginTime  *time.Time `json:"begin_time,omitempty"`
	SubmitTime *time.Time `json:"submit_time,omitempty"`

	BeginSession *time.Time `json:"begin_session,omitempty"`
	EndSession   *time.Time `json:"end_session,omitempty"`

	SatisfiedConstraints []int `json:"satisfied_constraints"`
	ViolatedConstraints  []int `json:"violated_constraints"`

	Solved   bool   `json:"solved"`
	Solution string `json:"solution,omitempty"`

	ModelMeasure *logparse.ModelMeasureEvent `json:"-"`
}

// New returns an empty accumulator.
func New() *Submission {
	return &Submission{
		SatisfiedConstraints: []int{},
		ViolatedConstraints:  []int{},
	}
}

// ShouldSkip reports whether the submission carries neither a solution
// nor a session start. Such records are noise (a session fragment with
// nothing submitted) and are excluded from every feature and from the
// label sequence.
func (s *Submission) ShouldSkip() bool {
	return s.Solution == "" && s.BeginSession == nil
}

func (s *Submission) sessionBegin(ts time.Time) {
	t := ts
	s.BeginSession = &t
}

func (s *Submission) setProblem(ev logparse.NewProblemEvent) {
	level := ev.HelpLevel
	t := ev.Timestamp()
	s.BeginHelpLevel = &level
	s.BeginTime = &t
}

// databaseChange handles both the tutor setting the database and the
// user switching it; only the latter carries a problem id.
func (s *Submission) databaseChange(ts time.Time, database string, problemID *int) {
	if database != s.Database {
		s.DatabaseChanges++
		s.Database = database
	}
	if s.BeginTime == nil {
		t := ts
		s.BeginTime = &t
	}
	if problemID != nil {
		id := *problemID
		s.ProblemID = &id
	}
}

func (s *Submission) drawingProblem(ev logparse.DrawingProblemEvent) {
	// best-quality begin time: overwrites whatever was set before
	t := ev.Timestamp()
	id := ev.ProblemID
	s.BeginTime = &t
	s.ProblemID = &id
}

func (s *Submission) clientResponse(ev logparse.ClientRespondingEvent) {
	s.ProblemID = ev.ProblemID
	s.ProblemStatus = ev.ProblemStatus
	s.SubmitHelpLevel = ev.HelpLevel
}

func (s *Submission) preProcess(ev logparse.PreProcessEvent) {
	s.Solution = ev.Solution
}

func (s *Submission) postProcess(ev logparse.PostProcessEvent) {
	t := ev.Timestamp()
	s.ViolatedConstraints = ev.ViolatedConstraints
	s.SatisfiedConstraints = ev.SatisfiedConstraints
	s.SubmitTime = &t
	if len(ev.ViolatedConstraints) == 0 {
		s.Solved = true
	}
}

func (s *Submission) sessionEnd(ev logparse.SessionEndEvent) {
	t := ev.Timestamp()
	s.EndSession = &t
}

// FromEvents folds an event sequence into finalized submissions. Only a
// post-process event finalizes the current accumulator; a trailing
// accumulator that never sees one is discarded, so an attempt cut off
// before evaluation contributes no record.
func FromEvents(events []logparse.Event) []*Submission {
	current := New()
	var out []*Submission
	for _, ev := range events {
		switch ev := ev.(type) {
		case logparse.LoginEvent:
			current.sessionBegin(ev.Timestamp())
		case logparse.NewUserEvent:
			// registering is a first login: it opens the session too
			current.sessionBegin(ev.Timestamp())
		case logparse.NewProblemEvent:
			current.setProblem(ev)
		case logparse.DatabaseSetEvent:
			current.databaseChange(ev.Timestamp(), ev.Database, nil)
		case logparse.DatabaseChangeEvent:
			id := ev.ProblemID
			current.databaseChange(ev.Timestamp(), ev.Database, &id)
		case logparse.DrawingProblemEvent:
			current.drawingProblem(ev)
		case logparse.ClientRespondingEvent:
			current.clientResponse(ev)
		case logparse.PreProcessEvent:
			current.preProcess(ev)
		case logparse.PostProcessEvent:
			current.postProcess(ev)
			out = append(out, current)
			current = New()
		case logparse.ModelMeasureEvent:
			mm := ev
			current.ModelMeasure = &mm
		case logparse.SessionEndEvent:
			current.sessionEnd(ev)
		}
	}
	return out
}
