package logparse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Kind identifies one event shape.
type Kind string

// Event kinds, one per recognized log-line shape plus the Unknown
// catch-all.
const (
	KindLogin             Kind = "login"
	KindNewUser           Kind = "new-user"
	KindModelCreated      Kind = "model-created"
	KindDatabaseSet       Kind = "database-set"
	KindNewProblem        Kind = "new-problem"
	KindDatabaseChange    Kind = "database-change"
	KindDrawingProblem    Kind = "drawing-problem"
	KindClientResponding  Kind = "client-responding"
	KindPreProcess        Kind = "pre-process"
	KindAnswerCorrect     Kind = "answer-correct"
	KindHelpLevelSet      Kind = "help-level-set"
	KindPostProcess       Kind = "post-process"
	KindIncorrectFeedback Kind = "incorrect-feedback"
	KindModelMeasure      Kind = "model-measure"
	KindModelCoverage     Kind = "model-coverage"
	KindDisplayingModel   Kind = "displaying-model"
	KindSessionEnd        Kind = "session-end"
	KindUnknown           Kind = "unknown"
)

// Event is one classified, timestamped unit extracted from the raw log.
type Event interface {
	Kind() Kind
	Timestamp() time.Time
}

// ParseError reports that a line matched an event shape but its payload
// did not have the expected structure. It is per-event and non-fatal: the
// stream builder records it and continues with the next line.
type ParseError struct {
	EventKind Kind
	Line      string
	Reason    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s event: %s: %q", e.EventKind, e.Reason, e.Line)
}

// baseEvent carries the fields every event shares.
type baseEvent struct {
	Time time.Time `json:"timestamp"`
	Line string    `json:"line"`
}

func (e baseEvent) Timestamp() time.Time { return e.Time }

// LoginEvent marks a user logging in.
type LoginEvent struct{ baseEvent }

func (LoginEvent) Kind() Kind { return KindLogin }

// NewUserEvent marks a user registering; its line also reads as a login,
// so it must be recognized first.
type NewUserEvent struct{ baseEvent }

func (NewUserEvent) Kind() Kind { return KindNewUser }

// ModelCreatedEvent marks creation of the student model file.
type ModelCreatedEvent struct{ baseEvent }

func (ModelCreatedEvent) Kind() Kind { return KindModelCreated }

// DatabaseSetEvent marks the tutor setting the working database.
type DatabaseSetEvent struct {
	baseEvent
	Database string `json:"database"`
}

func (DatabaseSetEvent) Kind() Kind { return KindDatabaseSet }

// NewProblemEvent marks the tutor setting a new problem; the line carries
// the help level chosen as a consequence.
type NewProblemEvent struct {
	baseEvent
	HelpLevel int `json:"help_level"`
}

func (NewProblemEvent) Kind() Kind { return KindNewProblem }

// DatabaseChangeEvent marks a database change initiated by the user; the
// line also carries the problem id the student moves to.
type DatabaseChangeEvent struct {
	baseEvent
	Database  string `json:"database"`
	ProblemID int    `json:"problem_id"`
}

func (DatabaseChangeEvent) Kind() Kind { return KindDatabaseChange }

// DrawingProblemEvent marks the system selecting a problem.
type DrawingProblemEvent struct {
	baseEvent
	ProblemID     int    `json:"problem_id"`
	ProblemStatus string `json:"problem_status"`
}

func (DrawingProblemEvent) Kind() Kind { return KindDrawingProblem }

// ClientRespondingEvent marks the client responding to a new problem. The
// payload spans two physical lines; construction pulls the second line
// from the cursor itself.
type ClientRespondingEvent struct {
	baseEvent
	ProblemID     *int   `json:"problem_id,omitempty"`
	ProblemStatus string `json:"problem_status,omitempty"`
	HelpLevel     *int   `json:"help_level,omitempty"`
	FeedbackLevel string `json:"feedback_level,omitempty"`

	slowServer bool
}

func (ClientRespondingEvent) Kind() Kind { return KindClientResponding }

// SlowServer reports whether the two payload lines were written more than
// a second apart, a sign the tutor server was struggling when the log was
// recorded.
func (e ClientRespondingEvent) SlowServer() bool { return e.slowServer }

// PreProcessEvent captures a submitted solution verbatim. Construction
// consumes raw lines until one contains the "Mode: " marker.
type PreProcessEvent struct {
	baseEvent
	Solution string `json:"solution"`
}

func (PreProcessEvent) Kind() Kind { return KindPreProcess }

// AnswerCorrectEvent marks a correct submission.
type AnswerCorrectEvent struct{ baseEvent }

func (AnswerCorrectEvent) Kind() Kind { return KindAnswerCorrect }

// HelpLevelSetEvent marks a help-level change.
type HelpLevelSetEvent struct {
	baseEvent
	HelpLevel int `json:"help_level"`
}

func (HelpLevelSetEvent) Kind() Kind { return KindHelpLevelSet }

// PostProcessEvent is the solution evaluation. Satisfied and violated
// constraints may arrive on one line or spread over several; in the
// latter case construction consumes lines until two blank lines have
// passed, then applies the one-line grammar to the whole payload.
type PostProcessEvent struct {
	baseEvent
	SatisfiedConstraints []int `json:"satisfied_constraints"`
	ViolatedConstraints  []int `json:"violated_constraints"`
	FeedbackLevel        int   `json:"feedback_level"`
}

func (PostProcessEvent) Kind() Kind { return KindPostProcess }

// IncorrectFeedbackEvent carries the feedback text shown for a wrong
// submission.
type IncorrectFeedbackEvent struct {
	baseEvent
	Feedback string `json:"feedback"`
}

func (IncorrectFeedbackEvent) Kind() Kind { return KindIncorrectFeedback }

// ClauseMeasure is a correct/total pair for one SQL clause of the student
// model.
type ClauseMeasure struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// Percentage returns Correct/Total; ok is false when Total is zero.
func (m ClauseMeasure) Percentage() (float64, bool) {
	if m.Total == 0 {
		return 0, false
	}
	return float64(m.Correct) / float64(m.Total), true
}

// ModelMeasureEvent carries the per-clause student model measures.
type ModelMeasureEvent struct {
	baseEvent
	Select ClauseMeasure `json:"select"`
	From   ClauseMeasure `json:"from"`
	Where  ClauseMeasure `json:"where"`
	Group  ClauseMeasure `json:"group"`
	Having ClauseMeasure `json:"having"`
	Order  ClauseMeasure `json:"order"`
}

func (ModelMeasureEvent) Kind() Kind { return KindModelMeasure }

// ModelCoverageEvent carries the per-clause student model coverage.
type ModelCoverageEvent struct {
	baseEvent
	Select ClauseMeasure `json:"select"`
	From   ClauseMeasure `json:"from"`
	Where  ClauseMeasure `json:"where"`
	Group  ClauseMeasure `json:"group"`
	Having ClauseMeasure `json:"having"`
	Order  ClauseMeasure `json:"order"`
}

func (ModelCoverageEvent) Kind() Kind { return KindModelCoverage }

// DisplayingModelEvent marks the student model being shown to the user.
type DisplayingModelEvent struct{ baseEvent }

func (DisplayingModelEvent) Kind() Kind { return KindDisplayingModel }

// SessionEndEvent marks a logout.
type SessionEndEvent struct{ baseEvent }

func (SessionEndEvent) Kind() Kind { return KindSessionEnd }

// UnknownEvent is the catch-all for timestamped lines no other shape
// claims.
type UnknownEvent struct{ baseEvent }

func (UnknownEvent) Kind() Kind { return KindUnknown }

var (
	databaseChangeRE = regexp.MustCompile(`Changing database to ([a-z-]+)\s`)

	drawingRE    = regexp.MustCompile(`drawing problem: ([0-9]+), problem status: ([A-Z]+)`)
	drawingOldRE = regexp.MustCompile(`Chosing new problem. Current problem No ([0-9]+); status: ([A-Z]+)`)

	respondingProblemRE = regexp.MustCompile(`responding: problem is ([0-9]+) its status is ([A-Z]+)`)
	respondingHelpRE    = regexp.MustCompile(`responding: also set help-level to ([0-9]), feedback=([A-Za-z ]+)`)

	postProcessRE = regexp.MustCompile(`Post-process:\s*` +
		`Satisfied constraints: (?:\(([0-9\s]+)\)|NIL);?\s*` +
		`Violated constraints: (?:\(([0-9\s]+)\)|NIL);?\s*` +
		`Feedback level: ([0-9])`)

	modelMeasureRE = regexp.MustCompile(`select-meas:([0-9]+)/?([0-9]*) ` +
		`from-meas:([0-9]+)/?([0-9]*) where-meas:([0-9]+)/?([0-9]*) ` +
		`group-meas:([0-9]+)/?([0-9]*) having-meas:([0-9]+)/?([0-9]*) ` +
		`order-meas:([0-9]+)/?([0-9]*)`)

	modelCoverageRE = regexp.MustCompile(`select-cov:([0-9]+)/?([0-9]*) ` +
		`from-cov:([0-9]+)/?([0-9]*) where-cov:([0-9]+)/?([0-9]*) ` +
		`group-cov:([0-9]+)/?([0-9]*) having-cov:([0-9]+)/?([0-9]*) ` +
		`order-cov:([0-9]+)/?([0-9]*)`)

	sessionEndRE = regexp.MustCompile(`[Ll]ogged out`)
)

// lastToken returns the final whitespace-delimited token of a line.
func lastToken(line string) string {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return ""
	}
	return fields[len(fields)-1]
}

func lastTokenInt(kind Kind, line string) (int, error) {
	n, err := strconv.Atoi(lastToken(line))
	if err != nil {
		return 0, &ParseError{EventKind: kind, Line: line, Reason: "last token is not an integer"}
	}
	return n, nil
}

func parseLogin(ts time.Time, line string, _ *Cursor) (Event, error) {
	return LoginEvent{baseEvent{ts, line}}, nil
}

func parseNewUser(ts time.Time, line string, _ *Cursor) (Event, error) {
	return NewUserEvent{baseEvent{ts, line}}, nil
}

func parseModelCreated(ts time.Time, line string, _ *Cursor) (Event, error) {
	return ModelCreatedEvent{baseEvent{ts, line}}, nil
}

func parseDatabaseSet(ts time.Time, line string, _ *Cursor) (Event, error) {
	return DatabaseSetEvent{baseEvent{ts, line}, lastToken(line)}, nil
}

func parseNewProblem(ts time.Time, line string, _ *Cursor) (Event, error) {
	level, err := lastTokenInt(KindNewProblem, line)
	if err != nil {
		return nil, err
	}
	return NewProblemEvent{baseEvent{ts, line}, level}, nil
}

func parseDatabaseChange(ts time.Time, line string, _ *Cursor) (Event, error) {
	m := databaseChangeRE.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{EventKind: KindDatabaseChange, Line: line, Reason: "database name not found"}
	}
	problem, err := lastTokenInt(KindDatabaseChange, line)
	if err != nil {
		return nil, err
	}
	return DatabaseChangeEvent{baseEvent{ts, line}, m[1], problem}, nil
}

func parseDrawingProblem(ts time.Time, line string, _ *Cursor) (Event, error) {
	re := drawingOldRE
	if strings.Contains(line, "drawing") {
		re = drawingRE
	}
	m := re.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{EventKind: KindDrawingProblem, Line: line, Reason: "couldn't extract problem id and status"}
	}
	id, _ := strconv.Atoi(m[1])
	return DrawingProblemEvent{baseEvent{ts, line}, id, m[2]}, nil
}

func parseClientResponding(ts time.Time, line string, cur *Cursor) (Event, error) {
	ev := ClientRespondingEvent{baseEvent: baseEvent{ts, line}}
	if m := respondingProblemRE.FindStringSubmatch(line); m != nil {
		id, _ := strconv.Atoi(m[1])
		ev.ProblemID = &id
		ev.ProblemStatus = m[2]
	}

	// the payload spans exactly two physical lines
	line2, ok := cur.Next()
	if !ok {
		return nil, &ParseError{EventKind: KindClientResponding, Line: line, Reason: "missing second payload line"}
	}
	ts2, rest2, err := SplitTimestamp(line2)
	if err != nil {
		return nil, &ParseError{EventKind: KindClientResponding, Line: line2, Reason: "second payload line has no timestamp"}
	}
	ev.slowServer = ts2.Sub(ts) > time.Second
	if m := respondingHelpRE.FindStringSubmatch(rest2); m != nil {
		level, _ := strconv.Atoi(m[1])
		ev.HelpLevel = &level
		ev.FeedbackLevel = m[2]
	}
	return ev, nil
}

func parsePreProcess(ts time.Time, line string, cur *Cursor) (Event, error) {
	var sb strings.Builder
	sb.WriteString(line)
	for !strings.Contains(line, "Mode: ") {
		next, ok := cur.Next()
		if !ok {
			break
		}
		line = next
		sb.WriteString("\n")
		sb.WriteString(line)
	}
	return PreProcessEvent{baseEvent{ts, line}, sb.String()}, nil
}

func parseAnswerCorrect(ts time.Time, line string, _ *Cursor) (Event, error) {
	return AnswerCorrectEvent{baseEvent{ts, line}}, nil
}

func parseHelpLevelSet(ts time.Time, line string, _ *Cursor) (Event, error) {
	level, err := lastTokenInt(KindHelpLevelSet, line)
	if err != nil {
		return nil, err
	}
	return HelpLevelSetEvent{baseEvent{ts, line}, level}, nil
}

func parsePostProcess(ts time.Time, line string, cur *Cursor) (Event, error) {
	payload := line
	if !strings.Contains(line, "Satisfied") || !strings.Contains(line, "Violated") {
		// spread over several lines; consume until two blanks
		blanks := 0
		for blanks < 2 {
			next, ok := cur.Next()
			if !ok {
				break
			}
			payload += "\n" + next
			if strings.TrimSpace(next) == "" {
				blanks++
			}
		}
	}
	m := postProcessRE.FindStringSubmatch(payload)
	if m == nil {
		return nil, &ParseError{EventKind: KindPostProcess, Line: line, Reason: "constraint lists not found"}
	}
	level, _ := strconv.Atoi(m[3])
	return PostProcessEvent{
		baseEvent:            baseEvent{ts, line},
		SatisfiedConstraints: parseConstraintList(m[1]),
		ViolatedConstraints:  parseConstraintList(m[2]),
		FeedbackLevel:        level,
	}, nil
}

// parseConstraintList turns "3 17 204" into ids; an empty group (the NIL
// alternative) yields an empty list.
func parseConstraintList(group string) []int {
	ids := []int{}
	for _, f := range strings.Fields(group) {
		id, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func parseIncorrectFeedback(ts time.Time, line string, _ *Cursor) (Event, error) {
	return IncorrectFeedbackEvent{baseEvent{ts, line}, line}, nil
}

func parseClausePairs(m []string) [6]ClauseMeasure {
	var out [6]ClauseMeasure
	for i := 0; i < 6; i++ {
		correct, _ := strconv.Atoi(m[1+2*i])
		total := 0
		if m[2+2*i] != "" {
			total, _ = strconv.Atoi(m[2+2*i])
		}
		out[i] = ClauseMeasure{Correct: correct, Total: total}
	}
	return out
}

func parseModelMeasure(ts time.Time, line string, _ *Cursor) (Event, error) {
	m := modelMeasureRE.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{EventKind: KindModelMeasure, Line: line, Reason: "measure pairs not found"}
	}
	p := parseClausePairs(m)
	return ModelMeasureEvent{baseEvent{ts, line}, p[0], p[1], p[2], p[3], p[4], p[5]}, nil
}

func parseModelCoverage(ts time.Time, line string, _ *Cursor) (Event, error) {
	m := modelCoverageRE.FindStringSubmatch(line)
	if m == nil {
		return nil, &ParseError{EventKind: KindModelCoverage, Line: line, Reason: "coverage pairs not found"}
	}
	p := parseClausePairs(m)
	return ModelCoverageEvent{baseEvent{ts, line}, p[0], p[1], p[2], p[3], p[4], p[5]}, nil
}

func parseDisplayingModel(ts time.Time, line string, _ *Cursor) (Event, error) {
	return DisplayingModelEvent{baseEvent{ts, line}}, nil
}

func parseSessionEnd(ts time.Time, line string, _ *Cursor) (Event, error) {
	return SessionEndEvent{baseEvent{ts, line}}, nil
}

func parseUnknown(ts time.Time, line string, _ *Cursor) (Event, error) {
	return UnknownEvent{baseEvent{ts, line}}, nil
}
