package logparse

import (
	"strings"
	"time"
)

// shape pairs one event kind's recognition predicate with its
// constructor. Constructors for multi-line kinds pull continuation lines
// from the cursor themselves.
type shape struct {
	kind  Kind
	match func(line string) bool
	parse func(ts time.Time, line string, cur *Cursor) (Event, error)
}

func contains(sub string) func(string) bool {
	return func(line string) bool { return strings.Contains(line, sub) }
}

// registeredShapes is tried in order; the first matching predicate wins.
// More specific shapes come before the general ones that textually
// subsume them (new-user before login), and Unknown is last or it would
// eat everything after it.
var registeredShapes = []shape{
	{KindNewUser, func(line string) bool {
		return strings.Contains(line, "Registred as a new user") ||
			strings.Contains(line, "Registered as a new user")
	}, parseNewUser},
	{KindModelCreated, contains("Student model file created."), parseModelCreated},
	{KindDatabaseSet, contains("Database is set to"), parseDatabaseSet},
	{KindNewProblem, contains("set-new-problem"), parseNewProblem},
	{KindDatabaseChange, contains("Changing database to "), parseDatabaseChange},
	{KindDrawingProblem, func(line string) bool {
		return strings.Contains(line, "drawing problem") || strings.Contains(line, "Chosing")
	}, parseDrawingProblem},
	{KindClientResponding, contains("responding:"), parseClientResponding},
	{KindPreProcess, contains("Pre-process:"), parsePreProcess},
	{KindAnswerCorrect, contains("Answer correct"), parseAnswerCorrect},
	{KindHelpLevelSet, contains("Now help-level is "), parseHelpLevelSet},
	{KindPostProcess, contains("Post-process:"), parsePostProcess},
	{KindIncorrectFeedback, contains(" feedback "), parseIncorrectFeedback},
	{KindModelMeasure, contains("from-meas:"), parseModelMeasure},
	{KindModelCoverage, contains("from-cov:"), parseModelCoverage},
	{KindDisplayingModel, contains("displaying student model"), parseDisplayingModel},
	{KindSessionEnd, sessionEndRE.MatchString, parseSessionEnd},
	{KindLogin, contains("Logged in"), parseLogin},
	{KindUnknown, func(string) bool { return true }, parseUnknown},
}

// Recognize classifies one timestamped line into exactly one Event. Every
// line yields an event: the Unknown shape always matches. A non-nil error
// means the matched shape's payload was malformed.
func Recognize(ts time.Time, line string, cur *Cursor) (Event, error) {
	for _, s := range registeredShapes {
		if s.match(line) {
			return s.parse(ts, line, cur)
		}
	}
	// unreachable: Unknown matches everything
	return UnknownEvent{baseEvent{ts, line}}, nil
}
