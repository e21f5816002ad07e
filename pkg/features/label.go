package features

import (
	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// Class labels for the output relation.
const (
	LabelAbandoned    = "abandoned"
	LabelNotAbandoned = "not_abandoned"

	// LabelType is the nominal attribute declaration for the class
	// column.
	LabelType = "{abandoned, not_abandoned}"
)

// Classify labels each surviving submission with whether the student
// went on to abandon the problem. The lookahead runs over the unfiltered
// sequence: a skipped successor still reveals what happened next, it
// just gets no row of its own.
func Classify(subs []*submission.Submission) []string {
	var labels []string
	for i, sub := range subs {
		if sub.ShouldSkip() {
			continue
		}
		var label string
		switch {
		case sub.Solved:
			label = LabelNotAbandoned
		case i+1 >= len(subs):
			// nothing followed: the student walked away
			label = LabelAbandoned
		case intPtrEq(sub.ProblemID, subs[i+1].ProblemID):
			if subs[i+1].ShouldSkip() {
				label = LabelAbandoned
			} else {
				label = LabelNotAbandoned
			}
		default:
			label = LabelAbandoned
		}
		labels = append(labels, label)
	}
	return labels
}
