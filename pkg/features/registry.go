package features

import (
	"log/slog"

	"github.com/davecgh/go-spew/spew"

	"github.com/leowmjw/go-tutor-featex/pkg/submission"
)

// BuildAll returns fresh extractors in the fixed column order of the
// output relation. The order is part of the data contract: columns from
// different log files are concatenated positionally.
func BuildAll(table ComplexityTable, logger *slog.Logger) []Extractor {
	return []Extractor{
		NewViolatedConstraints(),
		NewSatisfiedConstraints(),
		NewHelpLevel(),
		NewDecreasedViolatedConstraints(),
		NewTimeSincePreviousSubmission(),
		NewProblemTimeFromStart(),
		NewSubmissionNumber(),
		NewSessionTimeFromStart(logger),
		NewSubmissionTimeDifference(),
		NewFirstSubmitTimePrev(),
		NewTimeTakenPrev(logger),
		NewCompletedPrev(),
		NewSubmissionCountPrev(),
		NewMaxViolatedConstraints(),
		NewNumberWrongSubmissions(),
		NewAverageSubmissionTime(),
		NewLatestSubmissionTime(logger),
		NewStdevSubmissionTime(),
		NewMaxSubmissionTime(),
		NewMinSubmissionTime(),
		NewSameDatabasePrev(),
		NewDifferentFeedbackOptionsPrev(),
		NewTimeSinceSessionStartPrev(logger),
		NewProblemsAttemptedCumulative(),
		NewProblemsCompletedCumulative(),
		NewDatabaseChangesCumulative(),
		NewTimeSpentOnProblem(),
		NewTimeBetweenSubmissions(),
		NewNumberOfSubmissions(),
		NewProblemComplexity(table, logger),
		NewProblemComplexityPrev(table, logger),
		NewStudentLevel(table),
		NewStudentLevelComplexityDifference(table),
		NewIdenticalSubmission(),
		NewTimeUntilFirstSubmission(),
	}
}

// Run feeds the surviving submissions to every extractor in order.
// Skipped submissions are invisible to all extractors, so every column
// ends up the same length.
func Run(extractors []Extractor, subs []*submission.Submission, logger *slog.Logger) {
	for _, sub := range subs {
		if sub.ShouldSkip() {
			logger.Debug("skipping submission without solution or session start",
				"submission", spew.Sdump(sub))
			continue
		}
		for _, ex := range extractors {
			ex.Consume(sub)
		}
	}
}
