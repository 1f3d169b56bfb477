package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSummarizeTalliesEveryDimension(t *testing.T) {
	classified := classifiedWith(
		StatusNew, StatusNew, StatusNew,
		StatusUpdated,
		StatusUnchanged, StatusUnchanged,
	)
	classified[0].Admitted = true
	classified[0].FetchOutcome = OutcomeFetched
	classified[1].Admitted = true
	classified[1].FetchOutcome = OutcomeSkippedTooLarge
	classified[1].SkipReason = SkipReasonTooLarge
	classified[2].SkipReason = SkipReasonNewLimit
	classified[3].Admitted = true
	classified[3].FetchOutcome = OutcomeFetchError

	s := Summarize(classified)
	assert.Equal(t, Summary{
		NewCount:             3,
		UpdatedCount:         1,
		UnchangedCount:       2,
		LimitedCount:         1,
		FetchedCount:         1,
		SkippedTooLargeCount: 1,
		FetchErrorCount:      1,
	}, s)
}

func TestSummarizeSizeSkipIsNotLimited(t *testing.T) {
	classified := classifiedWith(StatusNew)
	classified[0].Admitted = true
	classified[0].SkipReason = SkipReasonTooLarge
	classified[0].FetchOutcome = OutcomeSkippedTooLarge

	s := Summarize(classified)
	assert.Zero(t, s.LimitedCount, "only the admission cap counts as limited")
	assert.Equal(t, 1, s.SkippedTooLargeCount)
}

func TestSummarizeEmpty(t *testing.T) {
	assert.Zero(t, Summarize(nil))
}
