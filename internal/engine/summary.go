package engine

// Summary carries a run's aggregate counts for reporting and the run
// journal.
type Summary struct {
	NewCount             int `json:"new_count"`
	UpdatedCount         int `json:"updated_count"`
	UnchangedCount       int `json:"unchanged_count"`
	LimitedCount         int `json:"limited_count"`
	FetchedCount         int `json:"fetched_count"`
	SkippedTooLargeCount int `json:"skipped_too_large_count"`
	FetchErrorCount      int `json:"fetch_error_count"`
}

// Summarize tallies the classified sequence. LimitedCount counts New
// records excluded by the admission cap; the fetch counters mirror the
// per-record outcomes one to one.
func Summarize(classified []ClassifiedRecord) Summary {
	var s Summary
	for _, cr := range classified {
		switch cr.Status {
		case StatusNew:
			s.NewCount++
		case StatusUpdated:
			s.UpdatedCount++
		case StatusUnchanged:
			s.UnchangedCount++
		}
		if cr.SkipReason == SkipReasonNewLimit {
			s.LimitedCount++
		}
		switch cr.FetchOutcome {
		case OutcomeFetched:
			s.FetchedCount++
		case OutcomeSkippedTooLarge:
			s.SkippedTooLargeCount++
		case OutcomeFetchError:
			s.FetchErrorCount++
		}
	}
	return s
}
