package engine

import (
	"time"

	"github.com/augustosouza8/aplicativos-sei/internal/history"
)

// RunMode frames the report. A baseline run populates an empty store
// for the first time; an incremental run reports drift against the
// previous population. Classification itself is mode-free.
type RunMode string

const (
	ModeBaseline    RunMode = "baseline"
	ModeIncremental RunMode = "incremental"
)

// Reconcile folds the classified snapshot into a fresh history view
// and reports the run mode (Baseline iff the store was empty at load).
//
// New records enter with all three timestamps set to now. Updated
// records take the snapshot's state with LastSeenAt and LastUpdatedAt
// refreshed and FirstSeenAt preserved. Unchanged records keep the
// stored record so a persisted view only moves last_seen_at. Entries
// absent from the snapshot carry over untouched.
//
// Pure with respect to the store: the caller applies the returned map
// via Replace and makes it durable via Persist.
func Reconcile(classified []ClassifiedRecord, hist *history.Store, now time.Time) (map[string]history.Entry, RunMode) {
	mode := ModeIncremental
	if hist.Len() == 0 {
		mode = ModeBaseline
	}
	now = now.UTC()

	next := hist.Entries()
	for _, cr := range classified {
		id := cr.Record.ID
		switch cr.Status {
		case StatusNew:
			next[id] = history.Entry{
				Record:        cr.Record,
				FirstSeenAt:   now,
				LastSeenAt:    now,
				LastUpdatedAt: now,
			}
		case StatusUpdated:
			prev := next[id]
			next[id] = history.Entry{
				Record:        cr.Record,
				FirstSeenAt:   prev.FirstSeenAt,
				LastSeenAt:    now,
				LastUpdatedAt: now,
			}
		case StatusUnchanged:
			prev := next[id]
			prev.LastSeenAt = now
			next[id] = prev
		}
	}
	return next, mode
}
