package engine

import (
	"sort"

	"github.com/augustosouza8/aplicativos-sei/internal/history"
	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

// Status classifies one snapshot record against history.
type Status string

const (
	// StatusNew marks a record whose id was never observed before.
	StatusNew Status = "new"

	// StatusUpdated marks a known record whose fingerprint changed.
	StatusUpdated Status = "updated"

	// StatusUnchanged marks a known record with an identical fingerprint.
	StatusUnchanged Status = "unchanged"
)

// Skip reasons recorded on records excluded from follow-up.
const (
	// SkipReasonNewLimit marks New records beyond the per-run
	// admission cap.
	SkipReasonNewLimit = "new-record-limit-exceeded"

	// SkipReasonTooLarge marks admitted records whose probed artifact
	// size exceeded the cap.
	SkipReasonTooLarge = "artifact-exceeds-size-limit"
)

// ClassifiedRecord is the engine's verdict on one snapshot record,
// accumulated across the pipeline stages: Status and ChangeDetails
// from classification, Admitted and SkipReason from limit enforcement,
// FetchOutcome from fetch planning.
type ClassifiedRecord struct {
	Record        record.Record `json:"record"`
	Status        Status        `json:"status"`
	ChangeDetails []string      `json:"change_details,omitempty"`
	Admitted      bool          `json:"admitted"`
	SkipReason    string        `json:"skip_reason,omitempty"`
	FetchOutcome  Outcome       `json:"fetch_outcome,omitempty"`
}

// Classify compares a snapshot against the loaded history and returns
// one verdict per snapshot record, sorted by record id. The id order
// is what makes limit admission deterministic, so it must not change.
//
// History entries absent from the snapshot are not reported: the
// registry is append-mostly, and disappearance from one snapshot is
// not deletion. They stay in history untouched.
//
// Pure function: no side effects on snapshot or history.
func Classify(snapshot []record.Record, hist *history.Store) []ClassifiedRecord {
	out := make([]ClassifiedRecord, 0, len(snapshot))
	for _, rec := range snapshot {
		cr := ClassifiedRecord{Record: rec, Status: StatusNew}
		if prev, ok := hist.Get(rec.ID); ok {
			if prev.Record.Fingerprint() == rec.Fingerprint() {
				cr.Status = StatusUnchanged
			} else {
				cr.Status = StatusUpdated
				cr.ChangeDetails = record.ChangedFields(prev.Record, rec)
			}
		}
		out = append(out, cr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Record.ID < out[j].Record.ID })
	return out
}
