package record

import (
	"slices"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// Category identifies how a process relates to the monitored unit.
type Category string

const (
	// CategoryInbound marks processes received by the unit.
	CategoryInbound Category = "inbound"

	// CategoryGenerated marks processes the unit itself opened.
	CategoryGenerated Category = "generated"
)

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return c == CategoryInbound || c == CategoryGenerated
}

// Record is one tracked SEI process as observed in a collector
// snapshot.
//
// ID is the process protocol number (for example
// "53500.001234/2026-11") and is immutable once observed. Title,
// Tags, DocumentCount and LastMovementAt are the observation fields:
// they may differ between snapshots and they alone feed the content
// fingerprint. Link points at the process page in the registry and is
// carried for reporting and artifact retrieval only.
type Record struct {
	ID             string    `json:"id"`
	Category       Category  `json:"category"`
	Title          string    `json:"title"`
	Tags           []string  `json:"tags,omitempty"`
	DocumentCount  int       `json:"document_count"`
	LastMovementAt time.Time `json:"last_movement_at"`
	Link           string    `json:"link,omitempty"`
}

// Field names reported in change details.
const (
	FieldTitle         = "title"
	FieldTags          = "tags"
	FieldDocumentCount = "document_count"
	FieldLastMovement  = "last_movement_at"
)

// NormalizeTags returns the canonical form of a marker list: entries
// trimmed, empties dropped, duplicates removed, result sorted. The
// registry lists markers in session-dependent order, so comparison and
// fingerprinting always operate on this form.
func NormalizeTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// ChangedFields compares two observations of the same process and
// names the fingerprint fields that differ, in stable (lexicographic)
// order. The comparison matches Fingerprint exactly: strings are
// compared NFC-normalized, tags in normalized form, timestamps at
// second precision in UTC.
func ChangedFields(before, after Record) []string {
	var changed []string
	if before.DocumentCount != after.DocumentCount {
		changed = append(changed, FieldDocumentCount)
	}
	if !canonicalTime(before.LastMovementAt).Equal(canonicalTime(after.LastMovementAt)) {
		changed = append(changed, FieldLastMovement)
	}
	if !equalTags(NormalizeTags(before.Tags), NormalizeTags(after.Tags)) {
		changed = append(changed, FieldTags)
	}
	if norm.NFC.String(before.Title) != norm.NFC.String(after.Title) {
		changed = append(changed, FieldTitle)
	}
	return changed
}

func equalTags(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if norm.NFC.String(a[i]) != norm.NFC.String(b[i]) {
			return false
		}
	}
	return true
}

// canonicalTime reduces a timestamp to the precision the fingerprint
// sees. The registry reports movement times at minute granularity;
// second precision leaves headroom without hashing clock jitter.
func canonicalTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
