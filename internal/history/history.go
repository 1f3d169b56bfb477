// Package history owns the durable store of previously observed
// process records: one JSON document, loaded at run start, replaced
// wholesale at run end. Writes go through a temp file and a rename,
// so a run that dies mid-way leaves the previous document untouched.
// An advisory lock file beside the document keeps runs serialized.
package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

// SchemaVersion is the history document schema written by this build.
// Load accepts documents up to this version; unknown fields added by
// newer minor revisions are ignored by the decoder.
const SchemaVersion = 1

// Entry wraps the last-known state of one record with its observation
// timestamps.
//
// Invariant: FirstSeenAt <= LastUpdatedAt <= LastSeenAt. Load rejects
// documents that violate it.
type Entry struct {
	Record        record.Record `json:"record"`
	FirstSeenAt   time.Time     `json:"first_seen_at"`
	LastSeenAt    time.Time     `json:"last_seen_at"`
	LastUpdatedAt time.Time     `json:"last_updated_at"`
}

func (e Entry) validate(id string) error {
	if e.Record.ID != id {
		return fmt.Errorf("entry %q: record id %q does not match its key", id, e.Record.ID)
	}
	if e.FirstSeenAt.IsZero() || e.LastSeenAt.IsZero() || e.LastUpdatedAt.IsZero() {
		return fmt.Errorf("entry %q: missing observation timestamps", id)
	}
	if e.LastUpdatedAt.Before(e.FirstSeenAt) || e.LastSeenAt.Before(e.LastUpdatedAt) {
		return fmt.Errorf("entry %q: timestamps out of order (first_seen %s, last_updated %s, last_seen %s)",
			id,
			e.FirstSeenAt.Format(time.RFC3339),
			e.LastUpdatedAt.Format(time.RFC3339),
			e.LastSeenAt.Format(time.RFC3339))
	}
	return nil
}

// document is the on-disk shape of the store.
type document struct {
	SchemaVersion int              `json:"schema_version"`
	Entries       map[string]Entry `json:"entries"`
}

// Store is the in-memory view of one history document. Replace swaps
// the view; nothing durable changes until Persist. The single-writer
// rule is enforced by Acquire, not by the Store itself.
type Store struct {
	path    string
	entries map[string]Entry
}

// Load reads the history document at path. A missing file is not an
// error: it yields an empty store, which is exactly what makes the
// very first run a baseline run. An unreadable or inconsistent
// document yields a DecodeError and the run must not proceed.
func Load(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return &Store{path: path, entries: map[string]Entry{}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read history document: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &DecodeError{Path: path, Err: err}
	}
	if doc.SchemaVersion < 1 || doc.SchemaVersion > SchemaVersion {
		return nil, &DecodeError{
			Path: path,
			Err:  fmt.Errorf("unsupported schema_version %d (this build reads 1 through %d)", doc.SchemaVersion, SchemaVersion),
		}
	}
	if doc.Entries == nil {
		doc.Entries = map[string]Entry{}
	}
	for id, e := range doc.Entries {
		if err := e.validate(id); err != nil {
			return nil, &DecodeError{Path: path, Err: err}
		}
	}
	return &Store{path: path, entries: doc.Entries}, nil
}

// Path returns the durable location of the document.
func (s *Store) Path() string { return s.path }

// Len returns the number of entries currently in the view.
func (s *Store) Len() int { return len(s.entries) }

// Get looks up the entry for id.
func (s *Store) Get(id string) (Entry, bool) {
	e, ok := s.entries[id]
	return e, ok
}

// Entries returns a copy of the current view keyed by record id.
func (s *Store) Entries() map[string]Entry {
	out := make(map[string]Entry, len(s.entries))
	for id, e := range s.entries {
		out[id] = e
	}
	return out
}

// Replace swaps the in-memory view for entries. The durable document
// is untouched until Persist succeeds.
func (s *Store) Replace(entries map[string]Entry) {
	next := make(map[string]Entry, len(entries))
	for id, e := range entries {
		next[id] = e
	}
	s.entries = next
}

// Persist writes the current view as a single atomic replacement of
// the durable document: encode to a temp file in the same directory,
// fsync, rename over the old document. Either the whole new document
// becomes durable or the old one stays. The output is indented, keeps
// accents and URLs literal and sorts map keys, so persisting an
// unchanged view reproduces the file byte for byte.
func (s *Store) Persist() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create history directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".history-*.tmp")
	if err != nil {
		return fmt.Errorf("create history temp file: %w", err)
	}
	tmpPath := tmp.Name()

	enc := json.NewEncoder(tmp)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(document{SchemaVersion: SchemaVersion, Entries: s.entries}); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("encode history document: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sync history temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close history temp file: %w", err)
	}
	if err := os.Rename(tmpPath, s.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace history document: %w", err)
	}
	return nil
}
