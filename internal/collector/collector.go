// Package collector supplies run snapshots. The file collector reads
// an exported snapshot document; it is the seam where a live registry
// scraper would plug in.
package collector

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

// snapshotDocument is the on-disk export format: the capture instant
// plus the records visible at that instant.
type snapshotDocument struct {
	CollectedAt time.Time       `json:"collected_at"`
	Records     []record.Record `json:"records"`
}

// File reads a snapshot from a JSON export. Records come back with
// tags normalized; ids must be unique and well formed or the snapshot
// is rejected whole, since a partial snapshot would misclassify every
// record it dropped.
type File struct {
	Path string
}

// Collect reads, validates and normalizes the snapshot.
func (f File) Collect(ctx context.Context) ([]record.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}

	var doc snapshotDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode snapshot %s: %w", f.Path, err)
	}

	seen := make(map[string]struct{}, len(doc.Records))
	for i := range doc.Records {
		rec := &doc.Records[i]
		if rec.ID == "" {
			return nil, fmt.Errorf("snapshot %s: record %d has an empty id", f.Path, i)
		}
		if _, dup := seen[rec.ID]; dup {
			return nil, fmt.Errorf("snapshot %s: duplicate record id %q", f.Path, rec.ID)
		}
		seen[rec.ID] = struct{}{}

		if !rec.Category.Valid() {
			return nil, fmt.Errorf("snapshot %s: record %q has unknown category %q", f.Path, rec.ID, rec.Category)
		}
		if rec.DocumentCount < 0 {
			return nil, fmt.Errorf("snapshot %s: record %q has negative document count", f.Path, rec.ID)
		}
		rec.Tags = record.NormalizeTags(rec.Tags)
	}
	return doc.Records, nil
}
