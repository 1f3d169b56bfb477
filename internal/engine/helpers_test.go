package engine

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/augustosouza8/aplicativos-sei/internal/history"
	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

var observedAt = time.Date(2026, 8, 22, 9, 0, 0, 0, time.UTC)

func snapshotRecord(i int) record.Record {
	return record.Record{
		ID:             fmt.Sprintf("53500.%06d/2026-10", i),
		Category:       record.CategoryInbound,
		Title:          fmt.Sprintf("Processo %06d", i),
		Tags:           []string{"monitorado"},
		DocumentCount:  1,
		LastMovementAt: time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC),
	}
}

func entryFor(rec record.Record) history.Entry {
	return history.Entry{
		Record:        rec,
		FirstSeenAt:   observedAt,
		LastSeenAt:    observedAt,
		LastUpdatedAt: observedAt,
	}
}

func emptyStore(t *testing.T) *history.Store {
	t.Helper()
	store, err := history.Load(filepath.Join(t.TempDir(), "history.json"))
	require.NoError(t, err)
	return store
}

func storeWith(t *testing.T, recs ...record.Record) *history.Store {
	t.Helper()
	store := emptyStore(t)
	entries := make(map[string]history.Entry, len(recs))
	for _, rec := range recs {
		entries[rec.ID] = entryFor(rec)
	}
	store.Replace(entries)
	return store
}

// staticCollector hands out a fixed snapshot.
type staticCollector []record.Record

func (s staticCollector) Collect(context.Context) ([]record.Record, error) {
	return append([]record.Record(nil), s...), nil
}

// failingCollector always errors.
type failingCollector struct{ err error }

func (f failingCollector) Collect(context.Context) ([]record.Record, error) {
	return nil, f.err
}

// fakeFetcher is an in-memory Fetcher that records every call.
type fakeFetcher struct {
	mu           sync.Mutex
	defaultSize  int64
	sizes        map[string]int64
	probeErrs    map[string]error
	materialErrs map[string]error
	probes       map[string]int
	materials    map[string]int

	materializeDelay time.Duration
	inFlight         int
	maxInFlight      int
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		defaultSize:  1000,
		sizes:        map[string]int64{},
		probeErrs:    map[string]error{},
		materialErrs: map[string]error{},
		probes:       map[string]int{},
		materials:    map[string]int{},
	}
}

func (f *fakeFetcher) ProbeSize(_ context.Context, rec record.Record) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.probes[rec.ID]++
	if err := f.probeErrs[rec.ID]; err != nil {
		return 0, err
	}
	if size, ok := f.sizes[rec.ID]; ok {
		return size, nil
	}
	return f.defaultSize, nil
}

func (f *fakeFetcher) Materialize(ctx context.Context, rec record.Record) error {
	f.mu.Lock()
	f.materials[rec.ID]++
	f.inFlight++
	if f.inFlight > f.maxInFlight {
		f.maxInFlight = f.inFlight
	}
	err := f.materialErrs[rec.ID]
	delay := f.materializeDelay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			err = ctx.Err()
		}
	}

	f.mu.Lock()
	f.inFlight--
	f.mu.Unlock()
	return err
}

// blockingFetcher parks every Materialize until the context ends, and
// signals the test when the first transfer starts.
type blockingFetcher struct {
	started chan string
}

func newBlockingFetcher() *blockingFetcher {
	return &blockingFetcher{started: make(chan string, 16)}
}

func (b *blockingFetcher) ProbeSize(context.Context, record.Record) (int64, error) {
	return 1, nil
}

func (b *blockingFetcher) Materialize(ctx context.Context, rec record.Record) error {
	select {
	case b.started <- rec.ID:
	default:
	}
	<-ctx.Done()
	return ctx.Err()
}
