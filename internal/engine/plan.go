package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

// Outcome records what the fetch planner decided for an admitted
// record.
type Outcome string

const (
	// OutcomeFetched means the artifact was materialized.
	OutcomeFetched Outcome = "fetched"

	// OutcomeSkippedTooLarge means the probe exceeded the size cap and
	// the transfer was never attempted.
	OutcomeSkippedTooLarge Outcome = "skipped-too-large"

	// OutcomeFetchError means the probe or the transfer failed.
	// Recorded and logged; never aborts the run.
	OutcomeFetchError Outcome = "fetch-error"
)

// Fetcher is the external artifact collaborator. ProbeSize must be
// cheap (no body transfer); Materialize performs the real retrieval.
// The planner calls each at most once per record per run.
type Fetcher interface {
	ProbeSize(ctx context.Context, rec record.Record) (int64, error)
	Materialize(ctx context.Context, rec record.Record) error
}

// Plan decides the fetch outcome for every admitted record, in place.
//
// Records are planned independently, with at most workers fetches in
// flight. Each worker writes only its own record's annotation, so the
// sequence keeps its id order regardless of completion order.
//
// Per-record failures become OutcomeFetchError and the run carries on.
// The only error Plan itself returns is context cancellation, in which
// case the partial outcomes must be discarded by the caller.
func Plan(ctx context.Context, classified []ClassifiedRecord, fetcher Fetcher, policy Policy, workers int) error {
	var admitted []int
	for i := range classified {
		if classified[i].Admitted {
			admitted = append(admitted, i)
		}
	}
	if len(admitted) == 0 {
		return nil
	}

	if workers < 1 {
		workers = 1
	}
	if workers > len(admitted) {
		workers = len(admitted)
	}

	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				planOne(ctx, &classified[i], fetcher, policy)
			}
		}()
	}

dispatch:
	for _, i := range admitted {
		select {
		case work <- i:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(work)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("fetch planning cancelled: %w", err)
	}
	return nil
}

func planOne(ctx context.Context, cr *ClassifiedRecord, fetcher Fetcher, policy Policy) {
	size, err := fetcher.ProbeSize(ctx, cr.Record)
	if err != nil {
		cr.FetchOutcome = OutcomeFetchError
		slog.Warn("artifact size probe failed",
			"id", cr.Record.ID,
			"error", err)
		return
	}

	if size > policy.MaxArtifactSizeBytes {
		cr.FetchOutcome = OutcomeSkippedTooLarge
		cr.SkipReason = SkipReasonTooLarge
		slog.Info("artifact above size cap, transfer skipped",
			"id", cr.Record.ID,
			"size_bytes", size,
			"cap_bytes", policy.MaxArtifactSizeBytes)
		return
	}

	if err := fetcher.Materialize(ctx, cr.Record); err != nil {
		cr.FetchOutcome = OutcomeFetchError
		slog.Warn("artifact fetch failed",
			"id", cr.Record.ID,
			"error", err)
		return
	}

	cr.FetchOutcome = OutcomeFetched
	slog.Debug("artifact fetched",
		"id", cr.Record.ID,
		"size_bytes", size)
}
