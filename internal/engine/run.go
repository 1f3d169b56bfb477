package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/augustosouza8/aplicativos-sei/internal/history"
	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

// Collector supplies the current snapshot. Implementations live
// outside the engine; the engine assumes only that ids are unique.
type Collector interface {
	Collect(ctx context.Context) ([]record.Record, error)
}

// Result is what a finished run hands to reporting, notification and
// the journal.
type Result struct {
	RunID        string             `json:"run_id"`
	Mode         RunMode            `json:"mode"`
	State        State              `json:"state"`
	StartedAt    time.Time          `json:"started_at"`
	FinishedAt   time.Time          `json:"finished_at"`
	SnapshotSize int                `json:"snapshot_size"`
	Records      []ClassifiedRecord `json:"records"`
	Summary      Summary            `json:"summary"`
}

// advance moves the run to next, enforcing the lifecycle table.
func (r *Result) advance(next State) error {
	s, err := Transition(r.State, next)
	if err != nil {
		return err
	}
	r.State = s
	return nil
}

// Runner wires one run of the pipeline. HistoryPath, Collector and
// Policy are required; Fetcher is required unless DryRun is set.
type Runner struct {
	HistoryPath string
	Collector   Collector
	Fetcher     Fetcher
	Policy      Policy

	// Workers bounds how many artifact fetches run in flight. Values
	// below 1 behave as 1.
	Workers int

	// DryRun stops after limit enforcement: no run lock, no fetches,
	// no durable write. Used to preview what a run would decide.
	DryRun bool

	// Clock and NewID default to the system clock and random UUIDv7s;
	// tests inject deterministic ones.
	Clock Clock
	NewID func() string
}

func (r *Runner) clock() Clock {
	if r.Clock != nil {
		return r.Clock
	}
	return SystemClock{}
}

func (r *Runner) newID() string {
	if r.NewID != nil {
		return r.NewID()
	}
	return uuid.Must(uuid.NewV7()).String()
}

// Run executes the pipeline: load, classify, limit, plan, reconcile,
// persist. A fatal failure returns an error with the durable store
// exactly as it was before the run, so retrying is always safe; the
// per-record taxonomy (probe failures, oversized artifacts, transport
// failures) never surfaces here, only in the record annotations.
func (r *Runner) Run(ctx context.Context) (*Result, error) {
	clk := r.clock()
	res := &Result{
		RunID:     r.newID(),
		State:     StateStart,
		StartedAt: clk.Now().UTC(),
	}

	fail := func(stage string, err error) (*Result, error) {
		res.State = StateAborted
		slog.Error("run aborted",
			"run_id", res.RunID,
			"stage", stage,
			"error", err)
		return nil, fmt.Errorf("%s: %w", stage, err)
	}

	slog.Info("run starting",
		"run_id", res.RunID,
		"history", r.HistoryPath,
		"dry_run", r.DryRun)

	if !r.DryRun {
		lock, err := history.Acquire(r.HistoryPath, res.RunID, res.StartedAt)
		if err != nil {
			return fail("acquire run lock", err)
		}
		defer func() {
			if err := lock.Release(); err != nil {
				slog.Warn("run lock release failed",
					"run_id", res.RunID,
					"error", err)
			}
		}()
	}

	store, err := history.Load(r.HistoryPath)
	if err != nil {
		return fail("load history", err)
	}
	if err := res.advance(StateLoaded); err != nil {
		return fail("lifecycle", err)
	}
	slog.Info("history loaded",
		"run_id", res.RunID,
		"entries", store.Len())

	snapshot, err := r.Collector.Collect(ctx)
	if err != nil {
		return fail("collect snapshot", err)
	}
	res.SnapshotSize = len(snapshot)

	classified := Classify(snapshot, store)
	if err := res.advance(StateClassified); err != nil {
		return fail("lifecycle", err)
	}

	Enforce(classified, r.Policy)
	if err := res.advance(StateLimitApplied); err != nil {
		return fail("lifecycle", err)
	}

	if r.DryRun {
		res.Mode = ModeIncremental
		if store.Len() == 0 {
			res.Mode = ModeBaseline
		}
		res.Records = classified
		res.Summary = Summarize(classified)
		res.FinishedAt = clk.Now().UTC()
		slog.Info("dry run complete",
			"run_id", res.RunID,
			"mode", res.Mode,
			"new", res.Summary.NewCount,
			"updated", res.Summary.UpdatedCount,
			"unchanged", res.Summary.UnchangedCount)
		return res, nil
	}

	if err := Plan(ctx, classified, r.Fetcher, r.Policy, r.Workers); err != nil {
		return fail("plan fetches", err)
	}
	if err := res.advance(StatePlanned); err != nil {
		return fail("lifecycle", err)
	}

	entries, mode := Reconcile(classified, store, clk.Now())
	res.Mode = mode
	if err := res.advance(StateReconciled); err != nil {
		return fail("lifecycle", err)
	}

	// A cancellation between reconcile and persist must leave the
	// durable store untouched.
	if err := ctx.Err(); err != nil {
		return fail("persist history", err)
	}
	store.Replace(entries)
	if err := store.Persist(); err != nil {
		return fail("persist history", err)
	}
	if err := res.advance(StatePersisted); err != nil {
		return fail("lifecycle", err)
	}

	res.Records = classified
	res.Summary = Summarize(classified)
	res.FinishedAt = clk.Now().UTC()

	slog.Info("run complete",
		"run_id", res.RunID,
		"mode", res.Mode,
		"new", res.Summary.NewCount,
		"updated", res.Summary.UpdatedCount,
		"unchanged", res.Summary.UnchangedCount,
		"limited", res.Summary.LimitedCount,
		"fetched", res.Summary.FetchedCount,
		"skipped_too_large", res.Summary.SkippedTooLargeCount,
		"fetch_errors", res.Summary.FetchErrorCount)
	return res, nil
}
