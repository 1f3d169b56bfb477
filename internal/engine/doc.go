// Package engine implements the change-detection and reconciliation
// pipeline for tracked SEI processes.
//
// A run moves through a fixed lifecycle: load the durable history,
// classify the fresh snapshot against it, apply the admission policy,
// plan artifact fetches, reconcile, persist. Classification, limit
// enforcement and reconciliation are pure functions over their inputs;
// all IO sits at the edges (history store, collector, fetcher).
//
// Failure handling follows a strict split: store, lock and persistence
// problems abort the run with the durable state untouched, while
// per-record fetch problems are recorded on the record and the run
// carries on.
package engine
