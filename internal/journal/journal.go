// Package journal keeps an append-only SQLite record of completed
// runs. It is an audit aid: the history store stays the source of
// truth, and a journal failure after a successful persist must never
// fail the run.
package journal

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/augustosouza8/aplicativos-sei/internal/engine"
)

//go:embed schema.sql
var schemaSQL string

// currentSchemaVersion is written to user_version after Open. Opening
// a journal written by a newer build fails instead of guessing.
const currentSchemaVersion = 1

// defaultRecentLimit is used when Recent is called without a positive
// limit.
const defaultRecentLimit = 10

// Entry is one journal row.
type Entry struct {
	RunID        string
	StartedAt    time.Time
	FinishedAt   time.Time
	Mode         engine.RunMode
	State        engine.State
	SnapshotSize int
	Summary      engine.Summary
}

// FromResult maps a finished run onto its journal row.
func FromResult(res *engine.Result) Entry {
	return Entry{
		RunID:        res.RunID,
		StartedAt:    res.StartedAt,
		FinishedAt:   res.FinishedAt,
		Mode:         res.Mode,
		State:        res.State,
		SnapshotSize: res.SnapshotSize,
		Summary:      res.Summary,
	}
}

// Journal is the open database handle.
type Journal struct {
	db *sql.DB
}

// Open creates or opens the journal at path and applies pragmas and
// the schema. SQLite allows one writer, so the pool is pinned to a
// single connection.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open run journal: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to run journal: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("configure run journal: %w", err)
	}
	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("prepare run journal schema: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close closes the database handle.
func (j *Journal) Close() error {
	if j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Append records a completed run. Appending the same run id twice is
// a no-op, so a retried pipeline tail cannot duplicate rows.
func (j *Journal) Append(ctx context.Context, e Entry) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO runs
		(run_id, started_at, finished_at, mode, state, snapshot_size,
		 new_count, updated_count, unchanged_count, limited_count,
		 fetched_count, skipped_too_large_count, fetch_error_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(run_id) DO NOTHING
	`,
		e.RunID,
		e.StartedAt.UTC().Format(time.RFC3339),
		e.FinishedAt.UTC().Format(time.RFC3339),
		string(e.Mode),
		string(e.State),
		e.SnapshotSize,
		e.Summary.NewCount,
		e.Summary.UpdatedCount,
		e.Summary.UnchangedCount,
		e.Summary.LimitedCount,
		e.Summary.FetchedCount,
		e.Summary.SkippedTooLargeCount,
		e.Summary.FetchErrorCount,
	)
	if err != nil {
		return fmt.Errorf("append run %s: %w", e.RunID, err)
	}
	return nil
}

// Recent returns the latest runs, newest first. A non-positive limit
// means the default of 10.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit < 1 {
		limit = defaultRecentLimit
	}

	rows, err := j.db.QueryContext(ctx, `
		SELECT run_id, started_at, finished_at, mode, state, snapshot_size,
		       new_count, updated_count, unchanged_count, limited_count,
		       fetched_count, skipped_too_large_count, fetch_error_count
		FROM runs
		ORDER BY started_at DESC, run_id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recent runs: %w", err)
	}
	return entries, nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var (
		e                 Entry
		started, finished string
		mode, state       string
	)
	err := rows.Scan(
		&e.RunID,
		&started,
		&finished,
		&mode,
		&state,
		&e.SnapshotSize,
		&e.Summary.NewCount,
		&e.Summary.UpdatedCount,
		&e.Summary.UnchangedCount,
		&e.Summary.LimitedCount,
		&e.Summary.FetchedCount,
		&e.Summary.SkippedTooLargeCount,
		&e.Summary.FetchErrorCount,
	)
	if err != nil {
		return Entry{}, fmt.Errorf("scan run row: %w", err)
	}

	if e.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
		return Entry{}, fmt.Errorf("run %s: bad started_at %q: %w", e.RunID, started, err)
	}
	if e.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
		return Entry{}, fmt.Errorf("run %s: bad finished_at %q: %w", e.RunID, finished, err)
	}
	e.Mode = engine.RunMode(mode)
	e.State = engine.State(state)
	return e, nil
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

func applySchema(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("journal schema version %d is newer than this build supports (%d)",
			version, currentSchemaVersion)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
