package cli

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/augustosouza8/aplicativos-sei/internal/engine"
	"github.com/augustosouza8/aplicativos-sei/internal/journal"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Limit int
}

// RunsResponse is the JSON payload for the runs listing.
type RunsResponse struct {
	Runs []RunEntry `json:"runs"`
}

// RunEntry is one journal row in the runs listing.
type RunEntry struct {
	RunID        string         `json:"run_id"`
	StartedAt    time.Time      `json:"started_at"`
	FinishedAt   time.Time      `json:"finished_at"`
	Mode         engine.RunMode `json:"mode"`
	State        engine.State   `json:"state"`
	SnapshotSize int            `json:"snapshot_size"`
	Summary      engine.Summary `json:"summary"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the journal",
		Long: `List the most recent runs recorded in the run journal, newest
first.

Example:
  seirel runs
  seirel runs --limit 30 --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRuns(opts, cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 10, "maximum number of runs to list")

	return cmd
}

func runRuns(opts *RunsOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}

	j, err := journal.Open(cfg.Store.JournalPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Warn("journal close failed", "error", closeErr)
		}
	}()

	entries, err := j.Recent(context.Background(), opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to query journal", err)
	}

	if formatter.Format == "json" {
		resp := RunsResponse{Runs: make([]RunEntry, 0, len(entries))}
		for _, e := range entries {
			resp.Runs = append(resp.Runs, RunEntry{
				RunID:        e.RunID,
				StartedAt:    e.StartedAt,
				FinishedAt:   e.FinishedAt,
				Mode:         e.Mode,
				State:        e.State,
				SnapshotSize: e.SnapshotSize,
				Summary:      e.Summary,
			})
		}
		return formatter.Success(resp)
	}

	w := formatter.Writer
	if len(entries) == 0 {
		fmt.Fprintln(w, "Nenhuma execução registrada.")
		return nil
	}
	fmt.Fprintf(w, "Execuções recentes: %d\n\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %-11s  processos: %d  novos: %d  atualizados: %d  sem alteração: %d\n",
			e.RunID,
			e.StartedAt.Format(timeLayout),
			e.Mode,
			e.SnapshotSize,
			e.Summary.NewCount,
			e.Summary.UpdatedCount,
			e.Summary.UnchangedCount)
	}
	return nil
}
