package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/augustosouza8/aplicativos-sei/internal/collector"
	"github.com/augustosouza8/aplicativos-sei/internal/engine"
	"github.com/augustosouza8/aplicativos-sei/internal/fetch"
	"github.com/augustosouza8/aplicativos-sei/internal/history"
	"github.com/augustosouza8/aplicativos-sei/internal/journal"
	"github.com/augustosouza8/aplicativos-sei/internal/notify"
	"github.com/augustosouza8/aplicativos-sei/internal/report"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	SnapshotPath string
	DryRun       bool
}

// RunResponse is the JSON payload printed after a run.
type RunResponse struct {
	RunID        string         `json:"run_id"`
	Mode         engine.RunMode `json:"mode"`
	State        engine.State   `json:"state"`
	SnapshotSize int            `json:"snapshot_size"`
	Summary      engine.Summary `json:"summary"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run one reconciliation pass against the registry snapshot",
		Long: `Run one reconciliation pass: read the registry snapshot, classify
every process against the stored history, apply the admission limits,
download artifacts for admitted processes and persist the new history.

The daily report is printed to stdout; when email is enabled it is also
sent to the configured recipients with the CSV attached.

Example:
  seirel run --config ./seirel.yaml
  seirel run --snapshot ./snapshot.json --dry-run`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.SnapshotPath, "snapshot", "", "snapshot file (overrides the configured path)")
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "decide without downloading, persisting or notifying")

	return cmd
}

func runOnce(opts *RunOptions, cmd *cobra.Command) error {
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
	if opts.SnapshotPath != "" {
		cfg.Collector.SnapshotPath = opts.SnapshotPath
	}

	runner := &engine.Runner{
		HistoryPath: cfg.Store.HistoryPath,
		Collector:   collector.File{Path: cfg.Collector.SnapshotPath},
		Policy:      cfg.Policy(),
		Workers:     cfg.Fetch.Workers,
		DryRun:      opts.DryRun,
	}
	if !opts.DryRun {
		runner.Fetcher = fetch.NewClient(cfg.Fetch.BaseURL, cfg.Fetch.ArtifactDir,
			cfg.Policy().MaxArtifactSizeBytes, cfg.Timeout())
	}

	// Setup signal handling so an interrupt cancels the run cleanly
	// mid-fetch. Use the command's context if available (for testing).
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	go func() {
		select {
		case sig := <-sigChan:
			slog.Info("received signal, cancelling run", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()

	res, err := runner.Run(ctx)
	if err != nil {
		switch {
		case history.IsLockHeld(err):
			return WrapExitError(ExitFailure, "another run holds the history lock", err)
		case errors.Is(err, os.ErrNotExist):
			return WrapExitError(ExitCommandError, "required file missing", err)
		default:
			return WrapExitError(ExitFailure, "run aborted", err)
		}
	}

	if !opts.DryRun {
		appendJournal(cfg.Store.JournalPath, res)
	}

	rep := report.Build(res)

	if cfg.Email.Enabled && !opts.DryRun {
		mailer := &notify.Mailer{
			Host:          cfg.Email.Host,
			Port:          cfg.Email.Port,
			Username:      cfg.Email.Username,
			Password:      cfg.Email.Password,
			From:          cfg.Email.From,
			To:            cfg.Email.To,
			SubjectPrefix: cfg.Email.SubjectPrefix,
		}
		// The history is already persisted at this point; a failed
		// send must still be loud so the operator knows no report
		// went out.
		if err := mailer.Send(rep); err != nil {
			return WrapExitError(ExitFailure, "report email failed", err)
		}
	}

	if opts.Format == "json" {
		return formatter.Success(RunResponse{
			RunID:        res.RunID,
			Mode:         res.Mode,
			State:        res.State,
			SnapshotSize: res.SnapshotSize,
			Summary:      res.Summary,
		})
	}
	fmt.Fprint(formatter.Writer, report.Text(rep))
	return nil
}

// appendJournal records the finished run. The journal is an audit
// aid: a failure here is logged and never fails a run that already
// persisted its history.
func appendJournal(path string, res *engine.Result) {
	j, err := journal.Open(path)
	if err != nil {
		slog.Warn("journal unavailable", "path", path, "error", err)
		return
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Warn("journal close failed", "error", closeErr)
		}
	}()
	if err := j.Append(context.Background(), journal.FromResult(res)); err != nil {
		slog.Warn("journal append failed", "run_id", res.RunID, "error", err)
	}
}
