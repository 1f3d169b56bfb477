package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/augustosouza8/aplicativos-sei/internal/history"
	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

// Display layouts for the text views.
const (
	dateLayout = "02/01/2006"
	timeLayout = "02/01/2006 15:04"
)

// HistoryOptions holds flags for the history command.
type HistoryOptions struct {
	*RootOptions
	ID string
}

// HistorySummary is the JSON payload for the store overview.
type HistorySummary struct {
	Path        string    `json:"path"`
	Count       int       `json:"count"`
	Inbound     int       `json:"inbound"`
	Generated   int       `json:"generated"`
	FirstSeenAt time.Time `json:"first_seen_at"`
	LastSeenAt  time.Time `json:"last_seen_at"`
}

// NewHistoryCommand creates the history command.
func NewHistoryCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &HistoryOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Inspect the stored process history",
		Long: `Inspect the durable history store: how many processes are tracked,
split by category, and when they were first and last observed.

Example:
  seirel history
  seirel history --id 53500.001234/2026-11`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "show the full entry for one protocol number")

	return cmd
}

func runHistory(opts *HistoryOptions, cmd *cobra.Command) error {
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

	store, err := history.Load(cfg.Store.HistoryPath)
	if err != nil {
		if history.IsCorrupt(err) {
			return WrapExitError(ExitFailure, "history store is corrupt", err)
		}
		return WrapExitError(ExitCommandError, "failed to load history", err)
	}

	if opts.ID != "" {
		entry, ok := store.Get(opts.ID)
		if !ok {
			return NewExitError(ExitFailure, fmt.Sprintf("process %s not in history", opts.ID))
		}
		return outputEntry(formatter, entry)
	}
	return outputHistorySummary(formatter, store)
}

func outputEntry(f *OutputFormatter, entry history.Entry) error {
	if f.Format == "json" {
		return f.Success(entry)
	}

	w := f.Writer
	rec := entry.Record
	fmt.Fprintf(w, "Processo: %s\n", rec.ID)
	fmt.Fprintf(w, "Título: %s\n", rec.Title)
	fmt.Fprintf(w, "Categoria: %s\n", categoryLabel(rec.Category))
	fmt.Fprintf(w, "Documentos: %d\n", rec.DocumentCount)
	fmt.Fprintf(w, "Última movimentação: %s\n", rec.LastMovementAt.Format(dateLayout))
	if len(rec.Tags) > 0 {
		fmt.Fprintf(w, "Marcadores: %s\n", strings.Join(rec.Tags, ", "))
	}
	if rec.Link != "" {
		fmt.Fprintf(w, "Link: %s\n", rec.Link)
	}
	fmt.Fprintf(w, "Visto pela primeira vez: %s\n", entry.FirstSeenAt.Format(timeLayout))
	fmt.Fprintf(w, "Última alteração: %s\n", entry.LastUpdatedAt.Format(timeLayout))
	fmt.Fprintf(w, "Última observação: %s\n", entry.LastSeenAt.Format(timeLayout))
	return nil
}

func outputHistorySummary(f *OutputFormatter, store *history.Store) error {
	summary := summarizeStore(store)

	if f.Format == "json" {
		return f.Success(summary)
	}

	w := f.Writer
	fmt.Fprintf(w, "Histórico: %s\n", summary.Path)
	fmt.Fprintf(w, "Processos registrados: %d\n", summary.Count)
	if summary.Count == 0 {
		return nil
	}
	fmt.Fprintf(w, "Recebidos: %d | Gerados: %d\n", summary.Inbound, summary.Generated)
	fmt.Fprintf(w, "Primeira observação: %s\n", summary.FirstSeenAt.Format(timeLayout))
	fmt.Fprintf(w, "Última observação: %s\n", summary.LastSeenAt.Format(timeLayout))
	return nil
}

func summarizeStore(store *history.Store) HistorySummary {
	summary := HistorySummary{
		Path:  store.Path(),
		Count: store.Len(),
	}
	for _, entry := range store.Entries() {
		switch entry.Record.Category {
		case record.CategoryInbound:
			summary.Inbound++
		case record.CategoryGenerated:
			summary.Generated++
		}
		if summary.FirstSeenAt.IsZero() || entry.FirstSeenAt.Before(summary.FirstSeenAt) {
			summary.FirstSeenAt = entry.FirstSeenAt
		}
		if entry.LastSeenAt.After(summary.LastSeenAt) {
			summary.LastSeenAt = entry.LastSeenAt
		}
	}
	return summary
}

func categoryLabel(c record.Category) string {
	if c == record.CategoryGenerated {
		return "gerado"
	}
	return "recebido"
}
