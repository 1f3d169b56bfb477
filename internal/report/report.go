// Package report renders a finished run for people: a plain-text
// body, an HTML alternative and a CSV export. All product strings are
// Portuguese; the three renderings are deterministic for a given run
// result.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/augustosouza8/aplicativos-sei/internal/engine"
	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

const (
	dateLayout     = "02/01/2006"
	fileDateLayout = "2006-01-02"

	// overLimitListed caps how many excluded records the body lists
	// before collapsing the rest into a count.
	overLimitListed = 10
)

// Report is the render-ready view of a run: the classified records
// partitioned the way the body presents them, in the engine's id
// order.
type Report struct {
	RunID       string
	Mode        engine.RunMode
	GeneratedAt time.Time
	Summary     engine.Summary

	// Records is the full classified sequence, for the CSV export.
	Records []engine.ClassifiedRecord

	NewInbound   []engine.ClassifiedRecord
	NewGenerated []engine.ClassifiedRecord
	Updated      []engine.ClassifiedRecord
	OverLimit    []engine.ClassifiedRecord
}

// Build partitions a run result into the report sections.
func Build(res *engine.Result) *Report {
	r := &Report{
		RunID:       res.RunID,
		Mode:        res.Mode,
		GeneratedAt: res.FinishedAt,
		Summary:     res.Summary,
		Records:     res.Records,
	}
	for _, cr := range res.Records {
		switch {
		case cr.Status == engine.StatusNew && cr.SkipReason == engine.SkipReasonNewLimit:
			r.OverLimit = append(r.OverLimit, cr)
		case cr.Status == engine.StatusNew && cr.Admitted:
			if cr.Record.Category == record.CategoryGenerated {
				r.NewGenerated = append(r.NewGenerated, cr)
			} else {
				r.NewInbound = append(r.NewInbound, cr)
			}
		case cr.Status == engine.StatusUpdated:
			r.Updated = append(r.Updated, cr)
		}
	}
	return r
}

// Filename names the CSV attachment for the report date.
func Filename(r *Report) string {
	return "relatorio-sei-" + r.GeneratedAt.Format(fileDateLayout) + ".csv"
}

// Subject is the notification subject, without the configured prefix.
func Subject(r *Report) string {
	return fmt.Sprintf("Relatório SEI %s (%s)", r.GeneratedAt.Format(fileDateLayout), modeLabel(r.Mode))
}

func modeLabel(mode engine.RunMode) string {
	if mode == engine.ModeBaseline {
		return "inicial"
	}
	return "incremental"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// section is one numbered block of the body, shared by the text and
// HTML renderers so both carry identical content.
type section struct {
	Heading string
	Items   []item
	More    string
}

type item struct {
	ID      string
	Title   string
	Link    string
	Details []string
}

func (r *Report) sections() []section {
	return []section{
		{
			Heading: fmt.Sprintf("1. PROCESSOS NOVOS RECEBIDOS (%d)", len(r.NewInbound)),
			Items:   newItems(r.NewInbound),
		},
		{
			Heading: fmt.Sprintf("2. PROCESSOS NOVOS GERADOS (%d)", len(r.NewGenerated)),
			Items:   newItems(r.NewGenerated),
		},
		{
			Heading: fmt.Sprintf("3. PROCESSOS ATUALIZADOS (%d)", len(r.Updated)),
			Items:   updatedItems(r.Updated),
		},
		r.overLimitSection(),
	}
}

func newItems(crs []engine.ClassifiedRecord) []item {
	items := make([]item, 0, len(crs))
	for _, cr := range crs {
		it := item{ID: cr.Record.ID, Title: cr.Record.Title, Link: cr.Record.Link}
		if len(cr.Record.Tags) > 0 {
			it.Details = append(it.Details, "Marcadores: "+strings.Join(cr.Record.Tags, ", "))
		}
		it.Details = append(it.Details, movementLine(cr.Record))
		if label := artifactLabel(cr.FetchOutcome); label != "" {
			it.Details = append(it.Details, "Artefato: "+label)
		}
		items = append(items, it)
	}
	return items
}

func updatedItems(crs []engine.ClassifiedRecord) []item {
	items := make([]item, 0, len(crs))
	for _, cr := range crs {
		it := item{ID: cr.Record.ID, Title: cr.Record.Title, Link: cr.Record.Link}
		if len(cr.ChangeDetails) > 0 {
			it.Details = append(it.Details, "Alterações: "+strings.Join(cr.ChangeDetails, ", "))
		}
		it.Details = append(it.Details, movementLine(cr.Record))
		items = append(items, it)
	}
	return items
}

func (r *Report) overLimitSection() section {
	s := section{
		Heading: fmt.Sprintf("4. NOVOS ALÉM DO LIMITE (%d)", len(r.OverLimit)),
	}
	for i, cr := range r.OverLimit {
		if i == overLimitListed {
			rest := len(r.OverLimit) - overLimitListed
			s.More = fmt.Sprintf("... e mais %d %s além do limite", rest, plural(rest, "processo", "processos"))
			break
		}
		s.Items = append(s.Items, item{ID: cr.Record.ID, Title: cr.Record.Title})
	}
	return s
}

func movementLine(rec record.Record) string {
	return fmt.Sprintf("Documentos: %d | Última movimentação: %s",
		rec.DocumentCount, rec.LastMovementAt.Format(dateLayout))
}

func artifactLabel(outcome engine.Outcome) string {
	switch outcome {
	case engine.OutcomeFetched:
		return "baixado"
	case engine.OutcomeSkippedTooLarge:
		return "não baixado (acima do limite de tamanho)"
	case engine.OutcomeFetchError:
		return "falha no download"
	default:
		return ""
	}
}

func (r *Report) summaryLine() string {
	s := r.Summary
	return fmt.Sprintf("Resumo: %d %s, %d %s, %d sem alteração.",
		s.NewCount, plural(s.NewCount, "novo", "novos"),
		s.UpdatedCount, plural(s.UpdatedCount, "atualizado", "atualizados"),
		s.UnchangedCount)
}

func (r *Report) limitLine() string {
	n := r.Summary.LimitedCount
	if n == 0 {
		return ""
	}
	return fmt.Sprintf("Limite de novos: %d %s nesta execução.",
		n, plural(n, "processo excluído", "processos excluídos"))
}

func (r *Report) artifactLine() string {
	s := r.Summary
	if s.FetchedCount == 0 && s.SkippedTooLargeCount == 0 && s.FetchErrorCount == 0 {
		return ""
	}
	return fmt.Sprintf("Artefatos: %d %s, %d acima do limite de tamanho, %d com falha.",
		s.FetchedCount, plural(s.FetchedCount, "baixado", "baixados"),
		s.SkippedTooLargeCount, s.FetchErrorCount)
}
