package report

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"strings"

	"github.com/augustosouza8/aplicativos-sei/internal/engine"
	"github.com/augustosouza8/aplicativos-sei/internal/record"
)

var csvHeader = []string{
	"id",
	"categoria",
	"titulo",
	"marcadores",
	"documentos",
	"ultima_movimentacao",
	"status",
	"alteracoes",
	"admitido",
	"motivo_exclusao",
	"resultado_download",
}

// CSV exports every classified record of the run as one row, in the
// engine's id order, for spreadsheet consumers.
func CSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}
	for _, cr := range r.Records {
		row := []string{
			cr.Record.ID,
			categoryLabel(cr.Record.Category),
			cr.Record.Title,
			strings.Join(cr.Record.Tags, "; "),
			strconv.Itoa(cr.Record.DocumentCount),
			cr.Record.LastMovementAt.Format(dateLayout),
			statusLabel(cr.Status),
			strings.Join(cr.ChangeDetails, "; "),
			boolLabel(cr.Admitted),
			skipLabel(cr.SkipReason),
			artifactLabel(cr.FetchOutcome),
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row for %s: %w", cr.Record.ID, err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func categoryLabel(c record.Category) string {
	switch c {
	case record.CategoryInbound:
		return "recebido"
	case record.CategoryGenerated:
		return "gerado"
	default:
		return string(c)
	}
}

func statusLabel(s engine.Status) string {
	switch s {
	case engine.StatusNew:
		return "novo"
	case engine.StatusUpdated:
		return "atualizado"
	case engine.StatusUnchanged:
		return "sem alteração"
	default:
		return string(s)
	}
}

func boolLabel(b bool) string {
	if b {
		return "sim"
	}
	return "não"
}

func skipLabel(reason string) string {
	switch reason {
	case engine.SkipReasonNewLimit:
		return "limite de novos excedido"
	case engine.SkipReasonTooLarge:
		return "artefato acima do tamanho máximo"
	default:
		return ""
	}
}
