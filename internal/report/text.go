package report

import (
	"fmt"
	"strings"

	"github.com/augustosouza8/aplicativos-sei/internal/engine"
)

// Text renders the plain-text body sent as the primary email part and
// printed by the CLI.
func Text(r *Report) string {
	var b strings.Builder

	fmt.Fprintf(&b, "RELATÓRIO DIÁRIO SEI - %s\n", r.GeneratedAt.Format(dateLayout))
	if r.Mode == engine.ModeBaseline {
		fmt.Fprintf(&b, "Cadastro inicial - execução %s\n", r.RunID)
		b.WriteString("Primeira execução: todos os processos visíveis foram registrados como novos.\n")
	} else {
		fmt.Fprintf(&b, "Execução %s (modo incremental)\n", r.RunID)
	}

	b.WriteString("\n")
	b.WriteString(r.summaryLine())
	b.WriteString("\n")
	if line := r.limitLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}
	if line := r.artifactLine(); line != "" {
		b.WriteString(line)
		b.WriteString("\n")
	}

	for _, sec := range r.sections() {
		b.WriteString("\n")
		b.WriteString(sec.Heading)
		b.WriteString("\n")
		switch {
		case len(sec.Items) == 0:
			b.WriteString("\n  Nenhum.\n")
		case compact(sec.Items):
			b.WriteString("\n")
			for _, it := range sec.Items {
				fmt.Fprintf(&b, "  %s - %s\n", it.ID, it.Title)
			}
		default:
			for _, it := range sec.Items {
				b.WriteString("\n")
				fmt.Fprintf(&b, "  %s - %s\n", it.ID, it.Title)
				for _, detail := range it.Details {
					fmt.Fprintf(&b, "    %s\n", detail)
				}
				if it.Link != "" {
					fmt.Fprintf(&b, "    Link: %s\n", it.Link)
				}
			}
		}
		if sec.More != "" {
			fmt.Fprintf(&b, "  %s\n", sec.More)
		}
	}
	return b.String()
}

// compact reports whether every item is a bare id and title line, in
// which case the section renders as a tight list.
func compact(items []item) bool {
	for _, it := range items {
		if len(it.Details) > 0 || it.Link != "" {
			return false
		}
	}
	return true
}
