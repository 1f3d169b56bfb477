package report

import (
	"fmt"
	"html/template"
	"strings"

	"github.com/augustosouza8/aplicativos-sei/internal/engine"
)

const htmlBody = `<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<title>Relatório SEI</title>
</head>
<body>
<h1>RELATÓRIO DIÁRIO SEI - {{.Date}}</h1>
<p>{{.ModeLine}}</p>
{{- if .BaselineNote}}
<p>{{.BaselineNote}}</p>
{{- end}}
<p>{{.SummaryLine}}
{{- if .LimitLine}}<br>{{.LimitLine}}{{end}}
{{- if .ArtifactLine}}<br>{{.ArtifactLine}}{{end}}</p>
{{- range .Sections}}
<h2>{{.Heading}}</h2>
{{- if .Items}}
<ul>
{{- range .Items}}
<li><strong>{{.ID}}</strong> - {{.Title}}
{{- range .Details}}<br>{{.}}{{end}}
{{- if .Link}}<br><a href="{{.Link}}">Abrir no SEI</a>{{end}}</li>
{{- end}}
</ul>
{{- if .More}}
<p>{{.More}}</p>
{{- end}}
{{- else}}
<p>Nenhum.</p>
{{- end}}
{{- end}}
</body>
</html>
`

var htmlTmpl = template.Must(template.New("report").Parse(htmlBody))

type htmlView struct {
	Date         string
	ModeLine     string
	BaselineNote string
	SummaryLine  string
	LimitLine    string
	ArtifactLine string
	Sections     []section
}

// HTML renders the report as the email's HTML alternative. Record
// titles and tags come from the registry, so everything goes through
// html/template escaping.
func HTML(r *Report) (string, error) {
	view := htmlView{
		Date:         r.GeneratedAt.Format(dateLayout),
		SummaryLine:  r.summaryLine(),
		LimitLine:    r.limitLine(),
		ArtifactLine: r.artifactLine(),
		Sections:     r.sections(),
	}
	if r.Mode == engine.ModeBaseline {
		view.ModeLine = fmt.Sprintf("Cadastro inicial - execução %s", r.RunID)
		view.BaselineNote = "Primeira execução: todos os processos visíveis foram registrados como novos."
	} else {
		view.ModeLine = fmt.Sprintf("Execução %s (modo incremental)", r.RunID)
	}

	var b strings.Builder
	if err := htmlTmpl.Execute(&b, view); err != nil {
		return "", fmt.Errorf("render html report: %w", err)
	}
	return b.String(), nil
}
