package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"
)

var markdownTemplate = template.Must(template.New("brief").Funcs(template.FuncMap{
	"pct":  func(v float64) string { return fmt.Sprintf("%.1f%%", v) },
	"num":  func(v float64) string { return fmt.Sprintf("%.1f", v) },
	"date": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
}).Parse(`# Reputation brief: {{.Brand}}

- Generated: {{date .CreatedAt}}
- Data: {{.Mode}}{{if gt .Hours 0}}, last {{.Hours}}h{{end}}
- Mentions analyzed: {{.MentionCount}}
{{- if .Alerts}}

## Alerts
{{range .Alerts}}
- {{.Message}}
{{- end}}
{{- end}}
{{- if .Summary}}

## Executive summary

{{.Summary}}
{{- end}}

## Key metrics

| Metric | Value |
|---|---|
| Negative share | {{pct .NegativeShare}} |
| Media impact score | {{num .KPI.MIS}} |
| Message penetration | {{pct .KPI.MPI}} |
| Engagement rate | {{num .KPI.EngagementRate}} |
| Reach | {{.KPI.Reach}} |

## Sentiment
{{range .SentimentShares}}
- {{.Label}}: {{pct .Percent}}
{{- else}}
- no mentions
{{- end}}
{{- with .ThemeShares}}

## Themes
{{range .}}
- {{.Label}}: {{pct .Percent}}
{{- end}}
{{- end}}

## Share of voice
{{range .VoiceShares}}
- {{.Label}}: {{pct .Percent}}
{{- end}}
{{- if .Keywords}}

## Top keywords
{{range .Keywords}}
- {{.Phrase}} ({{.Count}})
{{- end}}
{{- end}}
{{- if .Headlines}}

## Recent mentions
{{range .Headlines}}
- [{{.Sentiment}}] {{.Text}}{{if .Source}} ({{.Source}}){{end}}
{{- end}}
{{- end}}
`))

// RenderMarkdown writes b as a Markdown document.
func RenderMarkdown(w io.Writer, b Brief) error {
	if err := markdownTemplate.Execute(w, b); err != nil {
		return fmt.Errorf("render markdown: %w", err)
	}
	return nil
}

// RenderJSON writes b as indented JSON.
func RenderJSON(w io.Writer, b Brief) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(b); err != nil {
		return fmt.Errorf("render json: %w", err)
	}
	return nil
}
