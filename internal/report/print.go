package report

import (
	"encoding/base64"
	"fmt"
	"html/template"
	"io"

	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

var printTemplate = template.Must(template.New("print").Parse(`<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
  body { font-family: system-ui, sans-serif; color: #0f172a; margin: 24px; }
  header { border-bottom: 2px solid #e2e8f0; margin-bottom: 16px; }
  .muted { color: #64748b; font-size: 0.9em; }
  .score { font-size: 2em; font-weight: bold; }
  .metrics { display: flex; gap: 12px; margin: 16px 0; }
  .metrics div { flex: 1; background: #f1f5f9; padding: 8px; text-align: center; }
  .metrics strong { display: block; font-size: 1.3em; }
  img { display: block; margin: 0 auto; max-width: 100%; }
  @media print { button { display: none; } }
</style>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p class="muted">{{.ProjectLabel}}: {{.Project}} &middot; {{.GeneratedLabel}}: {{.Timestamp}}</p>
  <p class="score">{{.Score}}/100</p>
</header>
<section class="metrics">
  <div>{{.AvgLabel}}<strong>{{.Avg}} mm</strong></div>
  <div>{{.MaxLabel}}<strong>{{.Max}} mm</strong></div>
  <div>{{.ToleranceLabel}}<strong>&plusmn;{{.Tolerance}} mm</strong></div>
</section>
{{if .Heatmap}}<section>
  <h2>{{.MapLabel}}</h2>
  <img src="{{.Heatmap}}" alt="{{.MapLabel}}">
</section>{{end}}
<section>
  <h2>{{.AnalysisLabel}}</h2>
  <p>{{.Analysis}}</p>
</section>
<section>
  <h2>{{.ActionsLabel}}</h2>
  <ol>{{range .Recommendations}}
    <li>{{.}}</li>{{end}}
  </ol>
</section>
<button onclick="window.print()">{{.ExportLabel}}</button>
<script>window.addEventListener("load", function () { window.print(); });</script>
</body>
</html>
`))

type printView struct {
	Lang            string
	Title           string
	ProjectLabel    string
	Project         string
	GeneratedLabel  string
	Timestamp       string
	Score           string
	AvgLabel        string
	Avg             string
	MaxLabel        string
	Max             string
	ToleranceLabel  string
	Tolerance       string
	MapLabel        string
	Heatmap         template.URL
	AnalysisLabel   string
	Analysis        string
	ActionsLabel    string
	Recommendations []string
	ExportLabel     string
}

// WritePrintable renders a self-contained HTML report that opens the print dialog on load.
func WritePrintable(w io.Writer, r models.ReportData, heatmapPNG []byte, catalog *i18n.Catalog) error {
	t := func(key string) string { return catalog.T(r.Language, key) }

	v := printView{
		Lang:            htmlLang(r.Language),
		Title:           t(i18n.KeyReportTitle),
		ProjectLabel:    t(i18n.KeyProject),
		Project:         projectName(r),
		GeneratedLabel:  t(i18n.KeyGeneratedAt),
		Timestamp:       r.Metrics.Timestamp.Format("2006-01-02 15:04:05"),
		Score:           fmt.Sprintf("%.1f", r.Metrics.FlatnessScore),
		AvgLabel:        t(i18n.KeyAvgDev),
		Avg:             fmt.Sprintf("%.2f", r.Metrics.AverageDeviation),
		MaxLabel:        t(i18n.KeyMaxDev),
		Max:             fmt.Sprintf("%.2f", r.Metrics.MaxDeviation),
		ToleranceLabel:  t(i18n.KeyTolerance),
		Tolerance:       fmt.Sprintf("%g", models.ToleranceMM),
		MapLabel:        t(i18n.KeyDeviationMap),
		AnalysisLabel:   t(i18n.KeyAnalysis),
		Analysis:        r.Analysis,
		ActionsLabel:    t(i18n.KeyRemedialAction),
		Recommendations: r.Recommendations,
		ExportLabel:     t(i18n.KeyExportPDF),
	}
	if len(heatmapPNG) > 0 {
		v.Heatmap = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(heatmapPNG))
	}

	if err := printTemplate.Execute(w, v); err != nil {
		return fmt.Errorf("rendering printable report: %w", err)
	}
	return nil
}

func htmlLang(l models.Language) string {
	if l == models.LanguageZH {
		return "zh-CN"
	}
	return "en"
}
