package report

import (
	"bytes"
	"fmt"
	"io"

	"codeberg.org/go-pdf/fpdf"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

const (
	pageWidthMM   = 210.0
	marginMM      = 15.0
	heatmapWidth  = 110.0
	coreFont      = "Helvetica"
	utf8FontAlias = "report"
)

// PDFOption customises WritePDF.
type PDFOption func(*pdfOptions)

type pdfOptions struct {
	fontPath string
}

// WithUTF8Font embeds a TrueType font so non-Latin text, such as Chinese, renders.
// Without it the core Helvetica font is used and labels fall back to English.
func WithUTF8Font(path string) PDFOption {
	return func(o *pdfOptions) { o.fontPath = path }
}

// WritePDF renders an A4 report: header, key metrics, heatmap, analysis, and
// numbered remedial actions.
func WritePDF(w io.Writer, r models.ReportData, heatmapPNG []byte, catalog *i18n.Catalog, opts ...PDFOption) error {
	var o pdfOptions
	for _, opt := range opts {
		opt(&o)
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(true, marginMM)
	pdf.SetCreationDate(r.CreatedAt)

	family, bold := coreFont, "B"
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	lang := r.Language
	if o.fontPath != "" {
		pdf.AddUTF8Font(utf8FontAlias, "", o.fontPath)
		family, bold = utf8FontAlias, ""
		tr = func(s string) string { return s }
	} else {
		lang = models.LanguageEN
	}
	t := func(key string) string { return tr(catalog.T(lang, key)) }

	pdf.SetTitle(catalog.T(lang, i18n.KeyReportTitle), true)
	pdf.SetCreator("slabscan", true)
	pdf.AddPage()

	// Header
	pdf.SetFont(family, bold, 20)
	pdf.CellFormat(0, 10, t(i18n.KeyReportTitle), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.SetTextColor(100, 116, 139)
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", t(i18n.KeyProject), projectName(r)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("%s: %s", t(i18n.KeyGeneratedAt), r.Metrics.Timestamp.Format("2006-01-02 15:04:05")), "", 1, "L", false, 0, "")

	pdf.SetFont(family, bold, 16)
	pdf.SetTextColor(scoreColor(r.Metrics.FlatnessScore))
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("%s: %.1f/100", catalog.T(lang, i18n.KeyFlatness), r.Metrics.FlatnessScore)), "", 1, "L", false, 0, "")
	pdf.SetTextColor(15, 23, 42)
	pdf.Ln(2)

	// Metrics row
	colW := (pageWidthMM - 2*marginMM) / 3
	pdf.SetFillColor(241, 245, 249)
	pdf.SetFont(family, "", 9)
	for _, label := range []string{t(i18n.KeyAvgDev), t(i18n.KeyMaxDev), t(i18n.KeyTolerance)} {
		pdf.CellFormat(colW, 6, label, "", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(family, bold, 13)
	for _, value := range []string{
		fmt.Sprintf("%.2f mm", r.Metrics.AverageDeviation),
		fmt.Sprintf("%.2f mm", r.Metrics.MaxDeviation),
		fmt.Sprintf("±%g mm", models.ToleranceMM),
	} {
		pdf.CellFormat(colW, 9, tr(value), "", 0, "C", true, 0, "")
	}
	pdf.Ln(12)

	// Heatmap
	if len(heatmapPNG) > 0 {
		pdf.SetFont(family, bold, 12)
		pdf.CellFormat(0, 8, t(i18n.KeyDeviationMap), "", 1, "L", false, 0, "")
		imgOpts := fpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("heatmap", imgOpts, bytes.NewReader(heatmapPNG))
		pdf.ImageOptions("heatmap", (pageWidthMM-heatmapWidth)/2, 0, heatmapWidth, 0, true, imgOpts, 0, "")
		pdf.Ln(4)
	}

	// Analysis
	pdf.SetFont(family, bold, 12)
	pdf.CellFormat(0, 8, t(i18n.KeyAnalysis), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	pdf.MultiCell(0, 5.5, tr(r.Analysis), "", "L", false)
	pdf.Ln(4)

	// Remedial actions
	pdf.SetFont(family, bold, 12)
	pdf.CellFormat(0, 8, t(i18n.KeyRemedialAction), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", 10)
	for i, rec := range r.Recommendations {
		pdf.MultiCell(0, 5.5, tr(fmt.Sprintf("%d. %s", i+1, rec)), "", "L", false)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing report pdf: %w", err)
	}
	return nil
}

func projectName(r models.ReportData) string {
	return "Slab " + r.ScanID.String()[:8]
}

func scoreColor(score float64) (int, int, int) {
	switch {
	case score >= 90:
		return 22, 163, 74
	case score >= 75:
		return 202, 138, 4
	default:
		return 220, 38, 38
	}
}
