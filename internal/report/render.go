package report

import (
	"bytes"
	"fmt"

	"github.com/kiranshivaraju/slabscan/internal/heatmap"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// HeatmapPixels is the side length of the heatmap raster embedded in reports.
const HeatmapPixels = 600

// HeatmapPNG rasterises points for embedding in a report.
func HeatmapPNG(points []models.ScanPoint) ([]byte, error) {
	hm, err := heatmap.Layout(points, HeatmapPixels, HeatmapPixels)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := heatmap.RenderPNG(&buf, hm); err != nil {
		return nil, fmt.Errorf("rendering heatmap: %w", err)
	}
	return buf.Bytes(), nil
}

// PDF renders the complete PDF report, heatmap included, into memory.
func PDF(r models.ReportData, catalog *i18n.Catalog, opts ...PDFOption) ([]byte, error) {
	img, err := HeatmapPNG(r.Points)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WritePDF(&buf, r, img, catalog, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Printable renders the print-ready HTML report, heatmap included, into memory.
func Printable(r models.ReportData, catalog *i18n.Catalog) ([]byte, error) {
	img, err := HeatmapPNG(r.Points)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := WritePrintable(&buf, r, img, catalog); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
