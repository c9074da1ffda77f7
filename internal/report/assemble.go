// Package report assembles scan results into a quality report and renders it
// as PDF or printable HTML.
package report

import (
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/internal/analysis"
	"github.com/kiranshivaraju/slabscan/pkg/models"
	"github.com/kiranshivaraju/slabscan/pkg/prompt"
)

// Assemble combines metrics, points, and a narrative into a new report.
// Points are shared with the caller; recommendations and hotspots are copied.
func Assemble(
	metrics models.AnalysisMetrics,
	points []models.ScanPoint,
	scanID uuid.UUID,
	narrative models.Narrative,
	regions []models.DeviationRegion,
	lang models.Language,
	now time.Time,
) (models.ReportData, error) {
	if _, err := analysis.GridSize(len(points)); err != nil {
		return models.ReportData{}, err
	}

	recs := make([]string, len(narrative.Recommendations))
	copy(recs, narrative.Recommendations)

	n := min(len(regions), prompt.MaxHotspots)
	hotspots := make([]models.DeviationRegion, n)
	copy(hotspots, regions[:n])

	return models.ReportData{
		ID:              uuid.New(),
		ScanID:          scanID,
		Metrics:         metrics,
		Points:          points,
		Analysis:        narrative.Analysis,
		Recommendations: recs,
		Hotspots:        hotspots,
		Language:        lang,
		Provider:        narrative.Provider,
		Fallback:        narrative.Fallback,
		CreatedAt:       now.UTC(),
	}, nil
}
