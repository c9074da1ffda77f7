// Package prompt builds the text sent to narrative providers.
package prompt

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// MaxHotspots caps how many deviation regions are described in a prompt.
const MaxHotspots = 3

// Builder constructs slab-assessment prompts.
// All methods are pure functions with no side effects.
// Zero value is ready to use.
type Builder struct{}

// Params defines inputs for an assessment prompt.
type Params struct {
	Metrics  models.AnalysisMetrics
	Hotspots []models.DeviationRegion
	// LanguageInstruction is appended verbatim, e.g. "Respond in English.".
	LanguageInstruction string
}

// Build returns the full prompt text.
func (b Builder) Build(p Params) string {
	parts := []string{
		"You are a senior structural engineer and construction quality control expert.",
		b.buildMetrics(p.Metrics),
	}
	if hs := b.buildHotspots(p.Hotspots); hs != "" {
		parts = append(parts, hs)
	}
	parts = append(parts, b.buildTask())
	if p.LanguageInstruction != "" {
		parts = append(parts, p.LanguageInstruction)
	}
	parts = append(parts, `Format the response as a JSON object with two keys: "analysis" (string) and "recommendations" (array of strings). Do not use Markdown code blocks.`)

	return strings.Join(parts, "\n\n")
}

func (b Builder) buildMetrics(m models.AnalysisMetrics) string {
	lines := []string{
		"Data from a recent slab pouring scan:",
		fmt.Sprintf("- Average Surface Deviation: %.2f mm", m.AverageDeviation),
		fmt.Sprintf("- Maximum Deviation: %.2f mm", m.MaxDeviation),
		fmt.Sprintf("- Minimum Deviation: %.2f mm", m.MinDeviation),
		fmt.Sprintf("- Overall Flatness Score: %s/100", strconv.FormatFloat(m.FlatnessScore, 'f', -1, 64)),
		fmt.Sprintf("- Standard Tolerance: +/- %smm", strconv.FormatFloat(models.ToleranceMM, 'f', -1, 64)),
	}
	if !m.Timestamp.IsZero() {
		lines = append(lines, "- Scanned At: "+m.Timestamp.UTC().Format(time.RFC3339))
	}
	return strings.Join(lines, "\n")
}

func (b Builder) buildHotspots(regions []models.DeviationRegion) string {
	if len(regions) == 0 {
		return ""
	}
	if len(regions) > MaxHotspots {
		regions = regions[:MaxHotspots]
	}
	lines := []string{"Largest out-of-band areas (grid cells, row-major from the top-left corner):"}
	for _, r := range regions {
		lines = append(lines, fmt.Sprintf("- %s spot: %d cells spanning x %d-%d, y %d-%d, peak %.2f mm, mean %.2f mm",
			r.Kind, r.Cells, r.Bounds.MinX, r.Bounds.MaxX, r.Bounds.MinY, r.Bounds.MaxY, r.PeakDeviation, r.MeanDeviation))
	}
	return strings.Join(lines, "\n")
}

func (b Builder) buildTask() string {
	return strings.Join([]string{
		"Task:",
		"1. Provide a concise technical assessment of the slab quality.",
		"2. Provide 3 specific, actionable remedial steps for the site team to fix the uneven areas (e.g., grinding high spots, using self-leveling compound for low spots).",
	}, "\n")
}
