// Package metrics reduces a scan to its summary statistics.
package metrics

import (
	"fmt"
	"math"
	"time"

	"github.com/kiranshivaraju/slabscan/pkg/models"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// scorePenalty is the number of score points lost per millimetre of mean deviation.
const scorePenalty = 5.0

// Aggregate computes the metrics of a point sequence captured at now.
// Average deviation is the mean absolute z; max and min are signed.
func Aggregate(points []models.ScanPoint, now time.Time) (models.AnalysisMetrics, error) {
	if len(points) == 0 {
		return models.AnalysisMetrics{}, fmt.Errorf("%w: no scan points", models.ErrInvalidInput)
	}

	zs := make([]float64, len(points))
	abs := make([]float64, len(points))
	for i, p := range points {
		if math.IsNaN(p.Z) || math.IsInf(p.Z, 0) {
			return models.AnalysisMetrics{}, fmt.Errorf("%w: point (%d,%d) has non-finite deviation", models.ErrInvalidInput, p.X, p.Y)
		}
		zs[i] = p.Z
		abs[i] = math.Abs(p.Z)
	}

	avg := stat.Mean(abs, nil)

	return models.AnalysisMetrics{
		AverageDeviation: avg,
		MaxDeviation:     floats.Max(zs),
		MinDeviation:     floats.Min(zs),
		FlatnessScore:    FlatnessScore(avg),
		Timestamp:        now,
	}, nil
}

// FlatnessScore maps a mean absolute deviation to a 0-100 score.
func FlatnessScore(avgDeviation float64) float64 {
	score := 100 - avgDeviation*scorePenalty
	return math.Min(100, math.Max(0, score))
}
