package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	// DefaultGridSize is the side length of a simulated scan grid.
	DefaultGridSize = 20
	// GoodBandMM is the half-width of the band rendered as flat.
	GoodBandMM = 2.0
	// ToleranceMM is the standard slab flatness tolerance quoted in reports.
	ToleranceMM = 5.0
)

// ScanPoint is one height-map sample. Z is the deviation in millimetres from
// the reference plane.
type ScanPoint struct {
	X         int     `json:"x"`
	Y         int     `json:"y"`
	Z         float64 `json:"z"`
	Intensity float64 `json:"intensity"`
}

// Scan is a completed capture: GridSize² points in row-major order.
type Scan struct {
	ID         uuid.UUID   `json:"id"`
	GridSize   int         `json:"grid_size"`
	Points     []ScanPoint `json:"points"`
	CapturedAt time.Time   `json:"captured_at"`
}

// AnalysisMetrics is the summary of one scan. Computed once, never partially updated.
type AnalysisMetrics struct {
	AverageDeviation float64   `json:"average_deviation"`
	MaxDeviation     float64   `json:"max_deviation"`
	MinDeviation     float64   `json:"min_deviation"`
	FlatnessScore    float64   `json:"flatness_score"`
	Timestamp        time.Time `json:"timestamp"`
}
