package models

import "github.com/google/uuid"

const (
	RegionKindHigh = "high"
	RegionKindLow  = "low"
)

// Bounds is an inclusive cell-coordinate rectangle.
type Bounds struct {
	MinX int `json:"min_x"`
	MinY int `json:"min_y"`
	MaxX int `json:"max_x"`
	MaxY int `json:"max_y"`
}

// DeviationRegion is a connected group of cells outside the good band that
// deviate in the same direction: a high spot to grind or a low spot to fill.
type DeviationRegion struct {
	ID            uuid.UUID `json:"id"`
	Kind          string    `json:"kind"`
	Cells         int       `json:"cells"`
	PeakDeviation float64   `json:"peak_deviation"`
	MeanDeviation float64   `json:"mean_deviation"`
	Bounds        Bounds    `json:"bounds"`
}
