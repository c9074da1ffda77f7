package models

import (
	"time"

	"github.com/google/uuid"
)

// ReportData is the assembled quality report for one scan.
// Points shares the scan's slice; treat it as read-only.
type ReportData struct {
	ID              uuid.UUID         `json:"id"`
	ScanID          uuid.UUID         `json:"scan_id"`
	Metrics         AnalysisMetrics   `json:"metrics"`
	Points          []ScanPoint       `json:"points"`
	Analysis        string            `json:"analysis"`
	Recommendations []string          `json:"recommendations"`
	Hotspots        []DeviationRegion `json:"hotspots"`
	Language        Language          `json:"language"`
	Provider        string            `json:"provider"`
	Fallback        bool              `json:"fallback"`
	CreatedAt       time.Time         `json:"created_at"`
}
