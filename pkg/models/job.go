package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	JobStatusPending   = "pending"
	JobStatusRunning   = "running"
	JobStatusCompleted = "completed"
	JobStatusFailed    = "failed"
)

const (
	JobTypeScan     = "scan"
	JobTypeAnalysis = "analysis"
)

// Job tracks a background scan or analysis. POST /api/v1/scans and
// POST /api/v1/analysis return a job; the client polls GET /api/v1/jobs/{job_id}
// until status is completed or failed.
type Job struct {
	ID           uuid.UUID  `json:"id"`
	Type         string     `json:"type"`
	Status       string     `json:"status"`
	ErrorCode    string     `json:"error_code,omitempty"`
	ErrorMessage *string    `json:"error_message,omitempty"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// Done reports whether the job reached a terminal status.
func (j Job) Done() bool {
	return j.Status == JobStatusCompleted || j.Status == JobStatusFailed
}
