// Package handler implements the HTTP endpoints of the slab inspection API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/internal/api/response"
	"github.com/kiranshivaraju/slabscan/internal/app"
	"github.com/kiranshivaraju/slabscan/internal/scan"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// StateSource exposes the current application state.
type StateSource interface {
	Snapshot() app.State
	Subscribe() (<-chan app.State, func())
}

// Workflow is the part of app.Service the handlers drive.
type Workflow interface {
	StartCamera(ctx context.Context) error
	StartScan(ctx context.Context) (models.Job, error)
	StartAnalysis(ctx context.Context) (models.Job, error)
	AddFile(name string, size int64) (models.DesignFile, error)
	SetLanguage(lang models.Language) error
	Navigate(page models.Page) (app.State, error)
	Job(ctx context.Context, id uuid.UUID) (models.Job, error)
}

// Pinger reports backend connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Uploader stores exported documents and returns their location.
type Uploader interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

var _ Workflow = (*app.Service)(nil)

// writeError maps domain errors to stable API error codes.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidInput):
		response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
	case errors.Is(err, scan.ErrPermissionDenied):
		response.Error(w, http.StatusForbidden, "PERMISSION_DENIED",
			"Camera access was denied", nil)
	case errors.Is(err, app.ErrScanInProgress):
		response.Error(w, http.StatusConflict, "SCAN_IN_PROGRESS",
			"A scan is already running", nil)
	case errors.Is(err, app.ErrAnalysisInProgress):
		response.Error(w, http.StatusConflict, "ANALYSIS_IN_PROGRESS",
			"An analysis is already running", nil)
	case errors.Is(err, app.ErrNoScan):
		response.Error(w, http.StatusConflict, "NO_SCAN",
			"Run a scan before requesting an analysis", nil)
	case errors.Is(err, app.ErrNoReport):
		response.Error(w, http.StatusNotFound, "NO_REPORT",
			"No report has been generated", nil)
	case errors.Is(err, app.ErrJobNotFound):
		response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND",
			"Job not found", nil)
	default:
		slog.Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR",
			"An unexpected error occurred", nil)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_INPUT", "Invalid JSON body", nil)
		return false
	}
	return true
}
