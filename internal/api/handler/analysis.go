package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/slabscan/internal/api/response"
)

// NewStartAnalysisHandler returns an http.HandlerFunc for POST /api/v1/analysis.
func NewStartAnalysisHandler(wf Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := wf.StartAnalysis(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Accepted(w, job)
	}
}

// NewJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewJobHandler(wf Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "jobID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_INPUT", "job_id must be a valid UUID", nil)
			return
		}
		job, err := wf.Job(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, job)
	}
}
