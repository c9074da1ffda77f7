package handler

import (
	"net/http"

	"github.com/kiranshivaraju/slabscan/internal/api/response"
)

// NewHealthHandler returns an http.HandlerFunc for GET /api/v1/health.
// It checks cache connectivity and reports the narrative provider in use.
func NewHealthHandler(c Pinger, provider string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		checks := map[string]string{"cache": "ok"}
		if err := c.Ping(r.Context()); err != nil {
			checks["cache"] = "degraded"
		}

		if checks["cache"] != "ok" {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
			"provider": provider,
		})
	}
}
