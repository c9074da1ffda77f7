package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/kiranshivaraju/slabscan/internal/api/response"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

const heartbeatInterval = 15 * time.Second

// NewStateHandler returns an http.HandlerFunc for GET /api/v1/state.
func NewStateHandler(states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, states.Snapshot())
	}
}

// NewEventsHandler returns an http.HandlerFunc for GET /api/v1/events. It
// streams one "state" server-sent event per change, starting with the current state.
func NewEventsHandler(states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rc := http.NewResponseController(w)
		// The stream outlives the server's write timeout.
		_ = rc.SetWriteDeadline(time.Time{})

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("X-Accel-Buffering", "no")
		w.WriteHeader(http.StatusOK)

		ch, cancel := states.Subscribe()
		defer cancel()

		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-r.Context().Done():
				return
			case st, ok := <-ch:
				if !ok {
					return
				}
				data, err := json.Marshal(st)
				if err != nil {
					slog.Error("encoding state event", "error", err)
					return
				}
				if _, err := fmt.Fprintf(w, "event: state\nid: %d\ndata: %s\n\n", st.Version, data); err != nil {
					return
				}
			case <-heartbeat.C:
				if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
					return
				}
			}
			if err := rc.Flush(); err != nil {
				return
			}
		}
	}
}

// NewLanguageHandler returns an http.HandlerFunc for PUT /api/v1/settings/language.
func NewLanguageHandler(wf Workflow, states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Language string `json:"language"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		lang := models.Language(strings.ToUpper(strings.TrimSpace(req.Language)))
		if err := wf.SetLanguage(lang); err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, states.Snapshot())
	}
}

// NewNavigateHandler returns an http.HandlerFunc for POST /api/v1/navigate.
func NewNavigateHandler(wf Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Page string `json:"page"`
		}
		if !decodeJSON(w, r, &req) {
			return
		}
		st, err := wf.Navigate(models.Page(strings.ToLower(strings.TrimSpace(req.Page))))
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, st)
	}
}

// NewI18nHandler returns an http.HandlerFunc for GET /api/v1/i18n/{lang}.
func NewI18nHandler(catalog *i18n.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		lang := models.Language(strings.ToUpper(chi.URLParam(r, "lang")))
		if !lang.Valid() {
			response.Error(w, http.StatusBadRequest, "INVALID_INPUT",
				fmt.Sprintf("unsupported language %q", chi.URLParam(r, "lang")), nil)
			return
		}
		response.JSON(w, map[string]any{
			"language": lang,
			"strings":  catalog.Table(lang),
		})
	}
}
