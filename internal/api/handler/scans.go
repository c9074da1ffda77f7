package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/kiranshivaraju/slabscan/internal/api/response"
	"github.com/kiranshivaraju/slabscan/internal/app"
	"github.com/kiranshivaraju/slabscan/internal/heatmap"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

const (
	defaultHeatmapPixels = 300
	maxHeatmapPixels     = 4096
)

// NewCameraHandler returns an http.HandlerFunc for POST /api/v1/camera.
func NewCameraHandler(wf Workflow, states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := wf.StartCamera(r.Context()); err != nil {
			writeError(w, r, err)
			return
		}
		response.JSON(w, states.Snapshot())
	}
}

// NewStartScanHandler returns an http.HandlerFunc for POST /api/v1/scans.
func NewStartScanHandler(wf Workflow) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		job, err := wf.StartScan(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Accepted(w, job)
	}
}

type currentScanResponse struct {
	Scan    *models.Scan             `json:"scan"`
	Metrics *models.AnalysisMetrics  `json:"metrics"`
	Regions []models.DeviationRegion `json:"regions"`
}

// NewCurrentScanHandler returns an http.HandlerFunc for GET /api/v1/scans/current.
func NewCurrentScanHandler(states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		st, ok := currentScan(w, states)
		if !ok {
			return
		}
		regions := st.Regions
		if regions == nil {
			regions = []models.DeviationRegion{}
		}
		response.JSON(w, currentScanResponse{Scan: st.Scan, Metrics: st.Metrics, Regions: regions})
	}
}

// NewHeatmapHandler returns an http.HandlerFunc for GET /api/v1/scans/current/heatmap.
func NewHeatmapHandler(states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hm, _, ok := heatmapFor(w, r, states)
		if !ok {
			return
		}
		response.JSON(w, hm)
	}
}

// NewHeatmapPNGHandler returns an http.HandlerFunc for GET /api/v1/scans/current/heatmap.png.
func NewHeatmapPNGHandler(states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hm, _, ok := heatmapFor(w, r, states)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := heatmap.RenderPNG(&buf, hm); err != nil {
			writeError(w, r, err)
			return
		}
		response.Bytes(w, "image/png", "", buf.Bytes())
	}
}

// NewHeatmapHTMLHandler returns an http.HandlerFunc for GET /api/v1/scans/current/heatmap.html.
func NewHeatmapHTMLHandler(states StateSource, catalog *i18n.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		hm, st, ok := heatmapFor(w, r, states)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := heatmap.RenderHTML(&buf, hm, catalog.T(st.Language, i18n.KeyDeviationMap)); err != nil {
			writeError(w, r, err)
			return
		}
		response.Bytes(w, "text/html; charset=utf-8", "", buf.Bytes())
	}
}

func currentScan(w http.ResponseWriter, states StateSource) (app.State, bool) {
	st := states.Snapshot()
	if st.Scan == nil || st.Metrics == nil {
		response.Error(w, http.StatusNotFound, "NO_SCAN", "No scan has been captured", nil)
		return app.State{}, false
	}
	return st, true
}

func heatmapFor(w http.ResponseWriter, r *http.Request, states StateSource) (heatmap.Heatmap, app.State, bool) {
	width, err := pixelParam(r, "width")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return heatmap.Heatmap{}, app.State{}, false
	}
	height, err := pixelParam(r, "height")
	if err != nil {
		response.Error(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), nil)
		return heatmap.Heatmap{}, app.State{}, false
	}

	st, ok := currentScan(w, states)
	if !ok {
		return heatmap.Heatmap{}, app.State{}, false
	}
	hm, err := heatmap.Layout(st.Scan.Points, width, height)
	if err != nil {
		writeError(w, r, err)
		return heatmap.Heatmap{}, app.State{}, false
	}
	return hm, st, true
}

func pixelParam(r *http.Request, name string) (int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return defaultHeatmapPixels, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > maxHeatmapPixels {
		return 0, fmt.Errorf("%s must be an integer between 1 and %d", name, maxHeatmapPixels)
	}
	return v, nil
}
