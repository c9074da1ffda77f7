package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/slabscan/internal/api/middleware"
	"github.com/kiranshivaraju/slabscan/internal/api/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	RateLimit   *mw.RateLimit
	CORSOrigins []string

	HealthHandler   http.HandlerFunc
	StateHandler    http.HandlerFunc
	EventsHandler   http.HandlerFunc
	LanguageHandler http.HandlerFunc
	NavigateHandler http.HandlerFunc
	I18nHandler     http.HandlerFunc

	ListFilesHandler  http.HandlerFunc
	UploadFileHandler http.HandlerFunc

	CameraHandler      http.HandlerFunc
	StartScanHandler   http.HandlerFunc
	CurrentScanHandler http.HandlerFunc
	HeatmapHandler     http.HandlerFunc
	HeatmapPNGHandler  http.HandlerFunc
	HeatmapHTMLHandler http.HandlerFunc

	StartAnalysisHandler http.HandlerFunc
	JobHandler           http.HandlerFunc

	ReportHandler       http.HandlerFunc
	ReportPDFHandler    http.HandlerFunc
	ReportPrintHandler  http.HandlerFunc
	ReportExportHandler http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)
	r.Use(mw.CORS(deps.CORSOrigins))

	r.Get("/api/v1/health", orNotImplemented(deps.HealthHandler))
	r.Get("/api/v1/state", orNotImplemented(deps.StateHandler))
	r.Get("/api/v1/events", orNotImplemented(deps.EventsHandler))
	r.Get("/api/v1/i18n/{lang}", orNotImplemented(deps.I18nHandler))
	r.Get("/api/v1/files", orNotImplemented(deps.ListFilesHandler))

	r.Get("/api/v1/scans/current", orNotImplemented(deps.CurrentScanHandler))
	r.Get("/api/v1/scans/current/heatmap", orNotImplemented(deps.HeatmapHandler))
	r.Get("/api/v1/scans/current/heatmap.png", orNotImplemented(deps.HeatmapPNGHandler))
	r.Get("/api/v1/scans/current/heatmap.html", orNotImplemented(deps.HeatmapHTMLHandler))
	r.Get("/api/v1/jobs/{jobID}", orNotImplemented(deps.JobHandler))

	r.Get("/api/v1/report", orNotImplemented(deps.ReportHandler))
	r.Get("/api/v1/report.pdf", orNotImplemented(deps.ReportPDFHandler))
	r.Get("/api/v1/report/print", orNotImplemented(deps.ReportPrintHandler))

	// Mutating routes are rate limited per client
	r.Group(func(r chi.Router) {
		if deps.RateLimit != nil {
			r.Use(deps.RateLimit.Limit)
		}

		r.Put("/api/v1/settings/language", orNotImplemented(deps.LanguageHandler))
		r.Post("/api/v1/navigate", orNotImplemented(deps.NavigateHandler))
		r.Post("/api/v1/files", orNotImplemented(deps.UploadFileHandler))
		r.Post("/api/v1/camera", orNotImplemented(deps.CameraHandler))
		r.Post("/api/v1/scans", orNotImplemented(deps.StartScanHandler))
		r.Post("/api/v1/analysis", orNotImplemented(deps.StartAnalysisHandler))
		r.Post("/api/v1/report/export", orNotImplemented(deps.ReportExportHandler))
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
