package handler

import (
	"log/slog"
	"net/http"

	"github.com/kiranshivaraju/slabscan/internal/api/response"
	"github.com/kiranshivaraju/slabscan/internal/app"
	"github.com/kiranshivaraju/slabscan/internal/i18n"
	"github.com/kiranshivaraju/slabscan/internal/report"
	"github.com/kiranshivaraju/slabscan/pkg/models"
)

// NewReportHandler returns an http.HandlerFunc for GET /api/v1/report.
func NewReportHandler(states StateSource) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := currentReport(w, r, states)
		if !ok {
			return
		}
		response.JSON(w, rep)
	}
}

// NewReportPDFHandler returns an http.HandlerFunc for GET /api/v1/report.pdf.
func NewReportPDFHandler(states StateSource, catalog *i18n.Catalog, opts ...report.PDFOption) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := currentReport(w, r, states)
		if !ok {
			return
		}
		data, err := report.PDF(rep, catalog, opts...)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Bytes(w, "application/pdf", pdfFilename(rep), data)
	}
}

// NewReportPrintHandler returns an http.HandlerFunc for GET /api/v1/report/print.
func NewReportPrintHandler(states StateSource, catalog *i18n.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rep, ok := currentReport(w, r, states)
		if !ok {
			return
		}
		data, err := report.Printable(rep, catalog)
		if err != nil {
			writeError(w, r, err)
			return
		}
		response.Bytes(w, "text/html; charset=utf-8", "", data)
	}
}

type exportResponse struct {
	Key string `json:"key"`
	URL string `json:"url"`
}

// NewReportExportHandler returns an http.HandlerFunc for POST /api/v1/report/export.
// A nil uploader means export is not configured.
func NewReportExportHandler(states StateSource, catalog *i18n.Catalog, up Uploader, opts ...report.PDFOption) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if up == nil {
			response.Error(w, http.StatusNotImplemented, "EXPORT_NOT_CONFIGURED",
				"Report export storage is not configured", nil)
			return
		}
		rep, ok := currentReport(w, r, states)
		if !ok {
			return
		}
		data, err := report.PDF(rep, catalog, opts...)
		if err != nil {
			writeError(w, r, err)
			return
		}

		key := report.ObjectKey(rep, "pdf")
		url, err := up.Upload(r.Context(), key, data, "application/pdf")
		if err != nil {
			slog.Error("report export failed", "report_id", rep.ID, "key", key, "error", err)
			response.Error(w, http.StatusBadGateway, "EXPORT_FAILED",
				"Could not upload the report", nil)
			return
		}
		slog.Info("report exported", "report_id", rep.ID, "key", key)
		response.Created(w, exportResponse{Key: key, URL: url})
	}
}

func currentReport(w http.ResponseWriter, r *http.Request, states StateSource) (models.ReportData, bool) {
	st := states.Snapshot()
	if st.Report == nil {
		writeError(w, r, app.ErrNoReport)
		return models.ReportData{}, false
	}
	return *st.Report, true
}

func pdfFilename(r models.ReportData) string {
	return "slab-report-" + r.ID.String()[:8] + ".pdf"
}
