package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
)

// AnalyticsHandler serves the dashboard summary and the CSV/PDF exports.
type AnalyticsHandler struct {
	analytics interfaces.AnalyticsService
	logger    arbor.ILogger
}

func NewAnalyticsHandler(analytics interfaces.AnalyticsService, logger arbor.ILogger) *AnalyticsHandler {
	return &AnalyticsHandler{
		analytics: analytics,
		logger:    logger,
	}
}

// SummaryHandler handles GET /api/admin/analytics.
func (h *AnalyticsHandler) SummaryHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	summary, err := h.analytics.Summary(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to build analytics summary")
		WriteError(w, http.StatusInternalServerError, "Failed to build summary")
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}

// ExportLeadsCSVHandler handles GET /api/admin/analytics/leads.csv.
func (h *AnalyticsHandler) ExportLeadsCSVHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	data, err := h.analytics.ExportLeadsCSV(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to export leads CSV")
		WriteError(w, http.StatusInternalServerError, "Failed to export leads")
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="leads.csv"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// ExportSummaryPDFHandler handles GET /api/admin/analytics/summary.pdf.
func (h *AnalyticsHandler) ExportSummaryPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	data, err := h.analytics.ExportSummaryPDF(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to export summary PDF")
		WriteError(w, http.StatusInternalServerError, "Failed to export summary")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="analytics-summary.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
