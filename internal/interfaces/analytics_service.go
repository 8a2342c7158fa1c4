package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// AnalyticsService aggregates dashboard counters and builds exports.
type AnalyticsService interface {
	Summary(ctx context.Context) (*models.AnalyticsSummary, error)

	// ExportLeadsCSV writes all leads as CSV.
	ExportLeadsCSV(ctx context.Context) ([]byte, error)

	// ExportSummaryPDF renders the analytics summary as a PDF report.
	ExportSummaryPDF(ctx context.Context) ([]byte, error)
}
