package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// Service aggregates dashboard counters and builds lead/summary exports.
type Service struct {
	storage interfaces.StorageManager
	logger  arbor.ILogger
}

var _ interfaces.AnalyticsService = (*Service)(nil)

// NewService creates an analytics service over the storage manager.
func NewService(storage interfaces.StorageManager, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		logger:  logger,
	}
}

// Summary computes the dashboard counters in one pass. Counters that fail
// individually fail the whole summary so the dashboard never shows a
// partially zeroed picture.
func (s *Service) Summary(ctx context.Context) (*models.AnalyticsSummary, error) {
	summary := &models.AnalyticsSummary{}

	var err error
	if summary.TotalMessages, err = s.storage.MessageStorage().CountMessages(ctx); err != nil {
		return nil, fmt.Errorf("failed to count messages: %w", err)
	}
	if summary.TotalConversations, err = s.storage.ConversationStorage().CountConversations(ctx); err != nil {
		return nil, fmt.Errorf("failed to count conversations: %w", err)
	}
	if summary.TotalLeads, err = s.storage.LeadStorage().CountLeads(ctx); err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}
	if summary.TotalUsers, err = s.storage.UserStorage().CountUsers(ctx); err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if summary.MessagesByPlatform, err = s.storage.MessageStorage().CountMessagesByPlatform(ctx); err != nil {
		return nil, fmt.Errorf("failed to count messages by platform: %w", err)
	}
	if summary.LeadsByPlatform, err = s.storage.LeadStorage().CountLeadsByPlatform(ctx); err != nil {
		return nil, fmt.Errorf("failed to count leads by platform: %w", err)
	}
	if summary.MessagesLast24h, err = s.storage.MessageStorage().CountMessagesSince(ctx, time.Now().Add(-24*time.Hour)); err != nil {
		return nil, fmt.Errorf("failed to count recent messages: %w", err)
	}
	if summary.OpenConversations, err = s.storage.ConversationStorage().CountOpenConversations(ctx); err != nil {
		return nil, fmt.Errorf("failed to count open conversations: %w", err)
	}
	if summary.HandoffConversations, err = s.storage.ConversationStorage().CountHandoffConversations(ctx); err != nil {
		return nil, fmt.Errorf("failed to count handoff conversations: %w", err)
	}

	return summary, nil
}

// ExportLeadsCSV writes every stored lead as CSV, newest first. Nil fields
// export as empty cells.
func (s *Service) ExportLeadsCSV(ctx context.Context) ([]byte, error) {
	leads, err := s.storage.LeadStorage().ListLeads(ctx, &interfaces.ListOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}

	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{"id", "name", "phone", "email", "intent", "platform", "conversation_id", "created_at"}
	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, lead := range leads {
		record := []string{
			lead.ID,
			models.StringOrEmpty(lead.Name),
			models.StringOrEmpty(lead.Phone),
			models.StringOrEmpty(lead.Email),
			models.StringOrEmpty(lead.Intent),
			lead.Platform,
			lead.ConversationID,
			lead.CreatedAt.UTC().Format(time.RFC3339),
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV: %w", err)
	}

	s.logger.Debug().Int("leads", len(leads)).Msg("Exported leads CSV")
	return buf.Bytes(), nil
}

// ExportSummaryPDF renders the analytics summary as a one-page PDF report.
func (s *Service) ExportSummaryPDF(ctx context.Context) ([]byte, error) {
	summary, err := s.Summary(ctx)
	if err != nil {
		return nil, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 10)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(0, 10, "Respondo Analytics Summary", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format("2006-01-02 15:04 UTC")), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	writeCounter := func(label string, value int) {
		pdf.SetFont("Arial", "B", 10)
		pdf.CellFormat(70, 7, label, "", 0, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		pdf.CellFormat(0, 7, fmt.Sprintf("%d", value), "", 1, "L", false, 0, "")
	}

	writeCounter("Total messages", summary.TotalMessages)
	writeCounter("Messages last 24h", summary.MessagesLast24h)
	writeCounter("Total conversations", summary.TotalConversations)
	writeCounter("Open conversations", summary.OpenConversations)
	writeCounter("Handoff conversations", summary.HandoffConversations)
	writeCounter("Total users", summary.TotalUsers)
	writeCounter("Total leads", summary.TotalLeads)

	writePlatformTable := func(title string, counts map[string]int) {
		pdf.Ln(4)
		pdf.SetFont("Arial", "B", 11)
		pdf.CellFormat(0, 8, title, "", 1, "L", false, 0, "")
		pdf.SetFont("Arial", "", 10)
		for _, platform := range models.KnownPlatforms {
			count, ok := counts[platform]
			if !ok {
				continue
			}
			pdf.CellFormat(70, 6, platform, "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, fmt.Sprintf("%d", count), "", 1, "L", false, 0, "")
		}
	}

	writePlatformTable("Messages by platform", summary.MessagesByPlatform)
	writePlatformTable("Leads by platform", summary.LeadsByPlatform)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	s.logger.Debug().Int("pdf_size", buf.Len()).Msg("Analytics PDF generated")
	return buf.Bytes(), nil
}
