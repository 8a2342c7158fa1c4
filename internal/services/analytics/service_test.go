package analytics

import (
	"bytes"
	"context"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/ternarybob/respondo/internal/storage/badger"
)

func newTestService(t *testing.T) (*Service, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	return NewService(manager, logger), manager
}

func seedFixtures(t *testing.T, manager interfaces.StorageManager) {
	t.Helper()
	ctx := context.Background()

	conv := &models.Conversation{
		ID:       common.NewConversationID(),
		UserID:   "user-1",
		Platform: models.PlatformWeb,
		Status:   models.ConversationOpen,
	}
	if err := manager.ConversationStorage().SaveConversation(ctx, conv); err != nil {
		t.Fatalf("Failed to save conversation: %v", err)
	}

	for _, content := range []string{"hello", "do you have pricing?"} {
		msg := &models.Message{
			ID:             common.NewMessageID(),
			ConversationID: conv.ID,
			Platform:       models.PlatformWeb,
			Sender:         models.SenderUser,
			Content:        content,
		}
		if err := manager.MessageStorage().SaveMessage(ctx, msg); err != nil {
			t.Fatalf("Failed to save message: %v", err)
		}
	}

	email := "jane@example.com"
	lead := &models.Lead{
		ID:             common.NewLeadID(),
		Email:          &email,
		Platform:       models.PlatformWeb,
		ConversationID: conv.ID,
	}
	if err := manager.LeadStorage().SaveLead(ctx, lead); err != nil {
		t.Fatalf("Failed to save lead: %v", err)
	}
}

func TestSummaryCounts(t *testing.T) {
	svc, manager := newTestService(t)
	seedFixtures(t, manager)

	summary, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}

	if summary.TotalMessages != 2 {
		t.Errorf("Expected 2 messages, got %d", summary.TotalMessages)
	}
	if summary.TotalConversations != 1 || summary.OpenConversations != 1 {
		t.Errorf("Unexpected conversation counts: total=%d open=%d",
			summary.TotalConversations, summary.OpenConversations)
	}
	if summary.TotalLeads != 1 {
		t.Errorf("Expected 1 lead, got %d", summary.TotalLeads)
	}
	if summary.MessagesByPlatform[models.PlatformWeb] != 2 {
		t.Errorf("Expected 2 web messages, got %d", summary.MessagesByPlatform[models.PlatformWeb])
	}
	if summary.MessagesLast24h != 2 {
		t.Errorf("Expected 2 recent messages, got %d", summary.MessagesLast24h)
	}
}

func TestExportLeadsCSV(t *testing.T) {
	svc, manager := newTestService(t)
	seedFixtures(t, manager)

	data, err := svc.ExportLeadsCSV(context.Background())
	if err != nil {
		t.Fatalf("ExportLeadsCSV failed: %v", err)
	}

	records, err := csv.NewReader(bytes.NewReader(data)).ReadAll()
	if err != nil {
		t.Fatalf("Export is not valid CSV: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("Expected header plus 1 lead, got %d rows", len(records))
	}
	if records[0][0] != "id" || records[0][3] != "email" {
		t.Errorf("Unexpected header row: %v", records[0])
	}
	if records[1][3] != "jane@example.com" {
		t.Errorf("Expected lead email in row, got %v", records[1])
	}
	// Nil name exports as an empty cell
	if records[1][1] != "" {
		t.Errorf("Expected empty name cell, got %q", records[1][1])
	}
}

func TestExportSummaryPDF(t *testing.T) {
	svc, manager := newTestService(t)
	seedFixtures(t, manager)

	data, err := svc.ExportSummaryPDF(context.Background())
	if err != nil {
		t.Fatalf("ExportSummaryPDF failed: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		t.Error("Export does not start with a PDF header")
	}
}
