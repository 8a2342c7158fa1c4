package badger

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func newTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	options := badgerhold.DefaultOptions
	options.Dir = t.TempDir()
	options.ValueDir = options.Dir
	options.Logger = nil

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatalf("Failed to open test store: %v", err)
	}
	db := &BadgerDB{store: store}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestUserStorage_GetUserByExternalID(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewUserStorage(db, logger)
	ctx := context.Background()

	user := &models.User{
		ID:         common.NewUserID(),
		Platform:   models.PlatformTelegram,
		ExternalID: "555001",
	}
	if err := storage.SaveUser(ctx, user); err != nil {
		t.Fatalf("Failed to save user: %v", err)
	}

	found, err := storage.GetUserByExternalID(ctx, models.PlatformTelegram, "555001")
	if err != nil {
		t.Fatalf("Failed to get user by external ID: %v", err)
	}
	if found == nil || found.ID != user.ID {
		t.Errorf("Expected user %s, got %+v", user.ID, found)
	}

	missing, err := storage.GetUserByExternalID(ctx, models.PlatformWhatsApp, "555001")
	if err != nil {
		t.Fatalf("Unexpected error for missing user: %v", err)
	}
	if missing != nil {
		t.Errorf("Expected nil for unknown external ID, got %+v", missing)
	}
}

func TestConversationStorage_GetOpenConversation(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewConversationStorage(db, logger)
	ctx := context.Background()

	userID := common.NewUserID()

	closed := &models.Conversation{
		ID:       common.NewConversationID(),
		UserID:   userID,
		Platform: models.PlatformWeb,
		Status:   models.ConversationClosed,
	}
	open := &models.Conversation{
		ID:       common.NewConversationID(),
		UserID:   userID,
		Platform: models.PlatformWeb,
		Status:   models.ConversationOpen,
	}
	for _, conv := range []*models.Conversation{closed, open} {
		if err := storage.SaveConversation(ctx, conv); err != nil {
			t.Fatalf("Failed to save conversation: %v", err)
		}
	}

	found, err := storage.GetOpenConversation(ctx, userID, models.PlatformWeb)
	if err != nil {
		t.Fatalf("Failed to get open conversation: %v", err)
	}
	if found == nil || found.ID != open.ID {
		t.Errorf("Expected open conversation %s, got %+v", open.ID, found)
	}

	none, err := storage.GetOpenConversation(ctx, userID, models.PlatformTelegram)
	if err != nil {
		t.Fatalf("Unexpected error for missing conversation: %v", err)
	}
	if none != nil {
		t.Errorf("Expected nil when no open conversation exists, got %+v", none)
	}
}

func TestMessageStorage_GetRecentMessages(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewMessageStorage(db, logger)
	ctx := context.Background()

	convID := common.NewConversationID()
	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		msg := &models.Message{
			ID:             common.NewMessageID(),
			ConversationID: convID,
			Platform:       models.PlatformWeb,
			Sender:         models.SenderUser,
			Content:        fmt.Sprintf("message %d", i),
			CreatedAt:      base.Add(time.Duration(i) * time.Minute),
		}
		if err := storage.SaveMessage(ctx, msg); err != nil {
			t.Fatalf("Failed to save message: %v", err)
		}
	}

	recent, err := storage.GetRecentMessages(ctx, convID, 3)
	if err != nil {
		t.Fatalf("Failed to get recent messages: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(recent))
	}
	if recent[0].Content != "message 2" || recent[2].Content != "message 4" {
		t.Errorf("Expected chronological order ending at newest, got %q..%q",
			recent[0].Content, recent[2].Content)
	}
}

func TestKnowledgeStorage_DeleteDocumentRemovesChunks(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewKnowledgeStorage(db, logger)
	ctx := context.Background()

	doc := &models.KnowledgeDocument{
		ID:         common.NewDocumentID(),
		Title:      "Pricing FAQ",
		Content:    "Plans start at $10 per month.",
		SourceType: models.KnowledgeSourceText,
		ChunkCount: 2,
	}
	if err := storage.SaveDocument(ctx, doc); err != nil {
		t.Fatalf("Failed to save document: %v", err)
	}
	chunks := []*models.KnowledgeChunk{
		{ID: doc.ID + "#0", DocID: doc.ID, Seq: 0, Text: "Plans start"},
		{ID: doc.ID + "#1", DocID: doc.ID, Seq: 1, Text: "at $10 per month."},
	}
	if err := storage.SaveChunks(ctx, chunks); err != nil {
		t.Fatalf("Failed to save chunks: %v", err)
	}

	if err := storage.DeleteDocument(ctx, doc.ID); err != nil {
		t.Fatalf("Failed to delete document: %v", err)
	}
	remaining, err := storage.GetChunks(ctx, doc.ID)
	if err != nil {
		t.Fatalf("Failed to get chunks: %v", err)
	}
	if len(remaining) != 0 {
		t.Errorf("Expected chunks to be removed with document, got %d", len(remaining))
	}

	// Deleting again is not an error
	if err := storage.DeleteDocument(ctx, doc.ID); err != nil {
		t.Errorf("Expected idempotent delete, got %v", err)
	}
}

func TestWorkflowStorage_ListRulesByPosition(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewWorkflowStorage(db, logger)
	ctx := context.Background()

	for i, name := range []string{"greeting", "urgent", "pricing"} {
		rule := &models.WorkflowRule{
			ID:       common.NewRuleID(),
			Name:     name,
			Keywords: []string{name},
			Action:   "auto_reply:" + name,
			Enabled:  true,
			Position: 2 - i,
		}
		if err := storage.SaveRule(ctx, rule); err != nil {
			t.Fatalf("Failed to save rule: %v", err)
		}
	}

	rules, err := storage.ListRules(ctx)
	if err != nil {
		t.Fatalf("Failed to list rules: %v", err)
	}
	if len(rules) != 3 {
		t.Fatalf("Expected 3 rules, got %d", len(rules))
	}
	if rules[0].Name != "pricing" || rules[2].Name != "greeting" {
		t.Errorf("Expected rules sorted by position, got %s..%s", rules[0].Name, rules[2].Name)
	}
}

func TestKVStorage_NormalizesKeys(t *testing.T) {
	db := newTestDB(t)
	logger := arbor.NewLogger()
	storage := NewKVStorage(db, logger)
	ctx := context.Background()

	if err := storage.Set(ctx, "Telegram_Bot_Token", "abc123", "bot credential"); err != nil {
		t.Fatalf("Failed to set value: %v", err)
	}
	value, err := storage.Get(ctx, "telegram_bot_token")
	if err != nil {
		t.Fatalf("Failed to get value: %v", err)
	}
	if value != "abc123" {
		t.Errorf("Expected abc123, got %q", value)
	}
}
