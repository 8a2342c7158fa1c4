package dispatch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/ternarybob/respondo/internal/services/intel"
	"github.com/ternarybob/respondo/internal/services/knowledge"
	"github.com/ternarybob/respondo/internal/services/leads"
	"github.com/ternarybob/respondo/internal/services/pdf"
	"github.com/ternarybob/respondo/internal/services/reply"
	"github.com/ternarybob/respondo/internal/services/transform"
	"github.com/ternarybob/respondo/internal/services/workflows"
	"github.com/ternarybob/respondo/internal/storage/badger"
)

// spyReplyService counts Generate calls so handoff short-circuits are
// observable.
type spyReplyService struct {
	inner         interfaces.ReplyService
	generateCalls int
}

func (s *spyReplyService) Generate(ctx context.Context, req *interfaces.ReplyRequest) (string, error) {
	s.generateCalls++
	return s.inner.Generate(ctx, req)
}

func (s *spyReplyService) Summarize(ctx context.Context, history []*models.Message) (string, error) {
	return s.inner.Summarize(ctx, history)
}

func (s *spyReplyService) SuggestReplies(ctx context.Context, history []*models.Message) ([]string, error) {
	return s.inner.SuggestReplies(ctx, history)
}

func newTestDispatcher(t *testing.T) (*Service, interfaces.StorageManager, *spyReplyService, interfaces.WorkflowService) {
	t.Helper()
	logger := arbor.NewLogger()

	storage, err := badger.NewManager(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	})
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	cfg := common.NewDefaultConfig()
	knowledgeSvc := knowledge.NewService(
		storage.KnowledgeStorage(),
		transform.NewService(logger),
		pdf.NewExtractor(logger),
		&cfg.Knowledge,
		logger,
	)
	intentSvc := intel.NewService(storage.KVStorage(), logger)
	replySpy := &spyReplyService{inner: reply.NewService(nil, &cfg.Bot, logger)}
	leadSvc := leads.NewService(storage.LeadStorage(), nil, storage.KVStorage(), nil, &cfg.Forwarding, logger)
	workflowSvc := workflows.NewService(storage.WorkflowStorage(), logger)

	svc := NewService(storage, knowledgeSvc, intentSvc, replySpy, leadSvc, workflowSvc, &cfg.Bot, logger)
	return svc, storage, replySpy, workflowSvc
}

func TestHandleIncoming_ReusesOpenConversation(t *testing.T) {
	svc, storage, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	first, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-1", "hello there")
	if err != nil {
		t.Fatalf("First message failed: %v", err)
	}
	second, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-1", "hello there")
	if err != nil {
		t.Fatalf("Second message failed: %v", err)
	}

	if first.Conversation.ID != second.Conversation.ID {
		t.Errorf("Expected open conversation reuse, got %s then %s",
			first.Conversation.ID, second.Conversation.ID)
	}
	if first.UserMessage.ID == second.UserMessage.ID {
		t.Error("Expected two distinct persisted message records")
	}

	messages, err := storage.MessageStorage().GetRecentMessages(ctx, first.Conversation.ID, 10)
	if err != nil {
		t.Fatalf("GetRecentMessages failed: %v", err)
	}
	// Two user messages and two bot replies
	if len(messages) != 4 {
		t.Errorf("Expected 4 persisted messages, got %d", len(messages))
	}
}

func TestHandleIncoming_EchoReplyWithIntent(t *testing.T) {
	svc, _, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	result, err := svc.HandleIncoming(ctx, models.PlatformTelegram, "555", "I want a refund")
	if err != nil {
		t.Fatalf("HandleIncoming failed: %v", err)
	}

	if result.Intent.Intent != "refund" || result.Intent.Confidence != 0.55 {
		t.Errorf("Expected refund intent at 0.55, got %+v", result.Intent)
	}
	if result.Reply != "Echo from telegram: I want a refund\nContext: " {
		t.Errorf("Unexpected echo reply: %q", result.Reply)
	}
	if result.UserMessage.Intent != "refund" {
		t.Errorf("Expected intent stored on user message, got %q", result.UserMessage.Intent)
	}
}

func TestHandleIncoming_HandoffShortCircuit(t *testing.T) {
	svc, storage, replySpy, _ := newTestDispatcher(t)
	ctx := context.Background()

	first, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-2", "hello")
	if err != nil {
		t.Fatalf("First message failed: %v", err)
	}
	if replySpy.generateCalls != 1 {
		t.Fatalf("Expected one generator call before handoff, got %d", replySpy.generateCalls)
	}

	conversation := first.Conversation
	conversation.HandoffEnabled = true
	if err := storage.ConversationStorage().SaveConversation(ctx, conversation); err != nil {
		t.Fatalf("Failed to enable handoff: %v", err)
	}

	result, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-2", "anyone there?")
	if err != nil {
		t.Fatalf("Handoff message failed: %v", err)
	}

	if !result.Handoff {
		t.Error("Expected handoff flag on result")
	}
	if result.Reply != "Thanks for reaching out. A human agent will respond shortly." {
		t.Errorf("Expected fixed handoff reply, got %q", result.Reply)
	}
	if replySpy.generateCalls != 1 {
		t.Errorf("Expected generator to be skipped during handoff, got %d calls", replySpy.generateCalls)
	}
}

func TestHandleIncoming_WorkflowOverride(t *testing.T) {
	svc, _, _, workflowSvc := newTestDispatcher(t)
	ctx := context.Background()

	if _, err := workflowSvc.CreateRule(ctx, "urgent", []string{"urgent"}, "auto_reply:Calling you now"); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	result, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-3", "this is urgent!!")
	if err != nil {
		t.Fatalf("HandleIncoming failed: %v", err)
	}
	if result.Reply != "Calling you now" {
		t.Errorf("Expected workflow override, got %q", result.Reply)
	}
	if result.BotMessage.Content != "Calling you now" {
		t.Errorf("Expected override persisted as bot message, got %q", result.BotMessage.Content)
	}
}

func TestHandleIncoming_IntentActionPromotion(t *testing.T) {
	svc, _, _, workflowSvc := newTestDispatcher(t)
	ctx := context.Background()

	// Without a promoting rule the canned action stays metadata.
	result, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-5", "I want a refund")
	if err != nil {
		t.Fatalf("HandleIncoming failed: %v", err)
	}
	if result.ActionReply == "" {
		t.Error("Expected a canned action reply for the refund intent")
	}
	if result.Reply == result.ActionReply {
		t.Error("Expected the generated reply without a promoting rule")
	}

	if _, err := workflowSvc.CreateRule(ctx, "refund-action", []string{"refund"}, models.IntentActionDirective); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	promoted, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-5", "I want a refund")
	if err != nil {
		t.Fatalf("HandleIncoming failed: %v", err)
	}
	if promoted.Reply != promoted.ActionReply {
		t.Errorf("Expected the canned action as the reply, got %q", promoted.Reply)
	}
}

func TestHandleIncoming_LeadCapture(t *testing.T) {
	svc, storage, _, _ := newTestDispatcher(t)
	ctx := context.Background()

	result, err := svc.HandleIncoming(ctx, models.PlatformWeb, "visitor-4",
		"you can email me at jane@example.com")
	if err != nil {
		t.Fatalf("HandleIncoming failed: %v", err)
	}

	if result.Lead == nil {
		t.Fatal("Expected a captured lead")
	}
	if models.StringOrEmpty(result.Lead.Email) != "jane@example.com" {
		t.Errorf("Expected lead email, got %+v", result.Lead)
	}

	count, err := storage.LeadStorage().CountLeads(ctx)
	if err != nil {
		t.Fatalf("CountLeads failed: %v", err)
	}
	if count != 1 {
		t.Errorf("Expected 1 persisted lead, got %d", count)
	}
}

func TestHandleIncoming_UnknownPlatform(t *testing.T) {
	svc, _, _, _ := newTestDispatcher(t)

	if _, err := svc.HandleIncoming(context.Background(), "carrierpigeon", "x", "hi"); err == nil {
		t.Error("Expected error for unknown platform")
	}
}
