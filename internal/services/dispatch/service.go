package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// Service is the conversation state machine. It owns the full inbound
// pipeline: user resolution, conversation reuse, handoff short-circuit,
// reply generation, workflow overrides, lead capture and forwarding.
type Service struct {
	storage   interfaces.StorageManager
	knowledge interfaces.KnowledgeService
	intents   interfaces.IntentService
	replies   interfaces.ReplyService
	leads     interfaces.LeadService
	workflows interfaces.WorkflowService
	bot       *common.BotConfig
	logger    arbor.ILogger
}

var _ interfaces.DispatchService = (*Service)(nil)

// NewService creates a new dispatch service
func NewService(
	storage interfaces.StorageManager,
	knowledge interfaces.KnowledgeService,
	intents interfaces.IntentService,
	replies interfaces.ReplyService,
	leads interfaces.LeadService,
	workflows interfaces.WorkflowService,
	bot *common.BotConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:   storage,
		knowledge: knowledge,
		intents:   intents,
		replies:   replies,
		leads:     leads,
		workflows: workflows,
		bot:       bot,
		logger:    logger,
	}
}

// HandleIncoming runs one inbound message through the pipeline and returns
// the final reply for the channel to transmit.
func (s *Service) HandleIncoming(ctx context.Context, platform, externalID, text string) (*interfaces.DispatchResult, error) {
	if !models.IsKnownPlatform(platform) {
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
	if text == "" {
		return nil, fmt.Errorf("message text cannot be empty")
	}

	user, err := s.resolveUser(ctx, platform, externalID)
	if err != nil {
		return nil, err
	}

	conversation, err := s.resolveConversation(ctx, user.ID, platform)
	if err != nil {
		return nil, err
	}

	userMessage := &models.Message{
		ID:             common.NewMessageID(),
		ConversationID: conversation.ID,
		Platform:       platform,
		Sender:         models.SenderUser,
		Content:        text,
		CreatedAt:      time.Now(),
	}

	result := &interfaces.DispatchResult{
		Conversation: conversation,
		UserMessage:  userMessage,
	}

	// A handed-off conversation answers with the fixed message and never
	// reaches the classifier, extractor or generator.
	if conversation.HandoffEnabled {
		if err := s.storage.MessageStorage().SaveMessage(ctx, userMessage); err != nil {
			return nil, fmt.Errorf("failed to persist inbound message: %w", err)
		}
		result.Handoff = true
		result.Reply = s.bot.HandoffMessage
		botMessage, err := s.persistBotReply(ctx, conversation, platform, result.Reply)
		if err != nil {
			return nil, err
		}
		result.BotMessage = botMessage
		s.audit(ctx, conversation, userMessage, "handoff")
		return result, nil
	}

	window := s.bot.HistoryWindow
	if window <= 0 {
		window = 10
	}
	// Loaded before the inbound message is persisted so the generator sees
	// it exactly once, appended as the current turn.
	history, err := s.storage.MessageStorage().GetRecentMessages(ctx, conversation.ID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	intent := s.intents.Classify(text)
	userMessage.Intent = intent.Intent
	if err := s.storage.MessageStorage().SaveMessage(ctx, userMessage); err != nil {
		return nil, fmt.Errorf("failed to persist inbound message: %w", err)
	}
	result.Intent = intent
	result.Entities = s.intents.ExtractEntities(text)

	knowledgeContext, err := s.knowledge.BuildContext(ctx, text)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Knowledge retrieval failed, continuing without context")
		knowledgeContext = ""
	}

	generated, err := s.replies.Generate(ctx, &interfaces.ReplyRequest{
		Platform: platform,
		Message:  text,
		Context:  knowledgeContext,
		History:  history,
		Intent:   intent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate reply: %w", err)
	}

	// Canned intent actions never replace the reply on their own; they ride
	// along as metadata unless a matching rule promotes them.
	result.ActionReply = s.intents.IntentAction(ctx, intent, text)

	finalReply, rule, err := s.workflows.ApplyRules(ctx, text, generated)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Workflow evaluation failed, keeping generated reply")
		finalReply = generated
	}
	if rule != nil {
		if rule.Action == models.IntentActionDirective && result.ActionReply != "" {
			finalReply = result.ActionReply
		}
		s.logger.Info().
			Str("rule_id", rule.ID).
			Str("conversation_id", conversation.ID).
			Msg("Workflow rule applied")
	}

	result.Reply = finalReply
	botMessage, err := s.persistBotReply(ctx, conversation, platform, finalReply)
	if err != nil {
		return nil, err
	}
	result.BotMessage = botMessage

	// Lead capture and forwarding are best-effort; the reply is already
	// committed and must reach the user regardless.
	fields := s.leads.Extract(ctx, text)
	if !fields.IsEmpty() {
		lead, err := s.leads.Capture(ctx, fields, platform, conversation.ID)
		if err != nil {
			s.logger.Warn().Err(err).Msg("Lead capture failed")
		} else if lead != nil {
			result.Lead = lead
			s.auditLead(ctx, lead)
			// Forwarding must survive the request context, so it runs
			// detached with its own timeout inside Forward.
			common.SafeGo(s.logger, "forwardLead", func() {
				s.leads.Forward(context.Background(), lead)
			})
		}
	}

	s.audit(ctx, conversation, userMessage, "replied")
	return result, nil
}

// resolveUser finds or creates the user record keyed by (platform, external_id).
func (s *Service) resolveUser(ctx context.Context, platform, externalID string) (*models.User, error) {
	user, err := s.storage.UserStorage().GetUserByExternalID(ctx, platform, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve user: %w", err)
	}
	if user != nil {
		return user, nil
	}

	user = &models.User{
		ID:         common.NewUserID(),
		Platform:   platform,
		ExternalID: externalID,
	}
	if err := s.storage.UserStorage().SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.Debug().
		Str("user_id", user.ID).
		Str("platform", platform).
		Msg("Created user record")
	return user, nil
}

// resolveConversation reuses the most recent open conversation for the
// (user, platform) pair or creates one. Two racing requests may both
// create a conversation; the next message converges on the most recent
// open one, so duplicates age out rather than accumulate.
func (s *Service) resolveConversation(ctx context.Context, userID, platform string) (*models.Conversation, error) {
	conversation, err := s.storage.ConversationStorage().GetOpenConversation(ctx, userID, platform)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve conversation: %w", err)
	}
	if conversation != nil {
		return conversation, nil
	}

	conversation = &models.Conversation{
		ID:       common.NewConversationID(),
		UserID:   userID,
		Platform: platform,
		Status:   models.ConversationOpen,
	}
	if err := s.storage.ConversationStorage().SaveConversation(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to create conversation: %w", err)
	}
	return conversation, nil
}

func (s *Service) persistBotReply(ctx context.Context, conversation *models.Conversation, platform, reply string) (*models.Message, error) {
	botMessage := &models.Message{
		ID:             common.NewMessageID(),
		ConversationID: conversation.ID,
		Platform:       platform,
		Sender:         models.SenderBot,
		Content:        reply,
		CreatedAt:      time.Now(),
	}
	if err := s.storage.MessageStorage().SaveMessage(ctx, botMessage); err != nil {
		return nil, fmt.Errorf("failed to persist bot reply: %w", err)
	}

	conversation.UpdatedAt = time.Now()
	if err := s.storage.ConversationStorage().SaveConversation(ctx, conversation); err != nil {
		s.logger.Warn().Err(err).Str("conversation_id", conversation.ID).Msg("Failed to bump conversation timestamp")
	}
	return botMessage, nil
}

func (s *Service) audit(ctx context.Context, conversation *models.Conversation, message *models.Message, outcome string) {
	entry := &models.AuditEntry{
		ID:     common.NewAuditID(),
		Action: models.AuditMessageHandled,
		Detail: map[string]string{
			"conversation_id": conversation.ID,
			"message_id":      message.ID,
			"platform":        message.Platform,
			"outcome":         outcome,
		},
	}
	if err := s.storage.AuditStorage().Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to append audit entry")
	}
}

func (s *Service) auditLead(ctx context.Context, lead *models.Lead) {
	entry := &models.AuditEntry{
		ID:     common.NewAuditID(),
		Action: models.AuditLeadCaptured,
		Detail: map[string]string{
			"lead_id":         lead.ID,
			"platform":        lead.Platform,
			"conversation_id": lead.ConversationID,
		},
	}
	if err := s.storage.AuditStorage().Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to append audit entry")
	}
}
