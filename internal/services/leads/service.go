package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/httpclient"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/ternarybob/respondo/internal/services/intel"
	"github.com/ternarybob/respondo/internal/services/mailer"
)

const extractionPrompt = `Extract contact details from the user message. ` +
	`Respond with a single JSON object with exactly these keys: ` +
	`"name", "phone", "email", "intent". ` +
	`Use an empty string for any field not present in the message. ` +
	`Do not include any other text.`

// Service implements interfaces.LeadService.
type Service struct {
	storage    interfaces.LeadStorage
	llm        interfaces.LLMService
	kvStorage  interfaces.KeyValueStorage
	mailer     *mailer.Service
	forwarding *common.ForwardingConfig
	logger     arbor.ILogger
}

var _ interfaces.LeadService = (*Service)(nil)

// NewService creates a new lead service
func NewService(
	storage interfaces.LeadStorage,
	llm interfaces.LLMService,
	kvStorage interfaces.KeyValueStorage,
	mail *mailer.Service,
	forwarding *common.ForwardingConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:    storage,
		llm:        llm,
		kvStorage:  kvStorage,
		mailer:     mail,
		forwarding: forwarding,
		logger:     logger,
	}
}

// Extract pulls lead fields from a message. With a configured LLM it runs a
// strict-JSON extraction call; otherwise (or when the call fails) it falls
// back to regex heuristics. Extraction never returns an error.
func (s *Service) Extract(ctx context.Context, message string) models.LeadFields {
	if s.llm != nil && s.llm.IsConfigured(ctx) {
		resp, err := s.llm.GenerateContent(ctx, &interfaces.ContentRequest{
			Messages:          []interfaces.Message{{Role: "user", Content: message}},
			SystemInstruction: extractionPrompt,
			ForceJSON:         true,
			MaxTokens:         256,
		})
		if err != nil {
			s.logger.Warn().Err(err).Msg("LLM lead extraction failed, using heuristics")
		} else {
			fields := NormalizeLLMOutput(resp.Text)
			if !fields.IsEmpty() {
				return fields
			}
			// Empty LLM result still lets the heuristics run; the message
			// may carry a literal email or phone the model dropped.
		}
	}

	fields := ExtractHeuristic(message)
	if fields.Intent == nil {
		if result := intel.Classify(message); result.Intent != intel.IntentGeneral && result.Confidence >= 0.5 {
			fields.Intent = &result.Intent
		}
	}
	return fields
}

// Capture persists a lead when at least one field is populated.
func (s *Service) Capture(ctx context.Context, fields models.LeadFields, platform, conversationID string) (*models.Lead, error) {
	if fields.IsEmpty() {
		return nil, nil
	}

	lead := &models.Lead{
		ID:             common.NewLeadID(),
		Name:           fields.Name,
		Phone:          fields.Phone,
		Email:          fields.Email,
		Intent:         fields.Intent,
		Platform:       platform,
		ConversationID: conversationID,
		CreatedAt:      time.Now(),
	}

	if err := s.storage.SaveLead(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to persist lead: %w", err)
	}

	s.logger.Info().
		Str("lead_id", lead.ID).
		Str("platform", platform).
		Msg("Captured lead")

	return lead, nil
}

// Forward pushes a lead to the CRM and sheet webhooks and optionally mails
// a notification. All targets are best-effort: unconfigured targets are
// skipped and failures are logged, never propagated.
func (s *Service) Forward(ctx context.Context, lead *models.Lead) {
	if lead == nil {
		return
	}

	payload := map[string]string{
		"id":              lead.ID,
		"name":            models.StringOrEmpty(lead.Name),
		"phone":           models.StringOrEmpty(lead.Phone),
		"email":           models.StringOrEmpty(lead.Email),
		"intent":          models.StringOrEmpty(lead.Intent),
		"platform":        lead.Platform,
		"conversation_id": lead.ConversationID,
		"created_at":      lead.CreatedAt.Format(time.RFC3339),
	}

	client := httpclient.NewDefaultHTTPClient(s.forwarding.Timeout)

	for _, target := range []struct {
		key      string
		fallback string
		label    string
	}{
		{"crm_webhook_url", s.forwarding.CRMWebhookURL, "crm"},
		{"sheet_webhook_url", s.forwarding.SheetWebhookURL, "sheet"},
	} {
		url, err := common.ResolveSetting(ctx, s.kvStorage, target.key, target.fallback)
		if err != nil || url == "" {
			continue
		}
		if err := httpclient.PostJSON(ctx, client, url, payload); err != nil {
			s.logger.Warn().
				Err(err).
				Str("target", target.label).
				Str("lead_id", lead.ID).
				Msg("Lead forwarding failed")
		} else {
			s.logger.Debug().
				Str("target", target.label).
				Str("lead_id", lead.ID).
				Msg("Lead forwarded")
		}
	}

	s.notify(ctx, lead)
}

// notify emails the lead summary when a recipient and SMTP credentials are
// configured.
func (s *Service) notify(ctx context.Context, lead *models.Lead) {
	to := s.notifyRecipient(ctx)
	if to == "" || s.mailer == nil || !s.mailer.IsConfigured(ctx) {
		return
	}

	body := fmt.Sprintf(
		"New lead captured on %s\n\nName: %s\nPhone: %s\nEmail: %s\nIntent: %s\nConversation: %s\n",
		lead.Platform,
		models.StringOrEmpty(lead.Name),
		models.StringOrEmpty(lead.Phone),
		models.StringOrEmpty(lead.Email),
		models.StringOrEmpty(lead.Intent),
		lead.ConversationID,
	)
	if err := s.mailer.SendEmail(ctx, to, "New lead captured", body); err != nil {
		s.logger.Warn().Err(err).Str("lead_id", lead.ID).Msg("Lead notification email failed")
	}
}

// notifyRecipient resolves the notification address, preferring the runtime
// KV value over the TOML default.
func (s *Service) notifyRecipient(ctx context.Context) string {
	to, err := common.ResolveSetting(ctx, s.kvStorage, "lead_notify_to", s.forwarding.LeadNotifyTo)
	if err != nil {
		return s.forwarding.LeadNotifyTo
	}
	return to
}
