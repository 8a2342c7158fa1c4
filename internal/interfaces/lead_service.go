package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// LeadService extracts, persists and forwards sales leads.
type LeadService interface {
	// Extract pulls contact fields from a message, via the LLM when one is
	// configured and by regex heuristics otherwise. Extraction never fails;
	// a message with nothing to capture yields all-null fields.
	Extract(ctx context.Context, message string) models.LeadFields

	// Capture persists a lead when the extracted fields are non-empty and
	// returns it; returns nil when there is nothing worth saving.
	Capture(ctx context.Context, fields models.LeadFields, platform, conversationID string) (*models.Lead, error)

	// Forward pushes a captured lead to the configured CRM and sheet
	// webhooks. Unconfigured targets are skipped; failures are logged and
	// never returned to the dispatcher.
	Forward(ctx context.Context, lead *models.Lead)
}
