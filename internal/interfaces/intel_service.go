package interfaces

import (
	"context"
)

// IntentResult is a classified intent with its confidence score.
type IntentResult struct {
	Intent     string  `json:"intent"`
	Confidence float64 `json:"confidence"`
}

// Entities are the structured snippets pulled from a message body.
type Entities struct {
	Dates     []string `json:"dates,omitempty"`
	Amounts   []string `json:"amounts,omitempty"`
	OrderRefs []string `json:"order_refs,omitempty"`
}

// IntentService classifies inbound messages and extracts lightweight
// entities for downstream actions.
type IntentService interface {
	// Classify returns the best-matching intent and confidence for a message.
	// Messages with no intent keywords classify as "general" at 0.35.
	Classify(message string) IntentResult

	// ExtractEntities pulls dates, money amounts and order references.
	ExtractEntities(message string) Entities

	// IntentAction returns a deterministic canned reply for intents that
	// have one (booking, order_status, refund, pricing). Empty string when
	// the intent has no action.
	IntentAction(ctx context.Context, intent IntentResult, message string) string
}
