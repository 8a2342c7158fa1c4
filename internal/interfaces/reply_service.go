package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// ReplyRequest carries everything the generator needs to produce a reply.
type ReplyRequest struct {
	Platform string
	Message  string
	Context  string            // Retrieved knowledge context, may be empty
	History  []*models.Message // Prior conversation turns, oldest first
	Intent   IntentResult
}

// ReplyService turns an inbound message into a bot reply. With a configured
// LLM the reply is generated; otherwise it is a deterministic echo carrying
// the retrieved context.
type ReplyService interface {
	Generate(ctx context.Context, req *ReplyRequest) (string, error)

	// Summarize produces a short summary of a conversation for the admin
	// inbox. Returns "" when no LLM is configured.
	Summarize(ctx context.Context, history []*models.Message) (string, error)

	// SuggestReplies proposes up to three agent replies for a handed-off
	// conversation. Returns nil when no LLM is configured.
	SuggestReplies(ctx context.Context, history []*models.Message) ([]string, error)
}
