package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// DispatchResult reports what the dispatcher did with one inbound message.
type DispatchResult struct {
	Reply        string               `json:"reply"`
	Conversation *models.Conversation `json:"conversation"`
	UserMessage  *models.Message      `json:"user_message"`
	BotMessage   *models.Message      `json:"bot_message"`
	Intent       IntentResult         `json:"intent"`
	Entities     Entities             `json:"entities"`
	ActionReply  string               `json:"action_reply,omitempty"`
	Lead         *models.Lead         `json:"lead,omitempty"`
	Handoff      bool                 `json:"handoff"`
}

// DispatchService is the conversation state machine. Every channel webhook
// funnels inbound text through HandleIncoming and sends back the reply.
type DispatchService interface {
	HandleIncoming(ctx context.Context, platform, externalID, text string) (*DispatchResult, error)
}
