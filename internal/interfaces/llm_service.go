package interfaces

import (
	"context"
)

// Message represents a single message in a chat conversation
type Message struct {
	// Role identifies the message sender: "user", "assistant", or "system"
	Role string

	// Content contains the text content of the message
	Content string
}

// ContentRequest represents a provider-agnostic content generation request
type ContentRequest struct {
	Messages          []Message
	Model             string
	Temperature       float32
	MaxTokens         int
	SystemInstruction string
	// ForceJSON asks the provider for a strict JSON object response where
	// supported (Gemini). Other providers rely on prompt discipline.
	ForceJSON bool
}

// ContentResponse represents a provider-agnostic content generation response
type ContentResponse struct {
	Text     string
	Provider string
	Model    string
}

// LLMService defines provider-agnostic content generation. Implementations
// route to Claude or Gemini based on the model string, or report themselves
// unconfigured so callers can degrade to deterministic behavior.
type LLMService interface {
	// GenerateContent generates a completion for the given request.
	GenerateContent(ctx context.Context, request *ContentRequest) (*ContentResponse, error)

	// IsConfigured reports whether a provider with a usable API key is
	// available. Callers must not invoke GenerateContent when false.
	IsConfigured(ctx context.Context) bool

	// Close releases provider clients.
	Close() error
}
