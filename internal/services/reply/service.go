package reply

import (
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// Service implements interfaces.ReplyService. With a configured LLM it
// generates persona-driven replies over the retrieved knowledge context;
// without one it echoes deterministically so the pipeline stays testable.
type Service struct {
	llm    interfaces.LLMService
	bot    *common.BotConfig
	logger arbor.ILogger
}

var _ interfaces.ReplyService = (*Service)(nil)

// NewService creates a new reply service
func NewService(llm interfaces.LLMService, bot *common.BotConfig, logger arbor.ILogger) *Service {
	return &Service{
		llm:    llm,
		bot:    bot,
		logger: logger,
	}
}

// Generate produces the bot reply for an inbound message.
func (s *Service) Generate(ctx context.Context, req *interfaces.ReplyRequest) (string, error) {
	if s.llm == nil || !s.llm.IsConfigured(ctx) {
		return fmt.Sprintf("Echo from %s: %s\nContext: %s", req.Platform, req.Message, req.Context), nil
	}

	messages := make([]interfaces.Message, 0, len(req.History)+2)
	messages = append(messages, interfaces.Message{
		Role:    "system",
		Content: s.systemPrompt(req),
	})
	for _, turn := range req.History {
		role := "user"
		if turn.Sender == models.SenderBot || turn.Sender == models.SenderAgent {
			role = "assistant"
		}
		messages = append(messages, interfaces.Message{Role: role, Content: turn.Content})
	}
	messages = append(messages, interfaces.Message{Role: "user", Content: req.Message})

	resp, err := s.llm.GenerateContent(ctx, &interfaces.ContentRequest{
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("reply generation failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// systemPrompt combines the persona with a channel/context note.
func (s *Service) systemPrompt(req *interfaces.ReplyRequest) string {
	var prompt strings.Builder

	persona := s.bot.Persona
	if persona == "" {
		persona = fmt.Sprintf("You are %s, a helpful customer assistant. Answer briefly and accurately.", s.bot.Name)
	}
	prompt.WriteString(persona)

	prompt.WriteString(fmt.Sprintf("\n\nThe user is messaging on %s. Keep replies short enough for chat.", req.Platform))
	if req.Intent.Intent != "" && req.Intent.Intent != "general" {
		prompt.WriteString(fmt.Sprintf("\nDetected intent: %s.", req.Intent.Intent))
	}
	if req.Context != "" {
		prompt.WriteString("\n\nUse the following business knowledge when relevant:\n")
		prompt.WriteString(req.Context)
	}
	return prompt.String()
}

// Summarize produces a short conversation summary for the admin inbox.
func (s *Service) Summarize(ctx context.Context, history []*models.Message) (string, error) {
	if s.llm == nil || !s.llm.IsConfigured(ctx) || len(history) == 0 {
		return "", nil
	}

	resp, err := s.llm.GenerateContent(ctx, &interfaces.ContentRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: renderTranscript(history)},
		},
		SystemInstruction: "Summarize this customer conversation in at most two sentences. Mention any unresolved request.",
		MaxTokens:         200,
	})
	if err != nil {
		return "", fmt.Errorf("summarization failed: %w", err)
	}
	return strings.TrimSpace(resp.Text), nil
}

// SuggestReplies proposes up to three agent replies for a handed-off
// conversation.
func (s *Service) SuggestReplies(ctx context.Context, history []*models.Message) ([]string, error) {
	if s.llm == nil || !s.llm.IsConfigured(ctx) || len(history) == 0 {
		return nil, nil
	}

	resp, err := s.llm.GenerateContent(ctx, &interfaces.ContentRequest{
		Messages: []interfaces.Message{
			{Role: "user", Content: renderTranscript(history)},
		},
		SystemInstruction: "Propose up to three short replies a human support agent could send next. One per line, no numbering.",
		MaxTokens:         300,
	})
	if err != nil {
		return nil, fmt.Errorf("reply suggestion failed: %w", err)
	}

	var suggestions []string
	for _, line := range strings.Split(resp.Text, "\n") {
		line = strings.TrimSpace(strings.TrimLeft(line, "-*0123456789. "))
		if line == "" {
			continue
		}
		suggestions = append(suggestions, line)
		if len(suggestions) == 3 {
			break
		}
	}
	return suggestions, nil
}

func renderTranscript(history []*models.Message) string {
	var transcript strings.Builder
	for _, turn := range history {
		transcript.WriteString(turn.Sender)
		transcript.WriteString(": ")
		transcript.WriteString(turn.Content)
		transcript.WriteString("\n")
	}
	return transcript.String()
}
