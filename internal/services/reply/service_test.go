package reply

import (
	"context"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
)

func TestGenerate_EchoFallback(t *testing.T) {
	svc := NewService(nil, &common.BotConfig{Name: "Respondo"}, arbor.NewLogger())

	got, err := svc.Generate(context.Background(), &interfaces.ReplyRequest{
		Platform: "telegram",
		Message:  "what are your prices?",
		Context:  "Plans start at $10 per month.",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	want := "Echo from telegram: what are your prices?\nContext: Plans start at $10 per month."
	if got != want {
		t.Errorf("Expected %q, got %q", want, got)
	}
}

func TestGenerate_EchoFallbackEmptyContext(t *testing.T) {
	svc := NewService(nil, &common.BotConfig{Name: "Respondo"}, arbor.NewLogger())

	got, err := svc.Generate(context.Background(), &interfaces.ReplyRequest{
		Platform: "web",
		Message:  "hello",
	})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	if got != "Echo from web: hello\nContext: " {
		t.Errorf("Unexpected echo reply: %q", got)
	}
}

func TestSummarize_NoLLMReturnsEmpty(t *testing.T) {
	svc := NewService(nil, &common.BotConfig{Name: "Respondo"}, arbor.NewLogger())

	summary, err := svc.Summarize(context.Background(), nil)
	if err != nil {
		t.Fatalf("Summarize failed: %v", err)
	}
	if summary != "" {
		t.Errorf("Expected empty summary without an LLM, got %q", summary)
	}
}
