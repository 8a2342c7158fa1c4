package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"

	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

type fakeDispatcher struct {
	mu       sync.Mutex
	calls    []string
	platform string
	fail     bool
}

func (d *fakeDispatcher) HandleIncoming(ctx context.Context, platform, externalID, text string) (*interfaces.DispatchResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.fail {
		return nil, context.DeadlineExceeded
	}
	d.calls = append(d.calls, externalID+":"+text)
	d.platform = platform
	return &interfaces.DispatchResult{
		Reply:        "echo: " + text,
		Conversation: &models.Conversation{ID: "conv-1"},
		Intent:       interfaces.IntentResult{Intent: "general", Confidence: 0.35},
	}, nil
}

func (d *fakeDispatcher) callCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.calls)
}

type channelSenderStub struct {
	platform string
	sent     chan string
}

func (s *channelSenderStub) Platform() string { return s.platform }

func (s *channelSenderStub) Send(ctx context.Context, externalID, text string) error {
	s.sent <- externalID + ":" + text
	return nil
}

type stubRegistry struct {
	senders map[string]interfaces.ChannelSender
}

func (r *stubRegistry) SenderFor(platform string) interfaces.ChannelSender {
	return r.senders[platform]
}

func newTestWebhookHandler(dispatcher interfaces.DispatchService, registry interfaces.SenderRegistry) *WebhookHandler {
	channels := &common.ChannelsConfig{
		WhatsApp:  common.WhatsAppConfig{VerifyToken: "wa-verify"},
		Messenger: common.MessengerConfig{VerifyToken: "ms-verify"},
	}
	return NewWebhookHandler(dispatcher, registry, channels, arbor.NewLogger())
}

func TestVerificationEchoesChallenge(t *testing.T) {
	h := newTestWebhookHandler(&fakeDispatcher{}, &stubRegistry{})

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wa-verify&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.HandleWhatsApp(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())
}

func TestVerificationRejectsBadToken(t *testing.T) {
	h := newTestWebhookHandler(&fakeDispatcher{}, &stubRegistry{})

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.HandleWhatsApp(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestVerificationRejectsEmptyConfiguredToken(t *testing.T) {
	// An unconfigured token must never verify, even when both sides are empty
	h := NewWebhookHandler(&fakeDispatcher{}, &stubRegistry{}, &common.ChannelsConfig{}, arbor.NewLogger())

	req := httptest.NewRequest("GET", "/webhooks/whatsapp?hub.mode=subscribe&hub.verify_token=&hub.challenge=12345", nil)
	rec := httptest.NewRecorder()
	h.HandleWhatsApp(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWhatsAppDeliveryDispatchesAndReplies(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sender := &channelSenderStub{platform: models.PlatformWhatsApp, sent: make(chan string, 1)}
	registry := &stubRegistry{senders: map[string]interfaces.ChannelSender{models.PlatformWhatsApp: sender}}
	h := newTestWebhookHandler(dispatcher, registry)

	body := `{"entry":[{"changes":[{"value":{"messages":[{"from":"15551234","text":{"body":"hello"}}]}}]}]}`
	req := httptest.NewRequest("POST", "/webhooks/whatsapp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleWhatsApp(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PlatformWhatsApp, dispatcher.platform)

	select {
	case got := <-sender.sent:
		assert.Equal(t, "15551234:echo: hello", got)
	case <-time.After(2 * time.Second):
		t.Fatal("reply was never sent")
	}
}

func TestMessengerDeliveryUsesMessagingShape(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sender := &channelSenderStub{platform: models.PlatformMessenger, sent: make(chan string, 1)}
	registry := &stubRegistry{senders: map[string]interfaces.ChannelSender{models.PlatformMessenger: sender}}
	h := newTestWebhookHandler(dispatcher, registry)

	body := `{"entry":[{"messaging":[{"sender":{"id":"psid-9"},"message":{"text":"hi"}}]}]}`
	req := httptest.NewRequest("POST", "/webhooks/messenger", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleMessenger(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	select {
	case got := <-sender.sent:
		assert.Equal(t, "psid-9:echo: hi", got)
	case <-time.After(2 * time.Second):
		t.Fatal("reply was never sent")
	}
}

func TestNonTextEventsAreAckedAndIgnored(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestWebhookHandler(dispatcher, &stubRegistry{})

	// Status update with no messages array content
	body := `{"entry":[{"changes":[{"value":{}}]}]}`
	req := httptest.NewRequest("POST", "/webhooks/whatsapp", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleWhatsApp(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, dispatcher.callCount())
}

func TestTelegramDelivery(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	sender := &channelSenderStub{platform: models.PlatformTelegram, sent: make(chan string, 1)}
	registry := &stubRegistry{senders: map[string]interfaces.ChannelSender{models.PlatformTelegram: sender}}
	h := newTestWebhookHandler(dispatcher, registry)

	body := `{"message":{"chat":{"id":987654},"text":"order status please"}}`
	req := httptest.NewRequest("POST", "/webhooks/telegram", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleTelegram(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.PlatformTelegram, dispatcher.platform)

	select {
	case got := <-sender.sent:
		assert.Equal(t, "987654:echo: order status please", got)
	case <-time.After(2 * time.Second):
		t.Fatal("reply was never sent")
	}
}

func TestTelegramIgnoresNonTextUpdates(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	h := newTestWebhookHandler(dispatcher, &stubRegistry{})

	body := `{"message":{"chat":{"id":987654}}}`
	req := httptest.NewRequest("POST", "/webhooks/telegram", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleTelegram(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ignored")
	assert.Equal(t, 0, dispatcher.callCount())
}

func TestDispatchFailureReturns500(t *testing.T) {
	dispatcher := &fakeDispatcher{fail: true}
	h := newTestWebhookHandler(dispatcher, &stubRegistry{})

	body := `{"message":{"chat":{"id":1},"text":"hello"}}`
	req := httptest.NewRequest("POST", "/webhooks/telegram", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleTelegram(rec, req)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
