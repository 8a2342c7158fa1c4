package messaging

import (
	"context"
	"fmt"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/httpclient"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// sendTimeout bounds every outbound platform call.
const sendTimeout = 20 * time.Second

// graphBaseURL resolves the Meta Graph API base, overridable through KV for
// test endpoints.
func graphBaseURL(ctx context.Context, kv interfaces.KeyValueStorage) string {
	if url, err := kv.Get(ctx, "graph_api_base_url"); err == nil && url != "" {
		return url
	}
	return "https://graph.facebook.com"
}

func telegramBaseURL(ctx context.Context, kv interfaces.KeyValueStorage) string {
	if url, err := kv.Get(ctx, "telegram_api_base_url"); err == nil && url != "" {
		return url
	}
	return "https://api.telegram.org"
}

func twilioBaseURL(ctx context.Context, kv interfaces.KeyValueStorage) string {
	if url, err := kv.Get(ctx, "twilio_api_base_url"); err == nil && url != "" {
		return url
	}
	return "https://api.twilio.com"
}

// WhatsAppSender delivers replies through the WhatsApp Cloud API.
type WhatsAppSender struct {
	config       *common.WhatsAppConfig
	graphVersion string
	kvStorage    interfaces.KeyValueStorage
	client       *http.Client
	logger       arbor.ILogger
}

func NewWhatsAppSender(config *common.WhatsAppConfig, graphVersion string, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *WhatsAppSender {
	return &WhatsAppSender{
		config:       config,
		graphVersion: graphVersion,
		kvStorage:    kvStorage,
		client:       httpclient.NewDefaultHTTPClient(sendTimeout),
		logger:       logger,
	}
}

func (s *WhatsAppSender) Platform() string { return models.PlatformWhatsApp }

func (s *WhatsAppSender) Send(ctx context.Context, externalID, text string) error {
	if s.config.AccessToken == "" || s.config.PhoneNumberID == "" {
		return fmt.Errorf("whatsapp sender not configured")
	}

	url := fmt.Sprintf("%s/%s/%s/messages",
		graphBaseURL(ctx, s.kvStorage), s.graphVersion, s.config.PhoneNumberID)
	payload := map[string]interface{}{
		"messaging_product": "whatsapp",
		"to":                externalID,
		"type":              "text",
		"text":              map[string]string{"body": text},
	}
	return postJSONWithBearer(ctx, s.client, url, s.config.AccessToken, payload)
}

// MessengerSender delivers replies through the Messenger Send API.
type MessengerSender struct {
	config       *common.MessengerConfig
	graphVersion string
	kvStorage    interfaces.KeyValueStorage
	client       *http.Client
	logger       arbor.ILogger
}

func NewMessengerSender(config *common.MessengerConfig, graphVersion string, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *MessengerSender {
	return &MessengerSender{
		config:       config,
		graphVersion: graphVersion,
		kvStorage:    kvStorage,
		client:       httpclient.NewDefaultHTTPClient(sendTimeout),
		logger:       logger,
	}
}

func (s *MessengerSender) Platform() string { return models.PlatformMessenger }

func (s *MessengerSender) Send(ctx context.Context, externalID, text string) error {
	if s.config.PageToken == "" {
		return fmt.Errorf("messenger sender not configured")
	}

	url := fmt.Sprintf("%s/%s/me/messages?access_token=%s",
		graphBaseURL(ctx, s.kvStorage), s.graphVersion, s.config.PageToken)
	payload := map[string]interface{}{
		"recipient": map[string]string{"id": externalID},
		"message":   map[string]string{"text": text},
	}
	return httpclient.PostJSON(ctx, s.client, url, payload)
}

// InstagramSender delivers replies through the Instagram messaging API.
type InstagramSender struct {
	config       *common.InstagramConfig
	graphVersion string
	kvStorage    interfaces.KeyValueStorage
	client       *http.Client
	logger       arbor.ILogger
}

func NewInstagramSender(config *common.InstagramConfig, graphVersion string, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *InstagramSender {
	return &InstagramSender{
		config:       config,
		graphVersion: graphVersion,
		kvStorage:    kvStorage,
		client:       httpclient.NewDefaultHTTPClient(sendTimeout),
		logger:       logger,
	}
}

func (s *InstagramSender) Platform() string { return models.PlatformInstagram }

func (s *InstagramSender) Send(ctx context.Context, externalID, text string) error {
	if s.config.AccessToken == "" {
		return fmt.Errorf("instagram sender not configured")
	}

	url := fmt.Sprintf("%s/%s/me/messages?access_token=%s",
		graphBaseURL(ctx, s.kvStorage), s.graphVersion, s.config.AccessToken)
	payload := map[string]interface{}{
		"recipient": map[string]string{"id": externalID},
		"message":   map[string]string{"text": text},
	}
	return httpclient.PostJSON(ctx, s.client, url, payload)
}

// TelegramSender delivers replies through the Telegram Bot API. The bot
// token can live in config or under the telegram_bot_token KV key.
type TelegramSender struct {
	config    *common.TelegramConfig
	kvStorage interfaces.KeyValueStorage
	client    *http.Client
	logger    arbor.ILogger
}

func NewTelegramSender(config *common.TelegramConfig, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *TelegramSender {
	return &TelegramSender{
		config:    config,
		kvStorage: kvStorage,
		client:    httpclient.NewDefaultHTTPClient(sendTimeout),
		logger:    logger,
	}
}

func (s *TelegramSender) Platform() string { return models.PlatformTelegram }

func (s *TelegramSender) Send(ctx context.Context, externalID, text string) error {
	token, err := common.ResolveSetting(ctx, s.kvStorage, "telegram_bot_token", s.config.BotToken)
	if err != nil || token == "" {
		return fmt.Errorf("telegram sender not configured")
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", telegramBaseURL(ctx, s.kvStorage), token)
	payload := map[string]interface{}{
		"chat_id": externalID,
		"text":    text,
	}
	return httpclient.PostJSON(ctx, s.client, url, payload)
}

// SMSSender delivers replies as SMS through the Twilio Messages API.
type SMSSender struct {
	config    *common.SMSConfig
	kvStorage interfaces.KeyValueStorage
	client    *http.Client
	logger    arbor.ILogger
}

func NewSMSSender(config *common.SMSConfig, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *SMSSender {
	return &SMSSender{
		config:    config,
		kvStorage: kvStorage,
		client:    httpclient.NewDefaultHTTPClient(sendTimeout),
		logger:    logger,
	}
}

func (s *SMSSender) Platform() string { return models.PlatformSMS }

func (s *SMSSender) Send(ctx context.Context, externalID, text string) error {
	if s.config.AccountSID == "" || s.config.AuthToken == "" || s.config.FromNumber == "" {
		return fmt.Errorf("sms sender not configured")
	}

	endpoint := fmt.Sprintf("%s/2010-04-01/Accounts/%s/Messages.json",
		twilioBaseURL(ctx, s.kvStorage), s.config.AccountSID)
	form := neturl.Values{}
	form.Set("From", s.config.FromNumber)
	form.Set("To", externalID)
	form.Set("Body", text)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(s.config.AccountSID, s.config.AuthToken)

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return nil
}
