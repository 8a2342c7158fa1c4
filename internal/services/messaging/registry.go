package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// Registry maps platforms to their senders. The web channel has no sender;
// its replies travel back on the HTTP/WebSocket response itself.
type Registry struct {
	senders map[string]interfaces.ChannelSender
}

var _ interfaces.SenderRegistry = (*Registry)(nil)

// NewRegistry creates the sender registry for all outbound platforms
func NewRegistry(channels *common.ChannelsConfig, kvStorage interfaces.KeyValueStorage, logger arbor.ILogger) *Registry {
	graphVersion := channels.GraphVersion
	if graphVersion == "" {
		graphVersion = "v19.0"
	}

	senders := map[string]interfaces.ChannelSender{
		models.PlatformWhatsApp:  NewWhatsAppSender(&channels.WhatsApp, graphVersion, kvStorage, logger),
		models.PlatformMessenger: NewMessengerSender(&channels.Messenger, graphVersion, kvStorage, logger),
		models.PlatformInstagram: NewInstagramSender(&channels.Instagram, graphVersion, kvStorage, logger),
		models.PlatformTelegram:  NewTelegramSender(&channels.Telegram, kvStorage, logger),
		models.PlatformSMS:       NewSMSSender(&channels.SMS, kvStorage, logger),
	}
	return &Registry{senders: senders}
}

// SenderFor returns the sender for a platform, nil for in-band platforms.
func (r *Registry) SenderFor(platform string) interfaces.ChannelSender {
	return r.senders[platform]
}

// postJSONWithBearer POSTs a JSON payload with a bearer token.
func postJSONWithBearer(ctx context.Context, client *http.Client, url, token string, payload interface{}) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(excerpt))
	}
	return nil
}
