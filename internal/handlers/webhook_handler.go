package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// WebhookHandler receives inbound platform webhooks, funnels text messages
// through the dispatcher and hands replies to the platform sender.
type WebhookHandler struct {
	dispatcher interfaces.DispatchService
	senders    interfaces.SenderRegistry
	channels   *common.ChannelsConfig
	logger     arbor.ILogger
}

func NewWebhookHandler(dispatcher interfaces.DispatchService, senders interfaces.SenderRegistry, channels *common.ChannelsConfig, logger arbor.ILogger) *WebhookHandler {
	return &WebhookHandler{
		dispatcher: dispatcher,
		senders:    senders,
		channels:   channels,
		logger:     logger,
	}
}

// Graph API webhook payload (WhatsApp Cloud API).
type graphWebhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
		Messaging []struct {
			Sender struct {
				ID string `json:"id"`
			} `json:"sender"`
			Message struct {
				Text string `json:"text"`
			} `json:"message"`
		} `json:"messaging"`
	} `json:"entry"`
}

// Telegram bot update payload.
type telegramUpdate struct {
	Message struct {
		Chat struct {
			ID int64 `json:"id"`
		} `json:"chat"`
		Text string `json:"text"`
	} `json:"message"`
}

// HandleWhatsApp serves GET verification and POST message delivery for the
// WhatsApp Cloud API webhook.
func (h *WebhookHandler) HandleWhatsApp(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.verify(w, r, h.channels.WhatsApp.VerifyToken)
	case http.MethodPost:
		h.receiveGraph(w, r, models.PlatformWhatsApp)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleMessenger serves the Messenger Platform webhook.
func (h *WebhookHandler) HandleMessenger(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.verify(w, r, h.channels.Messenger.VerifyToken)
	case http.MethodPost:
		h.receiveGraph(w, r, models.PlatformMessenger)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleInstagram serves the Instagram messaging webhook.
func (h *WebhookHandler) HandleInstagram(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.verify(w, r, h.channels.Instagram.VerifyToken)
	case http.MethodPost:
		h.receiveGraph(w, r, models.PlatformInstagram)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleTelegram serves the Telegram bot webhook. Telegram has no GET
// verification handshake.
func (h *WebhookHandler) HandleTelegram(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var update telegramUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Non-text updates (stickers, joins, edits) are acknowledged and ignored
	if update.Message.Text == "" || update.Message.Chat.ID == 0 {
		WriteJSON(w, http.StatusOK, map[string]string{"status": "ignored"})
		return
	}

	chatID := fmt.Sprintf("%d", update.Message.Chat.ID)
	if !h.dispatchAndSend(r.Context(), w, models.PlatformTelegram, chatID, update.Message.Text) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// verify echoes hub.challenge when the subscription token matches.
func (h *WebhookHandler) verify(w http.ResponseWriter, r *http.Request, verifyToken string) {
	mode := r.URL.Query().Get("hub.mode")
	token := r.URL.Query().Get("hub.verify_token")
	challenge := r.URL.Query().Get("hub.challenge")

	if mode == "subscribe" && verifyToken != "" && token == verifyToken {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(challenge))
		return
	}

	h.logger.Warn().Str("mode", mode).Msg("Webhook verification rejected")
	http.Error(w, "Forbidden", http.StatusForbidden)
}

// receiveGraph handles the Graph API POST shape shared by WhatsApp,
// Messenger and Instagram. WhatsApp nests messages under entry/changes/value;
// Messenger and Instagram use entry/messaging.
func (h *WebhookHandler) receiveGraph(w http.ResponseWriter, r *http.Request, platform string) {
	var payload graphWebhookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			for _, msg := range change.Value.Messages {
				if msg.From == "" || msg.Text.Body == "" {
					continue
				}
				if !h.dispatchAndSend(r.Context(), w, platform, msg.From, msg.Text.Body) {
					return
				}
			}
		}
		for _, event := range entry.Messaging {
			if event.Sender.ID == "" || event.Message.Text == "" {
				continue
			}
			if !h.dispatchAndSend(r.Context(), w, platform, event.Sender.ID, event.Message.Text) {
				return
			}
		}
	}

	WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// dispatchAndSend runs one inbound message through the dispatcher and ships
// the reply back out in the background. Returns false after writing an
// error response.
func (h *WebhookHandler) dispatchAndSend(ctx context.Context, w http.ResponseWriter, platform, externalID, text string) bool {
	result, err := h.dispatcher.HandleIncoming(ctx, platform, externalID, text)
	if err != nil {
		h.logger.Error().Err(err).Str("platform", platform).Msg("Dispatch failed")
		WriteError(w, http.StatusInternalServerError, "Failed to handle message")
		return false
	}

	sender := h.senders.SenderFor(platform)
	if sender == nil {
		h.logger.Warn().Str("platform", platform).Msg("No sender for platform, reply dropped")
		return true
	}

	reply := result.Reply
	// The webhook acks immediately; the outbound send must not die with
	// the request context.
	common.SafeGo(h.logger, "sendReply", func() {
		if err := sender.Send(context.Background(), externalID, reply); err != nil {
			h.logger.Error().Err(err).
				Str("platform", platform).
				Str("external_id", externalID).
				Msg("Failed to send reply")
		}
	})
	return true
}
