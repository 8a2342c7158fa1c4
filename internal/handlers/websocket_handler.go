package handlers

import (
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"golang.org/x/time/rate"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Widget embeds on arbitrary customer domains
	},
}

// WebSocketHandler streams web widget chat over a persistent connection.
// Each connection carries one session and is throttled so a stuck client
// cannot flood the dispatcher.
type WebSocketHandler struct {
	dispatcher interfaces.DispatchService
	logger     arbor.ILogger
}

func NewWebSocketHandler(dispatcher interfaces.DispatchService, logger arbor.ILogger) *WebSocketHandler {
	return &WebSocketHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type wsInbound struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message"`
}

type wsOutbound struct {
	Type           string `json:"type"` // "reply" or "error"
	Reply          string `json:"reply,omitempty"`
	ConversationID string `json:"conversation_id,omitempty"`
	Intent         string `json:"intent,omitempty"`
	Handoff        bool   `json:"handoff,omitempty"`
	Error          string `json:"error,omitempty"`
}

// HandleChat upgrades the connection and serves a read loop until the
// client disconnects.
func (h *WebSocketHandler) HandleChat(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}
	defer conn.Close()

	h.logger.Debug().Str("remote", r.RemoteAddr).Msg("Chat WebSocket connected")

	// One message per second sustained, short bursts allowed
	limiter := rate.NewLimiter(rate.Limit(1), 5)
	var writeMu sync.Mutex

	writeJSON := func(msg wsOutbound) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			h.logger.Warn().Err(err).Msg("Failed to write WebSocket message")
		}
	}

	for {
		var inbound wsInbound
		if err := conn.ReadJSON(&inbound); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn().Err(err).Msg("Chat WebSocket error")
			}
			return
		}

		if inbound.SessionID == "" || inbound.Message == "" {
			writeJSON(wsOutbound{Type: "error", Error: "session_id and message are required"})
			continue
		}

		if !limiter.Allow() {
			writeJSON(wsOutbound{Type: "error", Error: "Too many messages, slow down"})
			continue
		}

		result, err := h.dispatcher.HandleIncoming(r.Context(), models.PlatformWeb, inbound.SessionID, inbound.Message)
		if err != nil {
			h.logger.Error().Err(err).Str("session_id", inbound.SessionID).Msg("WebSocket dispatch failed")
			writeJSON(wsOutbound{Type: "error", Error: "Failed to handle message"})
			continue
		}

		writeJSON(wsOutbound{
			Type:           "reply",
			Reply:          result.Reply,
			ConversationID: result.Conversation.ID,
			Intent:         result.Intent.Intent,
			Handoff:        result.Handoff,
		})
	}
}
