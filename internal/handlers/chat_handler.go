package handlers

import (
	"net/http"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// ChatHandler serves the embedded web widget. The reply travels back in the
// HTTP response; no outbound sender is involved.
type ChatHandler struct {
	dispatcher interfaces.DispatchService
	logger     arbor.ILogger
}

func NewChatHandler(dispatcher interfaces.DispatchService, logger arbor.ILogger) *ChatHandler {
	return &ChatHandler{
		dispatcher: dispatcher,
		logger:     logger,
	}
}

type chatRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required"`
}

type chatResponse struct {
	Reply          string `json:"reply"`
	ConversationID string `json:"conversation_id"`
	Intent         string `json:"intent"`
	Handoff        bool   `json:"handoff"`
}

// HandleMessage handles POST /api/chat requests from the web widget.
func (h *ChatHandler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req chatRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	result, err := h.dispatcher.HandleIncoming(r.Context(), models.PlatformWeb, req.SessionID, req.Message)
	if err != nil {
		h.logger.Error().Err(err).Str("session_id", req.SessionID).Msg("Web chat dispatch failed")
		WriteError(w, http.StatusInternalServerError, "Failed to handle message")
		return
	}

	WriteJSON(w, http.StatusOK, chatResponse{
		Reply:          result.Reply,
		ConversationID: result.Conversation.ID,
		Intent:         result.Intent.Intent,
		Handoff:        result.Handoff,
	})
}
