package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// AdminHandler serves the conversation, message, lead and audit inspection
// endpoints behind the bearer middleware.
type AdminHandler struct {
	storage interfaces.StorageManager
	reply   interfaces.ReplyService
	logger  arbor.ILogger
}

func NewAdminHandler(storage interfaces.StorageManager, reply interfaces.ReplyService, logger arbor.ILogger) *AdminHandler {
	return &AdminHandler{
		storage: storage,
		reply:   reply,
		logger:  logger,
	}
}

// ListMessagesHandler handles GET /api/admin/messages.
func (h *AdminHandler) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	messages, err := h.storage.MessageStorage().ListMessages(r.Context(), GetListOptions(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list messages")
		WriteError(w, http.StatusInternalServerError, "Failed to list messages")
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

type conversationView struct {
	*models.Conversation
	LastMessage *models.Message `json:"last_message,omitempty"`
}

// ListConversationsHandler handles GET /api/admin/conversations. Each
// conversation carries its most recent message for list previews.
func (h *AdminHandler) ListConversationsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	conversations, err := h.storage.ConversationStorage().ListConversations(r.Context(), GetListOptions(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list conversations")
		WriteError(w, http.StatusInternalServerError, "Failed to list conversations")
		return
	}

	views := make([]conversationView, 0, len(conversations))
	for _, conv := range conversations {
		view := conversationView{Conversation: conv}
		if last, err := h.storage.MessageStorage().GetLastMessage(r.Context(), conv.ID); err == nil {
			view.LastMessage = last
		}
		views = append(views, view)
	}
	WriteJSON(w, http.StatusOK, views)
}

// ConversationMessagesHandler handles GET /api/admin/conversations/{id}/messages.
func (h *AdminHandler) ConversationMessagesHandler(w http.ResponseWriter, r *http.Request, conversationID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}

	messages, err := h.storage.MessageStorage().GetRecentMessages(r.Context(), conversationID, limit)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to load messages")
		WriteError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}
	WriteJSON(w, http.StatusOK, messages)
}

type handoffRequest struct {
	Enabled bool `json:"enabled"`
}

// HandoffHandler handles POST /api/admin/conversations/{id}/handoff.
// Toggling handoff hands the conversation to a human; the bot answers with
// the handoff message until toggled back.
func (h *AdminHandler) HandoffHandler(w http.ResponseWriter, r *http.Request, conversationID string) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req handoffRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	conv, err := h.storage.ConversationStorage().GetConversation(r.Context(), conversationID)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	conv.HandoffEnabled = req.Enabled
	if err := h.storage.ConversationStorage().SaveConversation(r.Context(), conv); err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to save handoff state")
		WriteError(w, http.StatusInternalServerError, "Failed to update conversation")
		return
	}

	actor := ""
	if account := AccountFromContext(r.Context()); account != nil {
		actor = account.ID
	}
	entry := &models.AuditEntry{
		ID:     common.NewAuditID(),
		Action: models.AuditHandoffToggled,
		Actor:  actor,
		Detail: map[string]string{
			"conversation_id": conversationID,
			"enabled":         strconv.FormatBool(req.Enabled),
		},
	}
	if err := h.storage.AuditStorage().Append(r.Context(), entry); err != nil {
		h.logger.Warn().Err(err).Msg("Failed to append handoff audit entry")
	}

	WriteJSON(w, http.StatusOK, conv)
}

type insightsResponse struct {
	Summary     string   `json:"summary"`
	Suggestions []string `json:"suggestions"`
}

// InsightsHandler handles GET /api/admin/conversations/{id}/insights. It
// returns an LLM summary and suggested agent replies; both come back empty
// when no provider is configured.
func (h *AdminHandler) InsightsHandler(w http.ResponseWriter, r *http.Request, conversationID string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	if _, err := h.storage.ConversationStorage().GetConversation(r.Context(), conversationID); err != nil {
		WriteError(w, http.StatusNotFound, "Conversation not found")
		return
	}

	history, err := h.storage.MessageStorage().GetRecentMessages(r.Context(), conversationID, 20)
	if err != nil {
		h.logger.Error().Err(err).Str("conversation_id", conversationID).Msg("Failed to load messages")
		WriteError(w, http.StatusInternalServerError, "Failed to load messages")
		return
	}

	resp := insightsResponse{Suggestions: []string{}}
	if summary, err := h.reply.Summarize(r.Context(), history); err != nil {
		h.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("Conversation summary failed")
	} else {
		resp.Summary = summary
	}
	if suggestions, err := h.reply.SuggestReplies(r.Context(), history); err != nil {
		h.logger.Warn().Err(err).Str("conversation_id", conversationID).Msg("Reply suggestion failed")
	} else if len(suggestions) > 0 {
		resp.Suggestions = suggestions
	}

	WriteJSON(w, http.StatusOK, resp)
}

// ListLeadsHandler handles GET /api/admin/leads.
func (h *AdminHandler) ListLeadsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	leads, err := h.storage.LeadStorage().ListLeads(r.Context(), GetListOptions(r))
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list leads")
		WriteError(w, http.StatusInternalServerError, "Failed to list leads")
		return
	}
	WriteJSON(w, http.StatusOK, leads)
}

// ListAuditHandler handles GET /api/admin/audit.
func (h *AdminHandler) ListAuditHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	opts := GetListOptions(r)
	entries, err := h.storage.AuditStorage().ListEntries(r.Context(), opts.Limit, opts.Offset)
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list audit entries")
		WriteError(w, http.StatusInternalServerError, "Failed to list audit entries")
		return
	}
	WriteJSON(w, http.StatusOK, entries)
}

// ConversationSubroute extracts {id} and an optional action from paths like
// /api/admin/conversations/{id}/messages.
func ConversationSubroute(path, prefix string) (id, action string) {
	rest := strings.TrimPrefix(path, prefix)
	rest = strings.Trim(rest, "/")
	parts := strings.SplitN(rest, "/", 2)
	id = parts[0]
	if len(parts) == 2 {
		action = parts[1]
	}
	return id, action
}
