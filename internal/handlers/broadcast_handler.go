package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
)

// BroadcastHandler serves campaign creation and listing.
type BroadcastHandler struct {
	broadcast interfaces.BroadcastService
	logger    arbor.ILogger
}

func NewBroadcastHandler(broadcast interfaces.BroadcastService, logger arbor.ILogger) *BroadcastHandler {
	return &BroadcastHandler{
		broadcast: broadcast,
		logger:    logger,
	}
}

type createCampaignRequest struct {
	Name     string `json:"name" validate:"required"`
	Platform string `json:"platform" validate:"required"`
	Text     string `json:"text" validate:"required"`
	Schedule string `json:"schedule"` // Cron expression; empty runs immediately
}

// CampaignsHandler handles GET (list) and POST (create) /api/admin/campaigns.
func (h *BroadcastHandler) CampaignsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		campaigns, err := h.broadcast.ListCampaigns(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to list campaigns")
			WriteError(w, http.StatusInternalServerError, "Failed to list campaigns")
			return
		}
		WriteJSON(w, http.StatusOK, campaigns)
	case http.MethodPost:
		var req createCampaignRequest
		if !DecodeJSON(w, r, &req) {
			return
		}

		campaign, err := h.broadcast.CreateCampaign(r.Context(), req.Name, req.Platform, req.Text, req.Schedule)
		if err != nil {
			status := http.StatusBadRequest
			if strings.Contains(err.Error(), "failed to save") {
				status = http.StatusInternalServerError
			}
			WriteError(w, status, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, campaign)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
