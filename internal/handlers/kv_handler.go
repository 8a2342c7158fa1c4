package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
)

// KVServiceInterface defines the methods needed from the KV service
type KVServiceInterface interface {
	Get(ctx context.Context, key string) (string, error)
	GetPair(ctx context.Context, key string) (*interfaces.KeyValuePair, error)
	Set(ctx context.Context, key string, value string, description string) error
	Upsert(ctx context.Context, key string, value string, description string) (bool, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]interfaces.KeyValuePair, error)
	GetAll(ctx context.Context) (map[string]string, error)
}

// allowedRuntimeKeys whitelists what the admin console may read and write.
// Everything else in the KV store is internal state.
var allowedRuntimeKeys = map[string]bool{
	"gemini_api_key":        true,
	"anthropic_api_key":     true,
	"claude_api_key":        true,
	"telegram_bot_token":    true,
	"crm_webhook_url":       true,
	"sheet_webhook_url":     true,
	"graph_api_base_url":    true,
	"telegram_api_base_url": true,
	"pricing_summary":       true,
	"lead_notify_to":        true,
	"smtp_host":             true,
	"smtp_port":             true,
	"smtp_username":         true,
	"smtp_password":         true,
	"smtp_from":             true,
	"smtp_from_name":        true,
	"smtp_use_tls":          true,
}

// sensitiveKeyMarkers flag values that list endpoints must mask.
var sensitiveKeyMarkers = []string{"key", "token", "password", "secret"}

// KVHandler serves the runtime configuration endpoints. Values live in the
// KV store so operators can rotate credentials without a restart.
type KVHandler struct {
	kvService KVServiceInterface
	logger    arbor.ILogger
}

func NewKVHandler(kvService KVServiceInterface, logger arbor.ILogger) *KVHandler {
	return &KVHandler{
		kvService: kvService,
		logger:    logger,
	}
}

// ListHandler handles GET /api/admin/config - lists whitelisted settings
// with sensitive values masked.
func (h *KVHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	pairs, err := h.kvService.List(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list settings")
		WriteError(w, http.StatusInternalServerError, "Failed to list settings")
		return
	}

	visible := make([]map[string]interface{}, 0, len(pairs))
	for _, pair := range pairs {
		if !allowedRuntimeKeys[strings.ToLower(pair.Key)] {
			continue
		}
		value := pair.Value
		if isSensitiveKey(pair.Key) {
			value = maskValue(value)
		}
		visible = append(visible, map[string]interface{}{
			"key":         pair.Key,
			"value":       value,
			"description": pair.Description,
			"updated_at":  pair.UpdatedAt,
		})
	}

	WriteJSON(w, http.StatusOK, visible)
}

// SettingHandler handles GET, PUT and DELETE /api/admin/config/{key}.
func (h *KVHandler) SettingHandler(w http.ResponseWriter, r *http.Request, encodedKey string) {
	key, err := url.QueryUnescape(encodedKey)
	if err != nil || key == "" {
		WriteError(w, http.StatusBadRequest, "Invalid key")
		return
	}

	if !allowedRuntimeKeys[strings.ToLower(key)] {
		WriteError(w, http.StatusForbidden, "Key is not a runtime setting")
		return
	}

	switch r.Method {
	case http.MethodGet:
		h.getSetting(w, r, key)
	case http.MethodPut:
		h.putSetting(w, r, key)
	case http.MethodDelete:
		h.deleteSetting(w, r, key)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *KVHandler) getSetting(w http.ResponseWriter, r *http.Request, key string) {
	pair, err := h.kvService.GetPair(r.Context(), key)
	if err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Setting not found")
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to get setting")
		WriteError(w, http.StatusInternalServerError, "Failed to get setting")
		return
	}

	// The single-key GET returns the full value for editing; only the list
	// masks.
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"key":         pair.Key,
		"value":       pair.Value,
		"description": pair.Description,
		"updated_at":  pair.UpdatedAt,
	})
}

func (h *KVHandler) putSetting(w http.ResponseWriter, r *http.Request, key string) {
	var req struct {
		Value       string `json:"value" validate:"required"`
		Description string `json:"description"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	created, err := h.kvService.Upsert(r.Context(), key, req.Value, req.Description)
	if err != nil {
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to store setting")
		WriteError(w, http.StatusInternalServerError, "Failed to store setting")
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	WriteJSON(w, status, map[string]interface{}{
		"status":  "success",
		"key":     key,
		"created": created,
	})
}

func (h *KVHandler) deleteSetting(w http.ResponseWriter, r *http.Request, key string) {
	if err := h.kvService.Delete(r.Context(), key); err != nil {
		if errors.Is(err, interfaces.ErrKeyNotFound) {
			WriteError(w, http.StatusNotFound, "Setting not found")
			return
		}
		h.logger.Error().Err(err).Str("key", key).Msg("Failed to delete setting")
		WriteError(w, http.StatusInternalServerError, "Failed to delete setting")
		return
	}
	WriteSuccess(w, "Setting deleted")
}

func isSensitiveKey(key string) bool {
	lowered := strings.ToLower(key)
	for _, marker := range sensitiveKeyMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// maskValue masks sensitive values for list responses.
// If length < 8: returns "••••••••"
// Otherwise: returns first 4 chars + "..." + last 4 chars.
func maskValue(value string) string {
	if len(value) < 8 {
		return "••••••••"
	}
	return value[:4] + "..." + value[len(value)-4:]
}
