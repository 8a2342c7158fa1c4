package handlers

import (
	"net/http"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
)

// WorkflowHandler serves operator rule and flow CRUD.
type WorkflowHandler struct {
	workflows interfaces.WorkflowService
	logger    arbor.ILogger
}

func NewWorkflowHandler(workflows interfaces.WorkflowService, logger arbor.ILogger) *WorkflowHandler {
	return &WorkflowHandler{
		workflows: workflows,
		logger:    logger,
	}
}

type createRuleRequest struct {
	Name     string   `json:"name" validate:"required"`
	Keywords []string `json:"keywords" validate:"required,min=1"`
	Action   string   `json:"action" validate:"required"`
}

type updateRuleRequest struct {
	Name     string   `json:"name"`
	Keywords []string `json:"keywords"`
	Action   string   `json:"action"`
	Enabled  *bool    `json:"enabled"`
	Position *int     `json:"position"`
}

type createFlowRequest struct {
	Name  string                   `json:"name" validate:"required"`
	Nodes []map[string]interface{} `json:"nodes"`
}

// RulesHandler handles GET (list) and POST (create) /api/admin/workflows/rules.
func (h *WorkflowHandler) RulesHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		rules, err := h.workflows.ListRules(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to list rules")
			WriteError(w, http.StatusInternalServerError, "Failed to list rules")
			return
		}
		WriteJSON(w, http.StatusOK, rules)
	case http.MethodPost:
		var req createRuleRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		rule, err := h.workflows.CreateRule(r.Context(), req.Name, req.Keywords, req.Action)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, rule)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// RuleHandler handles PUT and DELETE /api/admin/workflows/rules/{id}.
func (h *WorkflowHandler) RuleHandler(w http.ResponseWriter, r *http.Request, id string) {
	switch r.Method {
	case http.MethodPut:
		h.updateRule(w, r, id)
	case http.MethodDelete:
		if err := h.workflows.DeleteRule(r.Context(), id); err != nil {
			status := http.StatusInternalServerError
			if strings.Contains(err.Error(), "not found") {
				status = http.StatusNotFound
			}
			WriteError(w, status, err.Error())
			return
		}
		WriteSuccess(w, "Rule deleted")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *WorkflowHandler) updateRule(w http.ResponseWriter, r *http.Request, id string) {
	var req updateRuleRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	rules, err := h.workflows.ListRules(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to load rules")
		return
	}

	var rule *models.WorkflowRule
	for _, candidate := range rules {
		if candidate.ID == id {
			rule = candidate
			break
		}
	}
	if rule == nil {
		WriteError(w, http.StatusNotFound, "Rule not found")
		return
	}

	if req.Name != "" {
		rule.Name = req.Name
	}
	if len(req.Keywords) > 0 {
		rule.Keywords = req.Keywords
	}
	if req.Action != "" {
		rule.Action = req.Action
	}
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	if req.Position != nil {
		rule.Position = *req.Position
	}

	if err := h.workflows.UpdateRule(r.Context(), rule); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, rule)
}

// FlowsHandler handles GET (list) and POST (create) /api/admin/workflows/flows.
func (h *WorkflowHandler) FlowsHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		flows, err := h.workflows.ListFlows(r.Context())
		if err != nil {
			h.logger.Error().Err(err).Msg("Failed to list flows")
			WriteError(w, http.StatusInternalServerError, "Failed to list flows")
			return
		}
		WriteJSON(w, http.StatusOK, flows)
	case http.MethodPost:
		var req createFlowRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		flow, err := h.workflows.CreateFlow(r.Context(), req.Name, req.Nodes)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, flow)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// FlowHandler handles DELETE /api/admin/workflows/flows/{id}.
func (h *WorkflowHandler) FlowHandler(w http.ResponseWriter, r *http.Request, id string) {
	if r.Method != http.MethodDelete {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.workflows.DeleteFlow(r.Context(), id); err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		WriteError(w, status, err.Error())
		return
	}
	WriteSuccess(w, "Flow deleted")
}
