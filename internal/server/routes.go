package server

import (
	"net/http"
	"strings"

	"github.com/ternarybob/respondo/internal/handlers"
	"github.com/ternarybob/respondo/internal/models"
)

// setupRoutes configures all HTTP routes
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Channel webhooks (verification on GET, delivery on POST)
	throttle := newWebhookThrottle(s.app.Config.Server.WebhookRateLimit)
	mux.HandleFunc("/webhooks/whatsapp", throttle.wrap(models.PlatformWhatsApp, s.app.WebhookHandler.HandleWhatsApp))
	mux.HandleFunc("/webhooks/messenger", throttle.wrap(models.PlatformMessenger, s.app.WebhookHandler.HandleMessenger))
	mux.HandleFunc("/webhooks/instagram", throttle.wrap(models.PlatformInstagram, s.app.WebhookHandler.HandleInstagram))
	mux.HandleFunc("/webhooks/telegram", throttle.wrap(models.PlatformTelegram, s.app.WebhookHandler.HandleTelegram))

	// Web chat widget
	mux.HandleFunc("/api/chat", s.app.ChatHandler.HandleMessage)
	mux.HandleFunc("/ws/chat", s.app.WSHandler.HandleChat)

	// Admin console authentication (public)
	mux.HandleFunc("/api/auth/register", s.app.AuthHandler.RegisterHandler)
	mux.HandleFunc("/api/auth/login", s.app.AuthHandler.LoginHandler)

	// Admin console API (bearer token required)
	mux.Handle("/api/admin/", s.app.AuthHandler.Middleware(http.HandlerFunc(s.handleAdminRoutes)))

	// API routes - System
	mux.HandleFunc("/api/version", s.app.APIHandler.VersionHandler)
	mux.HandleFunc("/api/health", s.app.APIHandler.HealthHandler)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.app.APIHandler.NotFoundHandler)

	return mux
}

// handleAdminRoutes dispatches everything under /api/admin/ after the auth
// middleware has attached the account to the request context.
func (s *Server) handleAdminRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch path {
	case "/api/admin/me":
		s.app.AuthHandler.MeHandler(w, r)
		return
	case "/api/admin/logout":
		s.app.AuthHandler.LogoutHandler(w, r)
		return
	case "/api/admin/password":
		s.app.AuthHandler.ChangePasswordHandler(w, r)
		return
	case "/api/admin/messages":
		s.app.AdminHandler.ListMessagesHandler(w, r)
		return
	case "/api/admin/conversations":
		s.app.AdminHandler.ListConversationsHandler(w, r)
		return
	case "/api/admin/leads":
		s.app.AdminHandler.ListLeadsHandler(w, r)
		return
	case "/api/admin/audit":
		s.app.AdminHandler.ListAuditHandler(w, r)
		return
	case "/api/admin/campaigns":
		s.app.BroadcastHandler.CampaignsHandler(w, r)
		return
	}

	if strings.HasPrefix(path, "/api/admin/conversations/") {
		s.handleConversationRoutes(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/admin/analytics") {
		s.handleAnalyticsRoutes(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/admin/knowledge") {
		s.handleKnowledgeRoutes(w, r)
		return
	}
	if strings.HasPrefix(path, "/api/admin/workflows/") {
		s.handleWorkflowRoutes(w, r)
		return
	}
	if path == "/api/admin/config" || strings.HasPrefix(path, "/api/admin/config/") {
		s.handleConfigRoutes(w, r)
		return
	}

	s.app.APIHandler.NotFoundHandler(w, r)
}

// handleConversationRoutes routes /api/admin/conversations/{id}/{action}
func (s *Server) handleConversationRoutes(w http.ResponseWriter, r *http.Request) {
	id, action := handlers.ConversationSubroute(r.URL.Path, "/api/admin/conversations/")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	switch action {
	case "messages":
		s.app.AdminHandler.ConversationMessagesHandler(w, r, id)
	case "handoff":
		s.app.AdminHandler.HandoffHandler(w, r, id)
	case "insights":
		s.app.AdminHandler.InsightsHandler(w, r, id)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleAnalyticsRoutes routes the summary endpoint and its exports
func (s *Server) handleAnalyticsRoutes(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/api/admin/analytics":
		s.app.AnalyticsHandler.SummaryHandler(w, r)
	case "/api/admin/analytics/leads.csv":
		s.app.AnalyticsHandler.ExportLeadsCSVHandler(w, r)
	case "/api/admin/analytics/summary.pdf":
		s.app.AnalyticsHandler.ExportSummaryPDFHandler(w, r)
	default:
		http.Error(w, "Not found", http.StatusNotFound)
	}
}

// handleKnowledgeRoutes routes /api/admin/knowledge and its subpaths
func (s *Server) handleKnowledgeRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch path {
	case "/api/admin/knowledge":
		RouteResourceCollection(w, r, s.app.KnowledgeHandler.ListHandler, s.app.KnowledgeHandler.AddHandler)
		return
	case "/api/admin/knowledge/html":
		s.app.KnowledgeHandler.AddHTMLHandler(w, r)
		return
	case "/api/admin/knowledge/pdf":
		s.app.KnowledgeHandler.AddPDFHandler(w, r)
		return
	case "/api/admin/knowledge/retrieve":
		s.app.KnowledgeHandler.RetrieveHandler(w, r)
		return
	}

	// /api/admin/knowledge/{id} and /api/admin/knowledge/{id}/html
	id := strings.Trim(strings.TrimPrefix(path, "/api/admin/knowledge/"), "/")
	id = strings.TrimSuffix(id, "/html")
	if id == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	s.app.KnowledgeHandler.DocumentHandler(w, r, id)
}

// handleWorkflowRoutes routes rule and flow management
func (s *Server) handleWorkflowRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	switch path {
	case "/api/admin/workflows/rules":
		s.app.WorkflowHandler.RulesHandler(w, r)
		return
	case "/api/admin/workflows/flows":
		s.app.WorkflowHandler.FlowsHandler(w, r)
		return
	}

	if strings.HasPrefix(path, "/api/admin/workflows/rules/") {
		id := strings.Trim(strings.TrimPrefix(path, "/api/admin/workflows/rules/"), "/")
		if id != "" {
			s.app.WorkflowHandler.RuleHandler(w, r, id)
			return
		}
	}
	if strings.HasPrefix(path, "/api/admin/workflows/flows/") {
		id := strings.Trim(strings.TrimPrefix(path, "/api/admin/workflows/flows/"), "/")
		if id != "" {
			s.app.WorkflowHandler.FlowHandler(w, r, id)
			return
		}
	}

	http.Error(w, "Not found", http.StatusNotFound)
}

// handleConfigRoutes routes runtime setting management
func (s *Server) handleConfigRoutes(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	if path == "/api/admin/config" {
		s.app.KVHandler.ListHandler(w, r)
		return
	}

	key := strings.Trim(strings.TrimPrefix(path, "/api/admin/config/"), "/")
	if key == "" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	s.app.KVHandler.SettingHandler(w, r, key)
}
