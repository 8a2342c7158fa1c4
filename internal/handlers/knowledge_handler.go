package handlers

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
)

const maxPDFUploadBytes = 10 << 20 // 10 MB

// KnowledgeHandler serves the admin knowledge base endpoints: document
// CRUD, ingestion of HTML and PDF sources, and retrieval previews.
type KnowledgeHandler struct {
	knowledge interfaces.KnowledgeService
	logger    arbor.ILogger
}

func NewKnowledgeHandler(knowledge interfaces.KnowledgeService, logger arbor.ILogger) *KnowledgeHandler {
	return &KnowledgeHandler{
		knowledge: knowledge,
		logger:    logger,
	}
}

type addDocumentRequest struct {
	Title      string `json:"title" validate:"required"`
	Content    string `json:"content" validate:"required"`
	SourceType string `json:"source_type"`
}

type addHTMLRequest struct {
	Title string `json:"title" validate:"required"`
	HTML  string `json:"html" validate:"required"`
}

// ListHandler handles GET /api/admin/knowledge.
func (h *KnowledgeHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	docs, err := h.knowledge.ListDocuments(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("Failed to list documents")
		WriteError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}
	WriteJSON(w, http.StatusOK, docs)
}

// AddHandler handles POST /api/admin/knowledge with a text or markdown body.
func (h *KnowledgeHandler) AddHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req addDocumentRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	if req.SourceType == "" {
		req.SourceType = "text"
	}

	doc, err := h.knowledge.AddDocument(r.Context(), req.Title, req.Content, req.SourceType)
	if err != nil {
		h.logger.Error().Err(err).Str("title", req.Title).Msg("Failed to add document")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

// AddHTMLHandler handles POST /api/admin/knowledge/html. The page is
// converted to markdown before chunking.
func (h *KnowledgeHandler) AddHTMLHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req addHTMLRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	doc, err := h.knowledge.AddHTMLDocument(r.Context(), req.Title, req.HTML)
	if err != nil {
		h.logger.Error().Err(err).Str("title", req.Title).Msg("Failed to add HTML document")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

// AddPDFHandler handles POST /api/admin/knowledge/pdf?title=... with a raw
// PDF body.
func (h *KnowledgeHandler) AddPDFHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	title := r.URL.Query().Get("title")
	if title == "" {
		WriteError(w, http.StatusBadRequest, "title query parameter is required")
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPDFUploadBytes))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "Failed to read PDF body")
		return
	}
	if len(body) == 0 {
		WriteError(w, http.StatusBadRequest, "Empty PDF body")
		return
	}

	doc, err := h.knowledge.AddPDFDocument(r.Context(), title, body)
	if err != nil {
		h.logger.Error().Err(err).Str("title", title).Msg("Failed to add PDF document")
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, doc)
}

// DocumentHandler handles GET and DELETE /api/admin/knowledge/{id}, plus
// GET /api/admin/knowledge/{id}/html for the rendered markdown preview.
func (h *KnowledgeHandler) DocumentHandler(w http.ResponseWriter, r *http.Request, id string) {
	if strings.HasSuffix(r.URL.Path, "/html") {
		h.renderHandler(w, r, id)
		return
	}

	switch r.Method {
	case http.MethodGet:
		doc, err := h.knowledge.GetDocument(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusNotFound, "Document not found")
			return
		}
		WriteJSON(w, http.StatusOK, doc)
	case http.MethodDelete:
		if err := h.knowledge.DeleteDocument(r.Context(), id); err != nil {
			h.logger.Error().Err(err).Str("doc_id", id).Msg("Failed to delete document")
			WriteError(w, http.StatusInternalServerError, "Failed to delete document")
			return
		}
		WriteSuccess(w, "Document deleted")
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *KnowledgeHandler) renderHandler(w http.ResponseWriter, r *http.Request, id string) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	html, err := h.knowledge.RenderDocumentHTML(r.Context(), id)
	if err != nil {
		WriteError(w, http.StatusNotFound, "Document not found")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

// RetrieveHandler handles GET /api/admin/knowledge/retrieve?q=...&top_k=N.
// It previews exactly what the reply generator would see for a query.
func (h *KnowledgeHandler) RetrieveHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		WriteError(w, http.StatusBadRequest, "q query parameter is required")
		return
	}

	topK := 0 // Service default
	if topKStr := r.URL.Query().Get("top_k"); topKStr != "" {
		if n, err := strconv.Atoi(topKStr); err == nil && n > 0 {
			topK = n
		}
	}

	chunks, err := h.knowledge.Retrieve(r.Context(), query, topK)
	if err != nil {
		h.logger.Error().Err(err).Msg("Retrieval preview failed")
		WriteError(w, http.StatusInternalServerError, "Retrieval failed")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"query":  query,
		"chunks": chunks,
	})
}
