package models

import (
	"time"
)

// Knowledge document source types.
const (
	KnowledgeSourceText     = "text"
	KnowledgeSourceMarkdown = "markdown"
	KnowledgeSourceHTML     = "html"
	KnowledgeSourcePDF      = "pdf"
)

// KnowledgeDocument is a business document the bot can draw answers from.
// Content is stored as plain text or markdown after ingestion; HTML and PDF
// uploads are converted before chunking.
type KnowledgeDocument struct {
	ID         string    `json:"id" badgerhold:"key"` // doc_{uuid}
	Title      string    `json:"title"`
	Content    string    `json:"content"`
	SourceType string    `json:"source_type"` // text, markdown, html, pdf
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// KnowledgeChunk is one retrievable window of a document.
// Chunks of a document, joined in sequence order with the overlap removed,
// reproduce the document content exactly.
type KnowledgeChunk struct {
	ID    string `json:"id" badgerhold:"key"` // {doc_id}#{seq}
	DocID string `json:"doc_id" badgerhold:"index"`
	Seq   int    `json:"seq"`
	Text  string `json:"text"`
}

// ScoredChunk pairs a chunk with its retrieval score.
type ScoredChunk struct {
	Chunk KnowledgeChunk `json:"chunk"`
	Score float64        `json:"score"`
}

// KnowledgeDocumentInfo is the listing projection for admin endpoints.
type KnowledgeDocumentInfo struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	SourceType string    `json:"source_type"`
	ChunkCount int       `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}
