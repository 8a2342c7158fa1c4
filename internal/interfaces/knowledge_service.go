package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// KnowledgeService manages the retrievable knowledge base: document
// ingestion, chunking and keyword retrieval.
type KnowledgeService interface {
	// AddDocument chunks and stores a plain text or markdown document.
	AddDocument(ctx context.Context, title, content, sourceType string) (*models.KnowledgeDocument, error)

	// AddHTMLDocument converts HTML to markdown before ingestion.
	AddHTMLDocument(ctx context.Context, title, html string) (*models.KnowledgeDocument, error)

	// AddPDFDocument extracts text from PDF bytes before ingestion.
	AddPDFDocument(ctx context.Context, title string, pdf []byte) (*models.KnowledgeDocument, error)

	// DeleteDocument removes a document and its chunks. Unknown IDs are a no-op.
	DeleteDocument(ctx context.Context, id string) error

	// GetDocument returns a stored document by ID.
	GetDocument(ctx context.Context, id string) (*models.KnowledgeDocument, error)

	// ListDocuments lists stored documents with chunk counts.
	ListDocuments(ctx context.Context) ([]*models.KnowledgeDocumentInfo, error)

	// Retrieve returns the top-K chunks scored against the query.
	// Queries with no indexable tokens return an empty result.
	Retrieve(ctx context.Context, query string, topK int) ([]models.ScoredChunk, error)

	// BuildContext joins the retrieved chunk texts for prompt assembly.
	BuildContext(ctx context.Context, query string) (string, error)

	// RenderDocumentHTML renders a stored markdown document to HTML for
	// admin preview.
	RenderDocumentHTML(ctx context.Context, id string) (string, error)
}
