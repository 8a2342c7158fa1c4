package knowledge

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Service implements interfaces.KnowledgeService on top of the chunk store.
type Service struct {
	storage     interfaces.KnowledgeStorage
	transformer interfaces.HTMLTransformer
	extractor   interfaces.PDFExtractor
	logger      arbor.ILogger
	chunkSize   int
	overlap     int
	topK        int
	markdown    goldmark.Markdown
}

var _ interfaces.KnowledgeService = (*Service)(nil)

// NewService creates a new knowledge service
func NewService(
	storage interfaces.KnowledgeStorage,
	transformer interfaces.HTMLTransformer,
	extractor interfaces.PDFExtractor,
	cfg *common.KnowledgeConfig,
	logger arbor.ILogger,
) *Service {
	return &Service{
		storage:     storage,
		transformer: transformer,
		extractor:   extractor,
		logger:      logger,
		chunkSize:   cfg.ChunkSize,
		overlap:     cfg.ChunkOverlap,
		topK:        cfg.TopK,
		markdown:    goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
}

// AddDocument chunks and stores a plain text or markdown document.
func (s *Service) AddDocument(ctx context.Context, title, content, sourceType string) (*models.KnowledgeDocument, error) {
	normalized := NormalizeWhitespace(content)
	if normalized == "" {
		return nil, fmt.Errorf("document content cannot be empty")
	}
	if sourceType == "" {
		sourceType = models.KnowledgeSourceText
	}

	doc := &models.KnowledgeDocument{
		ID:         common.NewDocumentID(),
		Title:      title,
		Content:    normalized,
		SourceType: sourceType,
	}

	pieces := ChunkText(normalized, s.chunkSize, s.overlap)
	doc.ChunkCount = len(pieces)

	if err := s.storage.SaveDocument(ctx, doc); err != nil {
		return nil, err
	}

	chunks := make([]*models.KnowledgeChunk, 0, len(pieces))
	for seq, text := range pieces {
		chunks = append(chunks, &models.KnowledgeChunk{
			ID:    fmt.Sprintf("%s#%d", doc.ID, seq),
			DocID: doc.ID,
			Seq:   seq,
			Text:  text,
		})
	}
	if err := s.storage.SaveChunks(ctx, chunks); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("doc_id", doc.ID).
		Str("source_type", sourceType).
		Int("chunks", len(chunks)).
		Msg("Added knowledge document")

	return doc, nil
}

// AddHTMLDocument converts HTML to markdown before ingestion. When no title
// is supplied, the HTML <title> or first <h1> is used.
func (s *Service) AddHTMLDocument(ctx context.Context, title, html string) (*models.KnowledgeDocument, error) {
	markdown, err := s.transformer.HTMLToMarkdown(html, "")
	if err != nil {
		return nil, fmt.Errorf("failed to convert HTML: %w", err)
	}
	if title == "" {
		title = s.transformer.ExtractTitle(html)
	}
	return s.AddDocument(ctx, title, markdown, models.KnowledgeSourceHTML)
}

// AddPDFDocument extracts text from PDF bytes before ingestion.
func (s *Service) AddPDFDocument(ctx context.Context, title string, pdf []byte) (*models.KnowledgeDocument, error) {
	text, err := s.extractor.ExtractTextFromBytes(ctx, pdf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract PDF text: %w", err)
	}
	return s.AddDocument(ctx, title, text, models.KnowledgeSourcePDF)
}

func (s *Service) DeleteDocument(ctx context.Context, id string) error {
	if err := s.storage.DeleteDocument(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("doc_id", id).Msg("Deleted knowledge document")
	return nil
}

func (s *Service) GetDocument(ctx context.Context, id string) (*models.KnowledgeDocument, error) {
	return s.storage.GetDocument(ctx, id)
}

func (s *Service) ListDocuments(ctx context.Context) ([]*models.KnowledgeDocumentInfo, error) {
	docs, err := s.storage.ListDocuments(ctx)
	if err != nil {
		return nil, err
	}
	infos := make([]*models.KnowledgeDocumentInfo, 0, len(docs))
	for _, doc := range docs {
		infos = append(infos, &models.KnowledgeDocumentInfo{
			ID:         doc.ID,
			Title:      doc.Title,
			SourceType: doc.SourceType,
			ChunkCount: doc.ChunkCount,
			CreatedAt:  doc.CreatedAt,
		})
	}
	return infos, nil
}

// Retrieve returns the top-K chunks scored against the query.
func (s *Service) Retrieve(ctx context.Context, query string, topK int) ([]models.ScoredChunk, error) {
	if topK <= 0 {
		topK = s.topK
	}
	chunks, err := s.storage.AllChunks(ctx)
	if err != nil {
		return nil, err
	}
	return ScoreChunks(chunks, query, topK), nil
}

// BuildContext joins retrieved chunk texts with blank lines for prompt
// assembly. An empty string means nothing relevant was found.
func (s *Service) BuildContext(ctx context.Context, query string) (string, error) {
	scored, err := s.Retrieve(ctx, query, s.topK)
	if err != nil {
		return "", err
	}
	texts := make([]string, 0, len(scored))
	for _, sc := range scored {
		texts = append(texts, sc.Chunk.Text)
	}
	return strings.Join(texts, "\n\n"), nil
}

// RenderDocumentHTML renders a stored document to HTML for admin preview.
func (s *Service) RenderDocumentHTML(ctx context.Context, id string) (string, error) {
	doc, err := s.storage.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(doc.Content), &buf); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}
