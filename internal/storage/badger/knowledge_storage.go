package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// KnowledgeStorage implements interfaces.KnowledgeStorage using BadgerDB
type KnowledgeStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewKnowledgeStorage creates a new knowledge storage instance
func NewKnowledgeStorage(db *BadgerDB, logger arbor.ILogger) interfaces.KnowledgeStorage {
	return &KnowledgeStorage{
		db:     db,
		logger: logger,
	}
}

func (s *KnowledgeStorage) SaveDocument(ctx context.Context, doc *models.KnowledgeDocument) error {
	if doc.ID == "" {
		return fmt.Errorf("document ID cannot be empty")
	}
	now := time.Now()
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = now
	}
	doc.UpdatedAt = now

	if err := s.db.store.Upsert(doc.ID, doc); err != nil {
		return fmt.Errorf("failed to save document: %w", err)
	}
	return nil
}

func (s *KnowledgeStorage) GetDocument(ctx context.Context, id string) (*models.KnowledgeDocument, error) {
	var doc models.KnowledgeDocument
	if err := s.db.store.Get(id, &doc); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("document not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get document: %w", err)
	}
	return &doc, nil
}

// DeleteDocument removes a document and its chunks. Deleting an unknown
// document is not an error.
func (s *KnowledgeStorage) DeleteDocument(ctx context.Context, id string) error {
	if err := s.db.store.Delete(id, &models.KnowledgeDocument{}); err != nil && err != badgerhold.ErrNotFound {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	if err := s.db.store.DeleteMatching(&models.KnowledgeChunk{}, badgerhold.Where("DocID").Eq(id)); err != nil {
		return fmt.Errorf("failed to delete document chunks: %w", err)
	}
	return nil
}

func (s *KnowledgeStorage) ListDocuments(ctx context.Context) ([]*models.KnowledgeDocument, error) {
	var docs []*models.KnowledgeDocument
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if err := s.db.store.Find(&docs, query); err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	return docs, nil
}

func (s *KnowledgeStorage) SaveChunks(ctx context.Context, chunks []*models.KnowledgeChunk) error {
	for _, chunk := range chunks {
		if chunk.ID == "" {
			return fmt.Errorf("chunk ID cannot be empty")
		}
		if err := s.db.store.Upsert(chunk.ID, chunk); err != nil {
			return fmt.Errorf("failed to save chunk %s: %w", chunk.ID, err)
		}
	}
	return nil
}

func (s *KnowledgeStorage) GetChunks(ctx context.Context, docID string) ([]*models.KnowledgeChunk, error) {
	var chunks []*models.KnowledgeChunk
	query := badgerhold.Where("DocID").Eq(docID).SortBy("Seq")
	if err := s.db.store.Find(&chunks, query); err != nil {
		return nil, fmt.Errorf("failed to get chunks: %w", err)
	}
	return chunks, nil
}

func (s *KnowledgeStorage) AllChunks(ctx context.Context) ([]*models.KnowledgeChunk, error) {
	var chunks []*models.KnowledgeChunk
	if err := s.db.store.Find(&chunks, nil); err != nil {
		return nil, fmt.Errorf("failed to load chunks: %w", err)
	}
	return chunks, nil
}

func (s *KnowledgeStorage) CountChunks(ctx context.Context) (int, error) {
	count, err := s.db.store.Count(&models.KnowledgeChunk{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count chunks: %w", err)
	}
	return int(count), nil
}
