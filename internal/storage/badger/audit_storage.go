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

// AuditStorage implements interfaces.AuditStorage using BadgerDB
type AuditStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAuditStorage creates a new audit storage instance
func NewAuditStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AuditStorage {
	return &AuditStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AuditStorage) Append(ctx context.Context, entry *models.AuditEntry) error {
	if entry.ID == "" {
		return fmt.Errorf("audit entry ID cannot be empty")
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}

	if err := s.db.store.Insert(entry.ID, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

func (s *AuditStorage) ListEntries(ctx context.Context, limit, offset int) ([]*models.AuditEntry, error) {
	var entries []*models.AuditEntry
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if offset > 0 {
		query = query.Skip(offset)
	}
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := s.db.store.Find(&entries, query); err != nil {
		return nil, fmt.Errorf("failed to list audit entries: %w", err)
	}
	return entries, nil
}
