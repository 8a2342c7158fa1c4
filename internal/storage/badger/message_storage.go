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

// MessageStorage implements interfaces.MessageStorage using BadgerDB
type MessageStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewMessageStorage creates a new message storage instance
func NewMessageStorage(db *BadgerDB, logger arbor.ILogger) interfaces.MessageStorage {
	return &MessageStorage{
		db:     db,
		logger: logger,
	}
}

func (s *MessageStorage) SaveMessage(ctx context.Context, message *models.Message) error {
	if message.ID == "" {
		return fmt.Errorf("message ID cannot be empty")
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	if err := s.db.store.Upsert(message.ID, message); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}

// GetRecentMessages returns the last n messages of a conversation in
// chronological order (oldest first).
func (s *MessageStorage) GetRecentMessages(ctx context.Context, conversationID string, n int) ([]*models.Message, error) {
	var messages []*models.Message
	query := badgerhold.Where("ConversationID").Eq(conversationID).
		SortBy("CreatedAt").Reverse().Limit(n)
	if err := s.db.store.Find(&messages, query); err != nil {
		return nil, fmt.Errorf("failed to get recent messages: %w", err)
	}

	// Flip newest-first into chronological order
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *MessageStorage) GetLastMessage(ctx context.Context, conversationID string) (*models.Message, error) {
	var messages []*models.Message
	query := badgerhold.Where("ConversationID").Eq(conversationID).
		SortBy("CreatedAt").Reverse().Limit(1)
	if err := s.db.store.Find(&messages, query); err != nil {
		return nil, fmt.Errorf("failed to get last message: %w", err)
	}
	if len(messages) == 0 {
		return nil, nil
	}
	return messages[0], nil
}

// ListMessages returns messages across conversations, newest first, with
// optional platform filter and pagination.
func (s *MessageStorage) ListMessages(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Message, error) {
	var messages []*models.Message
	query := badgerhold.Where("ID").Ne("")
	if opts != nil && opts.Platform != "" {
		query = badgerhold.Where("Platform").Eq(opts.Platform)
	}
	query = query.SortBy("CreatedAt").Reverse()
	if opts != nil {
		if opts.Offset > 0 {
			query = query.Skip(opts.Offset)
		}
		if opts.Limit > 0 {
			query = query.Limit(opts.Limit)
		}
	}
	if err := s.db.store.Find(&messages, query); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

func (s *MessageStorage) CountMessages(ctx context.Context) (int, error) {
	count, err := s.db.store.Count(&models.Message{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count messages: %w", err)
	}
	return int(count), nil
}

func (s *MessageStorage) CountMessagesByPlatform(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, platform := range models.KnownPlatforms {
		count, err := s.db.store.Count(&models.Message{}, badgerhold.Where("Platform").Eq(platform))
		if err != nil {
			return nil, fmt.Errorf("failed to count messages for %s: %w", platform, err)
		}
		if count > 0 {
			counts[platform] = int(count)
		}
	}
	return counts, nil
}

func (s *MessageStorage) CountMessagesSince(ctx context.Context, since time.Time) (int, error) {
	count, err := s.db.store.Count(&models.Message{}, badgerhold.Where("CreatedAt").Ge(since))
	if err != nil {
		return 0, fmt.Errorf("failed to count messages since %s: %w", since.Format(time.RFC3339), err)
	}
	return int(count), nil
}
