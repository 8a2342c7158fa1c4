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

// ConversationStorage implements the ConversationStorage interface for Badger
type ConversationStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewConversationStorage creates a new ConversationStorage instance
func NewConversationStorage(db *BadgerDB, logger arbor.ILogger) interfaces.ConversationStorage {
	return &ConversationStorage{
		db:     db,
		logger: logger,
	}
}

func (s *ConversationStorage) SaveConversation(ctx context.Context, conv *models.Conversation) error {
	if conv.ID == "" {
		return fmt.Errorf("conversation ID is required")
	}

	now := time.Now()
	if conv.CreatedAt.IsZero() {
		conv.CreatedAt = now
	}
	conv.UpdatedAt = now

	if err := s.db.Store().Upsert(conv.ID, conv); err != nil {
		return fmt.Errorf("failed to save conversation: %w", err)
	}
	return nil
}

func (s *ConversationStorage) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	var conv models.Conversation
	if err := s.db.Store().Get(id, &conv); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("conversation not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get conversation: %w", err)
	}
	return &conv, nil
}

// GetOpenConversation returns the most recently updated open conversation for
// the user on the platform, or nil when none exists.
func (s *ConversationStorage) GetOpenConversation(ctx context.Context, userID, platform string) (*models.Conversation, error) {
	var convs []models.Conversation
	err := s.db.Store().Find(&convs, badgerhold.
		Where("UserID").Eq(userID).
		And("Platform").Eq(platform).
		And("Status").Eq(models.ConversationOpen).
		SortBy("UpdatedAt").Reverse())
	if err != nil {
		return nil, fmt.Errorf("failed to find open conversation: %w", err)
	}
	if len(convs) == 0 {
		return nil, nil
	}
	return &convs[0], nil
}

func (s *ConversationStorage) ListConversations(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Conversation, error) {
	query := badgerhold.Where("ID").Ne("")
	if opts != nil && opts.Platform != "" {
		query = badgerhold.Where("Platform").Eq(opts.Platform)
	}
	query = query.SortBy("UpdatedAt").Reverse()
	if opts != nil && opts.Offset > 0 {
		query = query.Skip(opts.Offset)
	}
	if opts != nil && opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}

	var convs []models.Conversation
	if err := s.db.Store().Find(&convs, query); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}

	result := make([]*models.Conversation, len(convs))
	for i := range convs {
		result[i] = &convs[i]
	}
	return result, nil
}

func (s *ConversationStorage) CountConversations(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Conversation{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count conversations: %w", err)
	}
	return int(count), nil
}

func (s *ConversationStorage) CountOpenConversations(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Conversation{}, badgerhold.Where("Status").Eq(models.ConversationOpen))
	if err != nil {
		return 0, fmt.Errorf("failed to count open conversations: %w", err)
	}
	return int(count), nil
}

func (s *ConversationStorage) CountHandoffConversations(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.Conversation{}, badgerhold.Where("HandoffEnabled").Eq(true))
	if err != nil {
		return 0, fmt.Errorf("failed to count handoff conversations: %w", err)
	}
	return int(count), nil
}
