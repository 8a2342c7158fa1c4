package badger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AccountStorage implements interfaces.AccountStorage using BadgerDB
type AccountStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAccountStorage creates a new account storage instance
func NewAccountStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AccountStorage {
	return &AccountStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AccountStorage) SaveAccount(ctx context.Context, account *models.Account) error {
	if account.ID == "" {
		return fmt.Errorf("account ID cannot be empty")
	}
	account.Email = strings.ToLower(strings.TrimSpace(account.Email))
	now := time.Now()
	if account.CreatedAt.IsZero() {
		account.CreatedAt = now
	}
	account.UpdatedAt = now

	if err := s.db.store.Upsert(account.ID, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}
	return nil
}

func (s *AccountStorage) GetAccount(ctx context.Context, id string) (*models.Account, error) {
	var account models.Account
	if err := s.db.store.Get(id, &account); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("account not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetAccountByEmail returns nil without error when no account matches.
func (s *AccountStorage) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	var accounts []*models.Account
	query := badgerhold.Where("Email").Eq(normalized).Limit(1)
	if err := s.db.store.Find(&accounts, query); err != nil {
		return nil, fmt.Errorf("failed to find account by email: %w", err)
	}
	if len(accounts) == 0 {
		return nil, nil
	}
	return accounts[0], nil
}
