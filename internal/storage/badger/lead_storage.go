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

// LeadStorage implements interfaces.LeadStorage using BadgerDB
type LeadStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewLeadStorage creates a new lead storage instance
func NewLeadStorage(db *BadgerDB, logger arbor.ILogger) interfaces.LeadStorage {
	return &LeadStorage{
		db:     db,
		logger: logger,
	}
}

func (s *LeadStorage) SaveLead(ctx context.Context, lead *models.Lead) error {
	if lead.ID == "" {
		return fmt.Errorf("lead ID cannot be empty")
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = time.Now()
	}

	if err := s.db.store.Upsert(lead.ID, lead); err != nil {
		return fmt.Errorf("failed to save lead: %w", err)
	}
	return nil
}

func (s *LeadStorage) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	var lead models.Lead
	if err := s.db.store.Get(id, &lead); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("lead not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}
	return &lead, nil
}

func (s *LeadStorage) ListLeads(ctx context.Context, opts *interfaces.ListOptions) ([]*models.Lead, error) {
	var leads []*models.Lead
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
	if err := s.db.store.Find(&leads, query); err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	return leads, nil
}

func (s *LeadStorage) CountLeads(ctx context.Context) (int, error) {
	count, err := s.db.store.Count(&models.Lead{}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return int(count), nil
}

func (s *LeadStorage) CountLeadsByPlatform(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int)
	for _, platform := range models.KnownPlatforms {
		count, err := s.db.store.Count(&models.Lead{}, badgerhold.Where("Platform").Eq(platform))
		if err != nil {
			return nil, fmt.Errorf("failed to count leads for %s: %w", platform, err)
		}
		if count > 0 {
			counts[platform] = int(count)
		}
	}
	return counts, nil
}
