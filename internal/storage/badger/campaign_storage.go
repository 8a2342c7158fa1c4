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

// CampaignStorage implements interfaces.CampaignStorage using BadgerDB
type CampaignStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewCampaignStorage creates a new campaign storage instance
func NewCampaignStorage(db *BadgerDB, logger arbor.ILogger) interfaces.CampaignStorage {
	return &CampaignStorage{
		db:     db,
		logger: logger,
	}
}

func (s *CampaignStorage) SaveCampaign(ctx context.Context, campaign *models.Campaign) error {
	if campaign.ID == "" {
		return fmt.Errorf("campaign ID cannot be empty")
	}
	now := time.Now()
	if campaign.CreatedAt.IsZero() {
		campaign.CreatedAt = now
	}
	campaign.UpdatedAt = now

	if err := s.db.store.Upsert(campaign.ID, campaign); err != nil {
		return fmt.Errorf("failed to save campaign: %w", err)
	}
	return nil
}

func (s *CampaignStorage) GetCampaign(ctx context.Context, id string) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := s.db.store.Get(id, &campaign); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("campaign not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get campaign: %w", err)
	}
	return &campaign, nil
}

func (s *CampaignStorage) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	var campaigns []*models.Campaign
	query := badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()
	if err := s.db.store.Find(&campaigns, query); err != nil {
		return nil, fmt.Errorf("failed to list campaigns: %w", err)
	}
	return campaigns, nil
}
