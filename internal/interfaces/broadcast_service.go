package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// BroadcastService schedules and runs outbound campaigns.
type BroadcastService interface {
	// CreateCampaign validates and stores a campaign. A campaign without a
	// schedule runs immediately in the background; scheduled campaigns are
	// registered with the cron runner.
	CreateCampaign(ctx context.Context, name, platform, text, schedule string) (*models.Campaign, error)

	ListCampaigns(ctx context.Context) ([]*models.Campaign, error)

	// RunCampaign fans the campaign text out to every user on its platform.
	RunCampaign(ctx context.Context, id string) error

	// Start registers scheduled campaigns and starts the cron runner.
	Start(ctx context.Context) error

	// Stop stops the cron runner and waits for in-flight sends.
	Stop()
}
