package broadcast

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/ternarybob/respondo/internal/services/workers"
)

// Service schedules and runs outbound campaigns. Immediate campaigns fan
// out in the background as soon as they are created; scheduled campaigns
// run on their cron expression until stopped.
type Service struct {
	storage interfaces.StorageManager
	senders interfaces.SenderRegistry
	config  *common.BroadcastConfig
	logger  arbor.ILogger

	cron    *cron.Cron
	mu      sync.Mutex
	entries map[string]cron.EntryID
	running bool
}

var _ interfaces.BroadcastService = (*Service)(nil)

// NewService creates a broadcast service. Start must be called before
// scheduled campaigns fire.
func NewService(storage interfaces.StorageManager, senders interfaces.SenderRegistry, config *common.BroadcastConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		senders: senders,
		config:  config,
		logger:  logger,
		cron:    cron.New(),
		entries: make(map[string]cron.EntryID),
	}
}

// CreateCampaign validates and stores a campaign. An empty schedule runs
// the campaign immediately in the background.
func (s *Service) CreateCampaign(ctx context.Context, name, platform, text, schedule string) (*models.Campaign, error) {
	if name == "" || text == "" {
		return nil, fmt.Errorf("campaign name and text are required")
	}
	if !models.IsKnownPlatform(platform) {
		return nil, fmt.Errorf("unknown platform: %s", platform)
	}
	if s.senders.SenderFor(platform) == nil {
		return nil, fmt.Errorf("platform %s has no outbound sender", platform)
	}
	if schedule != "" {
		if err := common.ValidateBroadcastSchedule(schedule); err != nil {
			return nil, err
		}
	}

	campaign := &models.Campaign{
		ID:       common.NewCampaignID(),
		Name:     name,
		Platform: platform,
		Text:     text,
		Schedule: schedule,
		Status:   models.CampaignPending,
	}
	if schedule != "" {
		campaign.Status = models.CampaignScheduled
	}

	if err := s.storage.CampaignStorage().SaveCampaign(ctx, campaign); err != nil {
		return nil, fmt.Errorf("failed to save campaign: %w", err)
	}

	if schedule == "" {
		// Creation returns immediately; the fan-out must not die with the
		// request context.
		common.SafeGo(s.logger, "runCampaign", func() {
			if err := s.RunCampaign(context.Background(), campaign.ID); err != nil {
				s.logger.Error().Err(err).Str("campaign_id", campaign.ID).Msg("Campaign run failed")
			}
		})
	} else {
		s.registerSchedule(campaign)
	}

	s.logger.Info().
		Str("campaign_id", campaign.ID).
		Str("platform", platform).
		Str("schedule", schedule).
		Msg("Campaign created")
	return campaign, nil
}

// ListCampaigns returns all campaigns, newest first.
func (s *Service) ListCampaigns(ctx context.Context) ([]*models.Campaign, error) {
	return s.storage.CampaignStorage().ListCampaigns(ctx)
}

// RunCampaign fans the campaign text out to every user on its platform.
func (s *Service) RunCampaign(ctx context.Context, id string) error {
	campaign, err := s.storage.CampaignStorage().GetCampaign(ctx, id)
	if err != nil {
		return fmt.Errorf("campaign not found: %w", err)
	}

	sender := s.senders.SenderFor(campaign.Platform)
	if sender == nil {
		s.finishRun(ctx, campaign, 0, 0, models.CampaignFailed)
		return fmt.Errorf("platform %s has no outbound sender", campaign.Platform)
	}

	users, err := s.storage.UserStorage().ListUsersByPlatform(ctx, campaign.Platform)
	if err != nil {
		s.finishRun(ctx, campaign, 0, 0, models.CampaignFailed)
		return fmt.Errorf("failed to list recipients: %w", err)
	}

	campaign.Status = models.CampaignRunning
	campaign.LastRunAt = time.Now()
	if err := s.storage.CampaignStorage().SaveCampaign(ctx, campaign); err != nil {
		return fmt.Errorf("failed to mark campaign running: %w", err)
	}

	var sent, failed int64
	pool := workers.NewPool(s.config.Concurrency, s.logger)
	pool.Start()

	for _, user := range users {
		externalID := user.ExternalID
		if err := pool.Submit(func(jobCtx context.Context) error {
			if err := sender.Send(jobCtx, externalID, campaign.Text); err != nil {
				atomic.AddInt64(&failed, 1)
				return fmt.Errorf("send to %s failed: %w", externalID, err)
			}
			atomic.AddInt64(&sent, 1)
			return nil
		}); err != nil {
			atomic.AddInt64(&failed, 1)
		}
	}
	pool.Wait()

	status := models.CampaignDone
	if len(users) > 0 && sent == 0 {
		status = models.CampaignFailed
	}
	s.finishRun(ctx, campaign, int(sent), int(failed), status)

	s.logger.Info().
		Str("campaign_id", campaign.ID).
		Int("recipients", len(users)).
		Int64("sent", sent).
		Int64("failed", failed).
		Msg("Campaign run complete")
	return nil
}

// Start registers stored scheduled campaigns and starts the cron runner.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("broadcast service already started")
	}
	s.running = true
	s.mu.Unlock()

	campaigns, err := s.storage.CampaignStorage().ListCampaigns(ctx)
	if err != nil {
		return fmt.Errorf("failed to load campaigns: %w", err)
	}

	registered := 0
	for _, campaign := range campaigns {
		if campaign.Schedule == "" || campaign.Status == models.CampaignDone || campaign.Status == models.CampaignFailed {
			continue
		}
		s.registerSchedule(campaign)
		registered++
	}

	s.cron.Start()
	s.logger.Info().Int("scheduled", registered).Msg("Broadcast scheduler started")
	return nil
}

// Stop halts the cron runner and waits for in-flight runs to finish.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Broadcast scheduler stopped")
}

func (s *Service) registerSchedule(campaign *models.Campaign) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[campaign.ID]; exists {
		return
	}

	id := campaign.ID
	entryID, err := s.cron.AddFunc(campaign.Schedule, func() {
		if err := s.RunCampaign(context.Background(), id); err != nil {
			s.logger.Error().Err(err).Str("campaign_id", id).Msg("Scheduled campaign run failed")
		}
	})
	if err != nil {
		s.logger.Error().Err(err).Str("campaign_id", campaign.ID).Msg("Failed to register campaign schedule")
		return
	}
	s.entries[campaign.ID] = entryID
}

func (s *Service) finishRun(ctx context.Context, campaign *models.Campaign, sent, failed int, status string) {
	campaign.Status = status
	campaign.SentCount = sent
	campaign.FailCount = failed
	if err := s.storage.CampaignStorage().SaveCampaign(ctx, campaign); err != nil {
		s.logger.Error().Err(err).Str("campaign_id", campaign.ID).Msg("Failed to save campaign result")
	}

	entry := &models.AuditEntry{
		ID:     common.NewAuditID(),
		Action: models.AuditCampaignRun,
		Detail: map[string]string{
			"campaign_id": campaign.ID,
			"platform":    campaign.Platform,
			"status":      status,
			"sent":        strconv.Itoa(sent),
			"failed":      strconv.Itoa(failed),
		},
	}
	if err := s.storage.AuditStorage().Append(ctx, entry); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to append campaign audit entry")
	}
}
