package broadcast

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"github.com/ternarybob/respondo/internal/storage/badger"
)

type recordingSender struct {
	platform string
	mu       sync.Mutex
	sentTo   []string
	fail     bool
}

func (r *recordingSender) Platform() string { return r.platform }

func (r *recordingSender) Send(ctx context.Context, externalID, text string) error {
	if r.fail {
		return fmt.Errorf("send rejected")
	}
	r.mu.Lock()
	r.sentTo = append(r.sentTo, externalID)
	r.mu.Unlock()
	return nil
}

type fakeRegistry struct {
	senders map[string]interfaces.ChannelSender
}

func (f *fakeRegistry) SenderFor(platform string) interfaces.ChannelSender {
	return f.senders[platform]
}

func newTestService(t *testing.T, registry interfaces.SenderRegistry) (*Service, interfaces.StorageManager) {
	t.Helper()

	logger := arbor.NewLogger()
	manager, err := badger.NewManager(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	return NewService(manager, registry, &common.BroadcastConfig{Concurrency: 2}, logger), manager
}

func seedUsers(t *testing.T, manager interfaces.StorageManager, platform string, externalIDs ...string) {
	t.Helper()
	for _, externalID := range externalIDs {
		user := &models.User{
			ID:         common.NewUserID(),
			Platform:   platform,
			ExternalID: externalID,
		}
		if err := manager.UserStorage().SaveUser(context.Background(), user); err != nil {
			t.Fatalf("Failed to save user: %v", err)
		}
	}
}

func TestRunCampaignFansOut(t *testing.T) {
	sender := &recordingSender{platform: models.PlatformTelegram}
	registry := &fakeRegistry{senders: map[string]interfaces.ChannelSender{models.PlatformTelegram: sender}}
	svc, manager := newTestService(t, registry)
	ctx := context.Background()

	seedUsers(t, manager, models.PlatformTelegram, "100", "200", "300")
	seedUsers(t, manager, models.PlatformWhatsApp, "900")

	campaign := &models.Campaign{
		ID:       common.NewCampaignID(),
		Name:     "Spring sale",
		Platform: models.PlatformTelegram,
		Text:     "Everything is 20% off this week",
		Status:   models.CampaignPending,
	}
	if err := manager.CampaignStorage().SaveCampaign(ctx, campaign); err != nil {
		t.Fatalf("Failed to save campaign: %v", err)
	}

	if err := svc.RunCampaign(ctx, campaign.ID); err != nil {
		t.Fatalf("RunCampaign failed: %v", err)
	}

	if len(sender.sentTo) != 3 {
		t.Errorf("Expected 3 sends, got %d (%v)", len(sender.sentTo), sender.sentTo)
	}

	stored, err := manager.CampaignStorage().GetCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Failed to reload campaign: %v", err)
	}
	if stored.Status != models.CampaignDone {
		t.Errorf("Expected status done, got %s", stored.Status)
	}
	if stored.SentCount != 3 || stored.FailCount != 0 {
		t.Errorf("Unexpected counts: sent=%d failed=%d", stored.SentCount, stored.FailCount)
	}

	entries, err := manager.AuditStorage().ListEntries(ctx, 10, 0)
	if err != nil {
		t.Fatalf("Failed to list audit entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Action != models.AuditCampaignRun {
		t.Errorf("Expected one campaign_run audit entry, got %v", entries)
	}
}

func TestRunCampaignAllSendsFail(t *testing.T) {
	sender := &recordingSender{platform: models.PlatformTelegram, fail: true}
	registry := &fakeRegistry{senders: map[string]interfaces.ChannelSender{models.PlatformTelegram: sender}}
	svc, manager := newTestService(t, registry)
	ctx := context.Background()

	seedUsers(t, manager, models.PlatformTelegram, "100", "200")

	campaign := &models.Campaign{
		ID:       common.NewCampaignID(),
		Name:     "Doomed",
		Platform: models.PlatformTelegram,
		Text:     "hello",
		Status:   models.CampaignPending,
	}
	if err := manager.CampaignStorage().SaveCampaign(ctx, campaign); err != nil {
		t.Fatalf("Failed to save campaign: %v", err)
	}

	if err := svc.RunCampaign(ctx, campaign.ID); err != nil {
		t.Fatalf("RunCampaign failed: %v", err)
	}

	stored, err := manager.CampaignStorage().GetCampaign(ctx, campaign.ID)
	if err != nil {
		t.Fatalf("Failed to reload campaign: %v", err)
	}
	if stored.Status != models.CampaignFailed {
		t.Errorf("Expected status failed, got %s", stored.Status)
	}
	if stored.FailCount != 2 {
		t.Errorf("Expected 2 failures, got %d", stored.FailCount)
	}
}

func TestCreateCampaignValidation(t *testing.T) {
	registry := &fakeRegistry{senders: map[string]interfaces.ChannelSender{
		models.PlatformTelegram: &recordingSender{platform: models.PlatformTelegram},
	}}
	svc, _ := newTestService(t, registry)
	ctx := context.Background()

	if _, err := svc.CreateCampaign(ctx, "", models.PlatformTelegram, "text", ""); err == nil {
		t.Error("Expected error for empty name")
	}
	if _, err := svc.CreateCampaign(ctx, "n", "carrierpigeon", "text", ""); err == nil {
		t.Error("Expected error for unknown platform")
	}
	// Web delivers in-band and has no outbound sender
	if _, err := svc.CreateCampaign(ctx, "n", models.PlatformWeb, "text", ""); err == nil {
		t.Error("Expected error for platform without sender")
	}
	if _, err := svc.CreateCampaign(ctx, "n", models.PlatformTelegram, "text", "* * * * *"); err == nil {
		t.Error("Expected error for sub-5-minute schedule")
	}

	campaign, err := svc.CreateCampaign(ctx, "Weekly digest", models.PlatformTelegram, "digest", "0 9 * * 1")
	if err != nil {
		t.Fatalf("CreateCampaign failed: %v", err)
	}
	if campaign.Status != models.CampaignScheduled {
		t.Errorf("Expected scheduled status, got %s", campaign.Status)
	}
}
