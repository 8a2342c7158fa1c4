package leads

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/storage/badger"
)

func newTestLeadService(t *testing.T, forwarding *common.ForwardingConfig) (*Service, interfaces.KeyValueStorage) {
	t.Helper()
	logger := arbor.NewLogger()

	storage, err := badger.NewManager(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	})
	if err != nil {
		t.Fatalf("Failed to open storage: %v", err)
	}
	t.Cleanup(func() { storage.Close() })

	svc := NewService(storage.LeadStorage(), nil, storage.KVStorage(), nil, forwarding, logger)
	return svc, storage.KVStorage()
}

func TestNotifyRecipient_PrefersRuntimeValue(t *testing.T) {
	svc, kv := newTestLeadService(t, &common.ForwardingConfig{LeadNotifyTo: "fallback@example.com"})
	ctx := context.Background()

	if err := kv.Set(ctx, "lead_notify_to", "ops@example.com", ""); err != nil {
		t.Fatalf("Failed to set runtime value: %v", err)
	}

	if to := svc.notifyRecipient(ctx); to != "ops@example.com" {
		t.Errorf("Expected runtime recipient, got %q", to)
	}
}

func TestNotifyRecipient_ConfigFallback(t *testing.T) {
	svc, _ := newTestLeadService(t, &common.ForwardingConfig{LeadNotifyTo: "fallback@example.com"})

	if to := svc.notifyRecipient(context.Background()); to != "fallback@example.com" {
		t.Errorf("Expected config fallback recipient, got %q", to)
	}
}

func TestNotifyRecipient_Unconfigured(t *testing.T) {
	svc, _ := newTestLeadService(t, &common.ForwardingConfig{})

	if to := svc.notifyRecipient(context.Background()); to != "" {
		t.Errorf("Expected empty recipient, got %q", to)
	}
}
