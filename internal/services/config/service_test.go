package config

import (
	"context"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
)

func TestGetConfigReturnsClone(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Bot.Name = "Respondo"

	svc, err := NewService(cfg, nil, arbor.NewLogger())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	snapshot, err := svc.GetConfig(context.Background())
	if err != nil {
		t.Fatalf("GetConfig failed: %v", err)
	}

	clone, ok := snapshot.(*common.Config)
	if !ok {
		t.Fatalf("Expected *common.Config, got %T", snapshot)
	}
	if clone.Bot.Name != "Respondo" {
		t.Errorf("Clone lost bot name, got %q", clone.Bot.Name)
	}

	clone.Bot.Name = "mutated"
	if cfg.Bot.Name != "Respondo" {
		t.Error("Mutating the clone changed the live config")
	}
}

func TestResolveSettingFallsBackToConfig(t *testing.T) {
	svc, err := NewService(common.NewDefaultConfig(), nil, arbor.NewLogger())
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	value, err := svc.ResolveSetting(context.Background(), "pricing_summary", "from-config")
	if err != nil {
		t.Fatalf("ResolveSetting failed: %v", err)
	}
	if value != "from-config" {
		t.Errorf("Expected config fallback, got %q", value)
	}

	if _, err := svc.ResolveSetting(context.Background(), "missing_setting", ""); err == nil {
		t.Error("Expected error when setting is nowhere defined")
	}
}

func TestNewServiceRequiresConfig(t *testing.T) {
	if _, err := NewService(nil, nil, arbor.NewLogger()); err == nil {
		t.Error("Expected error for nil config")
	}
}
