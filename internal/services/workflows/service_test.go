package workflows

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/storage/badger"
)

func newTestService(t *testing.T) (*Service, interfaces.WorkflowStorage) {
	t.Helper()
	logger := arbor.NewLogger()

	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{
		Path: filepath.Join(t.TempDir(), "db"),
	})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	storage := badger.NewWorkflowStorage(db, logger)
	return NewService(storage, logger), storage
}

func TestApplyRules_AutoReplyOverride(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, "urgent", []string{"urgent"}, "auto_reply:Calling you now"); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	reply, rule, err := svc.ApplyRules(ctx, "this is urgent, please respond", "generated reply")
	if err != nil {
		t.Fatalf("ApplyRules failed: %v", err)
	}
	if reply != "Calling you now" {
		t.Errorf("Expected rule override, got %q", reply)
	}
	if rule == nil || rule.Name != "urgent" {
		t.Errorf("Expected urgent rule to win, got %+v", rule)
	}
}

func TestApplyRules_LastMatchWins(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, "first", []string{"delivery"}, "auto_reply:First answer"); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}
	if _, err := svc.CreateRule(ctx, "second", []string{"delivery"}, "auto_reply:Second answer"); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	reply, rule, err := svc.ApplyRules(ctx, "where is my delivery?", "generated reply")
	if err != nil {
		t.Fatalf("ApplyRules failed: %v", err)
	}
	if reply != "Second answer" {
		t.Errorf("Expected last matching rule to win, got %q", reply)
	}
	if rule == nil || rule.Name != "second" {
		t.Errorf("Expected second rule, got %+v", rule)
	}
}

func TestApplyRules_NoMatchKeepsGeneratedReply(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.CreateRule(ctx, "urgent", []string{"urgent"}, "auto_reply:Calling you now"); err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}

	reply, rule, err := svc.ApplyRules(ctx, "just saying hello", "generated reply")
	if err != nil {
		t.Fatalf("ApplyRules failed: %v", err)
	}
	if reply != "generated reply" || rule != nil {
		t.Errorf("Expected generated reply to survive, got %q (rule %+v)", reply, rule)
	}
}

func TestApplyRules_DisabledRuleIgnored(t *testing.T) {
	svc, storage := newTestService(t)
	ctx := context.Background()

	rule, err := svc.CreateRule(ctx, "urgent", []string{"urgent"}, "auto_reply:Calling you now")
	if err != nil {
		t.Fatalf("Failed to create rule: %v", err)
	}
	rule.Enabled = false
	if err := storage.SaveRule(ctx, rule); err != nil {
		t.Fatalf("Failed to disable rule: %v", err)
	}

	reply, winner, err := svc.ApplyRules(ctx, "urgent help needed", "generated reply")
	if err != nil {
		t.Fatalf("ApplyRules failed: %v", err)
	}
	if reply != "generated reply" || winner != nil {
		t.Errorf("Expected disabled rule to be skipped, got %q (rule %+v)", reply, winner)
	}
}

func TestSeedFromDir(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	dir := t.TempDir()
	seed := `rules:
  - name: greeting
    keywords: ["hello", "hi"]
    action: "auto_reply:Welcome! How can we help?"
  - name: urgent
    keywords: ["urgent"]
    action: "auto_reply:Calling you now"
`
	if err := os.WriteFile(filepath.Join(dir, "rules.yaml"), []byte(seed), 0644); err != nil {
		t.Fatalf("Failed to write seed file: %v", err)
	}

	if err := svc.SeedFromDir(ctx, dir); err != nil {
		t.Fatalf("SeedFromDir failed: %v", err)
	}
	rules, err := svc.ListRules(ctx)
	if err != nil {
		t.Fatalf("ListRules failed: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("Expected 2 seeded rules, got %d", len(rules))
	}

	// Seeding again must not duplicate
	if err := svc.SeedFromDir(ctx, dir); err != nil {
		t.Fatalf("Second SeedFromDir failed: %v", err)
	}
	rules, _ = svc.ListRules(ctx)
	if len(rules) != 2 {
		t.Errorf("Expected seeding to be idempotent, got %d rules", len(rules))
	}

	if err := svc.SeedFromDir(ctx, filepath.Join(dir, "missing")); err != nil {
		t.Errorf("Expected missing directory to be a no-op, got %v", err)
	}
}
