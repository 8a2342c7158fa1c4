package auth

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/storage/badger"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	logger := arbor.NewLogger()
	db, err := badger.NewBadgerDB(logger, &common.BadgerConfig{Path: filepath.Join(t.TempDir(), "db")})
	if err != nil {
		t.Fatalf("Failed to open test DB: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cfg := &common.AuthConfig{
		TokenSecret:     "test-secret",
		TokenTTLMinutes: 60,
	}
	return NewService(badger.NewAccountStorage(db, logger), cfg, logger)
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "Admin@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if account.Email != "admin@example.com" {
		t.Errorf("Expected lowercased email, got %q", account.Email)
	}
	if account.PasswordHash == "hunter22" || account.PasswordHash == "" {
		t.Error("Password stored without hashing")
	}

	token, logged, err := svc.Login(ctx, "admin@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if token == "" {
		t.Fatal("Expected a token")
	}
	if logged.ID != account.ID {
		t.Errorf("Login returned account %s, expected %s", logged.ID, account.ID)
	}

	verified, err := svc.VerifyToken(ctx, token)
	if err != nil {
		t.Fatalf("VerifyToken failed: %v", err)
	}
	if verified.ID != account.ID {
		t.Errorf("Token resolved to account %s, expected %s", verified.ID, account.ID)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "not-an-email", "hunter22"); err == nil {
		t.Error("Expected error for email without @")
	}
	if _, err := svc.Register(ctx, "a@b.com", "short"); err == nil {
		t.Error("Expected error for password under 6 characters")
	}

	if _, err := svc.Register(ctx, "dup@example.com", "hunter22"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "dup@example.com", "another1"); err == nil {
		t.Error("Expected error for duplicate email")
	}
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "who@example.com", "hunter22"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "who@example.com", "wrongpass"); err == nil {
		t.Error("Expected error for wrong password")
	}
	if _, _, err := svc.Login(ctx, "nobody@example.com", "hunter22"); err == nil {
		t.Error("Expected error for unknown email")
	}
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	svc := newTestService(t)

	if _, err := svc.VerifyToken(context.Background(), "not.a.token"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestChangePassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	account, err := svc.Register(ctx, "rotate@example.com", "original1")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.ChangePassword(ctx, account.ID, "wrong", "replacement1"); err == nil {
		t.Error("Expected error when current password is wrong")
	}
	if err := svc.ChangePassword(ctx, account.ID, "original1", "replacement1"); err != nil {
		t.Fatalf("ChangePassword failed: %v", err)
	}

	if _, _, err := svc.Login(ctx, "rotate@example.com", "original1"); err == nil {
		t.Error("Old password still accepted")
	}
	if _, _, err := svc.Login(ctx, "rotate@example.com", "replacement1"); err != nil {
		t.Errorf("New password rejected: %v", err)
	}
}
