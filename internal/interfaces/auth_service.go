package interfaces

import (
	"context"

	"github.com/ternarybob/respondo/internal/models"
)

// AuthService manages admin console accounts and access tokens.
type AuthService interface {
	// Register creates an account. Email must contain "@" and the password
	// must be at least 6 characters. Duplicate emails are rejected.
	Register(ctx context.Context, email, password string) (*models.Account, error)

	// Login verifies credentials and issues a signed access token.
	Login(ctx context.Context, email, password string) (string, *models.Account, error)

	// VerifyToken validates a token and returns the account it names.
	VerifyToken(ctx context.Context, token string) (*models.Account, error)

	// ChangePassword verifies the current password and stores a new hash.
	ChangePassword(ctx context.Context, accountID, current, updated string) error
}
