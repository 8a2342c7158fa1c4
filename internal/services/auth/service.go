package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/respondo/internal/common"
	"github.com/ternarybob/respondo/internal/interfaces"
	"github.com/ternarybob/respondo/internal/models"
	"golang.org/x/crypto/pbkdf2"
)

const (
	tokenIssuer     = "respondo"
	pbkdf2Iters     = 200000
	pbkdf2KeyLen    = 32
	pbkdf2SaltLen   = 16
	minPasswordLen  = 6
	defaultTokenTTL = 24 * time.Hour
)

// Service manages admin console accounts and signed access tokens.
type Service struct {
	storage interfaces.AccountStorage
	config  *common.AuthConfig
	logger  arbor.ILogger
}

var _ interfaces.AuthService = (*Service)(nil)

// NewService creates an auth service backed by account storage.
func NewService(storage interfaces.AccountStorage, config *common.AuthConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage: storage,
		config:  config,
		logger:  logger,
	}
}

// Register creates a new admin account. Emails are stored lowercase and
// must be unique.
func (s *Service) Register(ctx context.Context, email, password string) (*models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("invalid email address")
	}
	if len(password) < minPasswordLen {
		return nil, fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	existing, err := s.storage.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("account already exists for %s", email)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := &models.Account{
		ID:           common.NewAccountID(),
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info().Str("account_id", account.ID).Str("email", email).Msg("Admin account registered")
	return account, nil
}

// Login verifies credentials and issues an access token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *models.Account, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	account, err := s.storage.GetAccountByEmail(ctx, email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to look up account: %w", err)
	}
	if account == nil || !verifyPassword(password, account.PasswordHash) {
		// Same error for unknown email and wrong password
		return "", nil, fmt.Errorf("invalid credentials")
	}

	token, err := s.issueToken(account)
	if err != nil {
		return "", nil, err
	}

	s.logger.Debug().Str("account_id", account.ID).Msg("Login succeeded")
	return token, account, nil
}

// VerifyToken validates a token signature and expiry and loads its account.
func (s *Service) VerifyToken(ctx context.Context, token string) (*models.Account, error) {
	if s.config.TokenSecret == "" {
		return nil, fmt.Errorf("token secret not configured")
	}

	parsed, err := jwt.ParseWithClaims(token, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.config.TokenSecret), nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := parsed.Claims.(*jwt.RegisteredClaims)
	if !ok || !parsed.Valid {
		return nil, fmt.Errorf("invalid token claims")
	}

	account, err := s.storage.GetAccount(ctx, claims.Subject)
	if err != nil {
		return nil, fmt.Errorf("account not found for token")
	}
	return account, nil
}

// ChangePassword verifies the current password before storing a new hash.
func (s *Service) ChangePassword(ctx context.Context, accountID, current, updated string) error {
	account, err := s.storage.GetAccount(ctx, accountID)
	if err != nil {
		return fmt.Errorf("account not found: %w", err)
	}
	if !verifyPassword(current, account.PasswordHash) {
		return fmt.Errorf("current password is incorrect")
	}
	if len(updated) < minPasswordLen {
		return fmt.Errorf("password must be at least %d characters", minPasswordLen)
	}

	hash, err := hashPassword(updated)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	account.PasswordHash = hash

	if err := s.storage.SaveAccount(ctx, account); err != nil {
		return fmt.Errorf("failed to save account: %w", err)
	}

	s.logger.Info().Str("account_id", accountID).Msg("Password changed")
	return nil
}

func (s *Service) issueToken(account *models.Account) (string, error) {
	if s.config.TokenSecret == "" {
		return "", fmt.Errorf("token secret not configured")
	}

	ttl := defaultTokenTTL
	if s.config.TokenTTLMinutes > 0 {
		ttl = time.Duration(s.config.TokenTTLMinutes) * time.Minute
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   account.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.config.TokenSecret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// hashPassword derives a PBKDF2-SHA256 hash with a random salt. The encoded
// form carries the iteration count so parameters can change without
// invalidating stored hashes.
func hashPassword(password string) (string, error) {
	salt := make([]byte, pbkdf2SaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", err
	}

	key := pbkdf2.Key([]byte(password), salt, pbkdf2Iters, pbkdf2KeyLen, sha256.New)
	return fmt.Sprintf("pbkdf2-sha256$%d$%s$%s",
		pbkdf2Iters,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key)), nil
}

func verifyPassword(password, encoded string) bool {
	parts := strings.Split(encoded, "$")
	if len(parts) != 4 || parts[0] != "pbkdf2-sha256" {
		return false
	}

	iters, err := strconv.Atoi(parts[1])
	if err != nil || iters <= 0 {
		return false
	}
	salt, err := base64.RawStdEncoding.DecodeString(parts[2])
	if err != nil {
		return false
	}
	expected, err := base64.RawStdEncoding.DecodeString(parts[3])
	if err != nil {
		return false
	}

	key := pbkdf2.Key([]byte(password), salt, iters, len(expected), sha256.New)
	return subtle.ConstantTimeCompare(key, expected) == 1
}
