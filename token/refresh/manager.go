package refresh

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/jrsteele09/go-token-service/internal/config"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Issue describes who a new refresh token is bound to
type Issue struct {
	UserPoolID string
	ClientID   string
	UserID     string
	Scope      string
	Expiry     time.Duration // Zero uses the configured default
}

// Manager handles refresh token creation and lookup
type Manager struct {
	repo   Repo
	config config.OAuthConfig
}

// NewManager creates a new refresh token manager
func NewManager(repo Repo, cfg config.OAuthConfig) *Manager {
	return &Manager{
		repo:   repo,
		config: cfg,
	}
}

// Create generates a new opaque refresh token and stores its metadata.
// Existing tokens for the same user stay valid until they expire.
func (m *Manager) Create(ctx context.Context, issue Issue) (string, error) {
	tokenBytes := make([]byte, m.config.GetRefreshTokenLength())
	if _, err := rand.Read(tokenBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	tokenStr := hex.EncodeToString(tokenBytes)

	if err := m.store(ctx, tokenStr, issue); err != nil {
		return "", err
	}
	return tokenStr, nil
}

// Import stores a refresh token minted outside this service, e.g. from a seed
// file. Only its hash is kept.
func (m *Manager) Import(ctx context.Context, token string, issue Issue) error {
	if token == "" {
		return fmt.Errorf("[Manager.Import] token: %w", apperrors.ErrInvalidParameter)
	}
	return m.store(ctx, token, issue)
}

func (m *Manager) store(ctx context.Context, token string, issue Issue) error {
	expiry := issue.Expiry
	if expiry <= 0 {
		expiry = m.config.GetDefaultRefreshTokenExpiry()
	}

	now := NowTimeFunc()
	if err := m.repo.Upsert(ctx, &StoredRefreshToken{
		TokenHash:  HashToken(token),
		UserID:     issue.UserID,
		UserPoolID: issue.UserPoolID,
		ClientID:   issue.ClientID,
		Scope:      issue.Scope,
		Iat:        now,
		ExpiresAt:  now.Add(expiry),
	}); err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Lookup resolves a presented refresh token. Unknown and expired tokens both
// return an error wrapping errors.ErrNotFound; expired tokens are deleted.
func (m *Manager) Lookup(ctx context.Context, token string) (*StoredRefreshToken, error) {
	if token == "" {
		return nil, fmt.Errorf("empty refresh token: %w", apperrors.ErrNotFound)
	}

	hash := HashToken(token)
	rt, err := m.repo.Get(ctx, hash)
	if err != nil {
		return nil, err
	}

	if m.IsExpired(rt) {
		_ = m.repo.Delete(ctx, hash)
		return nil, fmt.Errorf("%w: %w", apperrors.ErrNotFound, apperrors.ErrRefreshTokenExpired)
	}
	return rt, nil
}

// IsExpired checks if a refresh token has passed its expiry time
func (m *Manager) IsExpired(rt *StoredRefreshToken) bool {
	return !NowTimeFunc().Before(rt.ExpiresAt)
}

// HashToken returns the storage key for an opaque refresh token
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
