package refresh

import (
	"context"
	"time"
)

// StoredRefreshToken represents the server-side storage of refresh token metadata.
// The client only receives the opaque token string; the store is keyed by its
// SHA-256 hash so a leaked store does not leak usable tokens.
type StoredRefreshToken struct {
	TokenHash  string    `json:"token_hash"`
	UserID     string    `json:"user_id"`
	UserPoolID string    `json:"user_pool_id"`
	ClientID   string    `json:"client_id"`
	Scope      string    `json:"scope,omitempty"`
	Iat        time.Time `json:"iat"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// Repo manages server-side storage of refresh token metadata keyed by token hash.
// Get returns an error wrapping errors.ErrNotFound for unknown hashes.
type Repo interface {
	Upsert(ctx context.Context, refreshToken *StoredRefreshToken) error
	Delete(ctx context.Context, tokenHash string) error
	Get(ctx context.Context, tokenHash string) (*StoredRefreshToken, error)
}
