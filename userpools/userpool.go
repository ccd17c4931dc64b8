package userpools

import (
	"context"
	"time"
)

// UserPool is a directory of users and app clients with its own token settings.
// Each pool can carry its own issuer and audience for token isolation.
type UserPool struct {
	ID                 string        `json:"id"`
	Name               string        `json:"name"`
	Issuer             string        `json:"issuer,omitempty"`   // Defaults to <base url>/<pool id>
	Audience           string        `json:"audience,omitempty"` // Defaults to the client ID
	AccessTokenExpiry  time.Duration `json:"accessTokenExpiry,omitempty"`
	RefreshTokenExpiry time.Duration `json:"refreshTokenExpiry,omitempty"`
}

// GetAccessTokenExpiry returns the pool override or the fallback
func (p *UserPool) GetAccessTokenExpiry(fallback time.Duration) time.Duration {
	if p.AccessTokenExpiry > 0 {
		return p.AccessTokenExpiry
	}
	return fallback
}

// GetRefreshTokenExpiry returns the pool override or the fallback
func (p *UserPool) GetRefreshTokenExpiry(fallback time.Duration) time.Duration {
	if p.RefreshTokenExpiry > 0 {
		return p.RefreshTokenExpiry
	}
	return fallback
}

// Repo stores user pools. Get returns an error wrapping errors.ErrNotFound for unknown IDs.
type Repo interface {
	Upsert(ctx context.Context, pool *UserPool) error
	Delete(ctx context.Context, poolID string) error
	Get(ctx context.Context, poolID string) (*UserPool, error)
	List(ctx context.Context, offset, limit int) ([]*UserPool, error)
}
