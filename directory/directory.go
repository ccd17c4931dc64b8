package directory

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-token-service/auth"
	"github.com/jrsteele09/go-token-service/clients"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/token/refresh"
	"github.com/jrsteele09/go-token-service/userpools"
	"github.com/jrsteele09/go-token-service/users"
)

var (
	_ auth.Directory = (*Service)(nil)
	_ auth.UserPool  = (*Pool)(nil)
)

// Service resolves app clients and their user pools from the backing repos
type Service struct {
	clients clients.Repo
	pools   userpools.Repo
	users   users.UserRepo
	refresh *refresh.Manager
}

func NewService(clientRepo clients.Repo, poolRepo userpools.Repo, userRepo users.UserRepo, refreshManager *refresh.Manager) (*Service, error) {
	if clientRepo == nil {
		return nil, fmt.Errorf("[NewService] client repo is required")
	}
	if poolRepo == nil {
		return nil, fmt.Errorf("[NewService] user pool repo is required")
	}
	if userRepo == nil {
		return nil, fmt.Errorf("[NewService] user repo is required")
	}
	if refreshManager == nil {
		return nil, fmt.Errorf("[NewService] refresh token manager is required")
	}
	return &Service{
		clients: clientRepo,
		pools:   poolRepo,
		users:   userRepo,
		refresh: refreshManager,
	}, nil
}

// UserPoolForClient returns the pool the client is registered in
func (s *Service) UserPoolForClient(ctx context.Context, clientID string) (auth.UserPool, error) {
	client, err := s.clients.Get(ctx, clientID)
	if err != nil {
		return nil, err
	}

	pool, err := s.pools.Get(ctx, client.UserPoolID)
	if err != nil {
		return nil, fmt.Errorf("user pool for client %s: %w", clientID, err)
	}

	return &Pool{
		pool:    pool,
		users:   s.users,
		refresh: s.refresh,
	}, nil
}

func (s *Service) AppClient(ctx context.Context, clientID string) (*clients.Client, error) {
	return s.clients.Get(ctx, clientID)
}

// Pool is a view over a single user pool
type Pool struct {
	pool    *userpools.UserPool
	users   users.UserRepo
	refresh *refresh.Manager
}

// ID returns the user pool ID
func (p *Pool) ID() string {
	return p.pool.ID
}

// UserByRefreshToken resolves the owner of a refresh token. Tokens that are
// unknown, expired, issued by another pool, or owned by a missing or disabled
// user all yield an error wrapping errors.ErrNotFound.
func (p *Pool) UserByRefreshToken(ctx context.Context, refreshToken string) (*users.User, error) {
	rt, err := p.refresh.Lookup(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if rt.UserPoolID != p.pool.ID {
		return nil, fmt.Errorf("refresh token not issued by pool %s: %w", p.pool.ID, apperrors.ErrNotFound)
	}

	user, err := p.users.GetByID(ctx, p.pool.ID, rt.UserID)
	if err != nil {
		return nil, err
	}
	if !user.Enabled {
		return nil, fmt.Errorf("user %s: %w: %w", user.ID, apperrors.ErrNotFound, apperrors.ErrUserDisabled)
	}
	return user, nil
}

// GroupMemberships returns the user's groups in membership order
func (p *Pool) GroupMemberships(_ context.Context, user *users.User) ([]string, error) {
	return user.GroupMemberships(), nil
}
