package auth_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/jrsteele09/go-token-service/auth"
	"github.com/jrsteele09/go-token-service/clients"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/token"
	"github.com/jrsteele09/go-token-service/users"
)

// stubDirectory returns canned results and counts lookups
type stubDirectory struct {
	pool      auth.UserPool
	poolErr   error
	client    *clients.Client
	clientErr error

	mu          sync.Mutex
	poolCalls   int
	clientCalls int
}

func (d *stubDirectory) UserPoolForClient(_ context.Context, clientID string) (auth.UserPool, error) {
	d.mu.Lock()
	d.poolCalls++
	d.mu.Unlock()
	if d.poolErr != nil {
		return nil, d.poolErr
	}
	if d.pool == nil {
		return nil, fmt.Errorf("pool for %s: %w", clientID, apperrors.ErrNotFound)
	}
	return d.pool, nil
}

func (d *stubDirectory) AppClient(_ context.Context, clientID string) (*clients.Client, error) {
	d.mu.Lock()
	d.clientCalls++
	d.mu.Unlock()
	if d.clientErr != nil {
		return nil, d.clientErr
	}
	if d.client == nil || d.client.ID != clientID {
		return nil, fmt.Errorf("client %s: %w", clientID, apperrors.ErrNotFound)
	}
	return d.client, nil
}

// stubPool resolves a single refresh token to a user
type stubPool struct {
	refreshToken string
	user         *users.User
	userErr      error
	groups       []string
	groupsErr    error
}

func (p *stubPool) UserByRefreshToken(_ context.Context, refreshToken string) (*users.User, error) {
	if p.userErr != nil {
		return nil, p.userErr
	}
	if p.user == nil || refreshToken != p.refreshToken {
		return nil, fmt.Errorf("refresh token: %w", apperrors.ErrNotFound)
	}
	return p.user, nil
}

func (p *stubPool) GroupMemberships(_ context.Context, _ *users.User) ([]string, error) {
	if p.groupsErr != nil {
		return nil, p.groupsErr
	}
	return p.groups, nil
}

// stubGenerator issues numbered tokens so successive calls differ
type stubGenerator struct {
	declineClientCredentials bool
	declineGenerate          bool
	err                      error

	mu          sync.Mutex
	issued      int
	calls       int
	ccCalls     int
	lastUser    *users.User
	lastGroups  []string
	lastClient  *clients.Client
	lastScope   *string
	lastTrigger token.Trigger
}

func (g *stubGenerator) Generate(_ context.Context, user *users.User, groups []string, client *clients.Client, scope *string, trigger token.Trigger) (*token.Tokens, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.lastUser = user
	g.lastGroups = groups
	g.lastClient = client
	g.lastScope = scope
	g.lastTrigger = trigger
	if g.err != nil {
		return nil, g.err
	}
	if g.declineGenerate {
		return nil, nil
	}
	g.issued++
	refreshToken := fmt.Sprintf("refresh-%d", g.issued)
	return &token.Tokens{
		AccessToken:  fmt.Sprintf("access-%d", g.issued),
		RefreshToken: &refreshToken,
		ExpiresIn:    testExpiresIn,
	}, nil
}

func (g *stubGenerator) GenerateWithClientCredentials(_ context.Context, client *clients.Client) (*token.Tokens, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ccCalls++
	g.lastClient = client
	if g.err != nil {
		return nil, g.err
	}
	if g.declineClientCredentials {
		return nil, nil
	}
	g.issued++
	return &token.Tokens{
		AccessToken: fmt.Sprintf("access-%d", g.issued),
		ExpiresIn:   testExpiresIn,
	}, nil
}

func (g *stubGenerator) totalCalls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls + g.ccCalls
}
