package auth

import (
	"context"

	"github.com/jrsteele09/go-token-service/clients"
	"github.com/jrsteele09/go-token-service/token"
	"github.com/jrsteele09/go-token-service/users"
)

// Directory resolves app clients and the user pools they belong to.
// Absent entities are reported with an error wrapping errors.ErrNotFound.
type Directory interface {
	UserPoolForClient(ctx context.Context, clientID string) (UserPool, error)
	AppClient(ctx context.Context, clientID string) (*clients.Client, error)
}

// UserPool is the user directory a client is registered in
type UserPool interface {
	// UserByRefreshToken returns an error wrapping errors.ErrNotFound when the
	// token does not resolve to an active user.
	UserByRefreshToken(ctx context.Context, refreshToken string) (*users.User, error)

	// GroupMemberships returns the user's groups in membership order
	GroupMemberships(ctx context.Context, user *users.User) ([]string, error)
}

// TokenGenerator issues token sets
type TokenGenerator interface {
	Generate(ctx context.Context, user *users.User, groups []string, client *clients.Client, scope *string, trigger token.Trigger) (*token.Tokens, error)

	// GenerateWithClientCredentials returns nil tokens and a nil error when it
	// declines to issue for the client.
	GenerateWithClientCredentials(ctx context.Context, client *clients.Client) (*token.Tokens, error)
}
