package auth

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/internal/utils"
	"github.com/jrsteele09/go-token-service/oauth2"
	"github.com/jrsteele09/go-token-service/token"
)

// refreshToken exchanges a refresh token for a new token pair.
// The client secret is not checked on this grant.
func (ts *TokenService) refreshToken(ctx context.Context, req oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	pool, err := ts.directory.UserPoolForClient(ctx, req.ClientID)
	if err != nil {
		return nil, notAuthorizedIfAbsent(err, "[TokenService.refreshToken] user pool")
	}
	if pool == nil {
		return nil, fmt.Errorf("[TokenService.refreshToken] user pool: %w", apperrors.ErrNotAuthorized)
	}

	client, err := ts.directory.AppClient(ctx, req.ClientID)
	if err != nil {
		return nil, notAuthorizedIfAbsent(err, "[TokenService.refreshToken] app client")
	}
	if client == nil {
		return nil, fmt.Errorf("[TokenService.refreshToken] app client: %w", apperrors.ErrNotAuthorized)
	}

	user, err := pool.UserByRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		return nil, notAuthorizedIfAbsent(err, "[TokenService.refreshToken] user")
	}
	if user == nil {
		return nil, fmt.Errorf("[TokenService.refreshToken] user: %w", apperrors.ErrNotAuthorized)
	}

	groups, err := pool.GroupMemberships(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("[TokenService.refreshToken] group memberships: %w", err)
	}

	tokens, err := ts.generator.Generate(ctx, user, groups, client, nil, token.TriggerRefreshTokens)
	if err != nil {
		return nil, fmt.Errorf("[TokenService.refreshToken] %w", err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("[TokenService.refreshToken] generation declined: %w", apperrors.ErrNotAuthorized)
	}

	return tokenResponse(tokens, utils.Value(tokens.RefreshToken)), nil
}
