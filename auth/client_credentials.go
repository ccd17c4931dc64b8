package auth

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/oauth2"
)

// clientCredentials authenticates the client by ID and secret and issues an
// access token with no refresh token.
func (ts *TokenService) clientCredentials(ctx context.Context, req oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	client, err := ts.directory.AppClient(ctx, req.ClientID)
	if err != nil {
		return nil, notAuthorizedIfAbsent(err, "[TokenService.clientCredentials] app client")
	}
	if client == nil {
		return nil, fmt.Errorf("[TokenService.clientCredentials] app client: %w", apperrors.ErrNotAuthorized)
	}

	if !client.SecretMatches(req.ClientSecret) {
		return nil, fmt.Errorf("[TokenService.clientCredentials] client secret: %w", apperrors.ErrNotAuthorized)
	}

	tokens, err := ts.generator.GenerateWithClientCredentials(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("[TokenService.clientCredentials] %w", err)
	}
	if tokens == nil {
		return nil, fmt.Errorf("[TokenService.clientCredentials] generation declined: %w", apperrors.ErrNotAuthorized)
	}

	return tokenResponse(tokens, ""), nil
}
