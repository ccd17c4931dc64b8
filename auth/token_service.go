package auth

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/internal/utils"
	"github.com/jrsteele09/go-token-service/oauth2"
	"github.com/jrsteele09/go-token-service/token"
	"github.com/rs/zerolog"
)

// TokenService handles OAuth2 token endpoint requests.
// It holds no mutable state and is safe for concurrent use.
type TokenService struct {
	directory Directory
	generator TokenGenerator
}

// NewTokenService initializes a TokenService with its collaborators
func NewTokenService(directory Directory, generator TokenGenerator) (*TokenService, error) {
	if directory == nil {
		return nil, fmt.Errorf("[NewTokenService] directory is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("[NewTokenService] token generator is required")
	}

	return &TokenService{
		directory: directory,
		generator: generator,
	}, nil
}

// GetToken dispatches a token request on its grant_type.
//
// Errors:
//   - errors.ErrInvalidParameter: grant_type is missing or unrecognised
//   - errors.ErrNotImplemented: authorization_code
//   - errors.ErrNotAuthorized: any client or refresh token credential failure
//
// Any other error comes from a collaborator failing and is not a credential decision.
func (ts *TokenService) GetToken(ctx context.Context, params url.Values) (*oauth2.TokenResponse, error) {
	req := oauth2.NewTokenRequest(params)

	zerolog.Ctx(ctx).Debug().
		Stringer("grant_type", req.GrantType).
		Str("client_id", req.ClientID).
		Msg("token request")

	switch req.GrantType {
	case oauth2.AuthorizationCodeGrant:
		return ts.authorizationCode(ctx, req)
	case oauth2.ClientCredentialsGrant:
		return ts.clientCredentials(ctx, req)
	case oauth2.RefreshTokenGrant:
		return ts.refreshToken(ctx, req)
	case oauth2.UnknownGrant:
		return nil, fmt.Errorf("[TokenService.GetToken] grant_type: %w", apperrors.ErrInvalidParameter)
	}
	return nil, fmt.Errorf("[TokenService.GetToken] grant_type %q: %w", req.GrantType, apperrors.ErrInvalidParameter)
}

// notAuthorizedIfAbsent converts a collaborator's not-found result into a
// credential failure. Other errors are wrapped unchanged.
func notAuthorizedIfAbsent(err error, op string) error {
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, apperrors.ErrNotAuthorized)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// tokenResponse builds the wire response. An empty refresh token encodes as null.
func tokenResponse(tokens *token.Tokens, refreshToken string) *oauth2.TokenResponse {
	return &oauth2.TokenResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: utils.NilIfZero(refreshToken),
		TokenType:    oauth2.BearerTokenType,
		ExpiresIn:    int(tokens.ExpiresIn.Seconds()),
	}
}
