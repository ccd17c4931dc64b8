package auth

import (
	"context"
	"fmt"

	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/oauth2"
)

// authorizationCode is recognised but not serviced
func (ts *TokenService) authorizationCode(_ context.Context, _ oauth2.TokenRequest) (*oauth2.TokenResponse, error) {
	return nil, fmt.Errorf("[TokenService.authorizationCode] %w", apperrors.ErrNotImplemented)
}
