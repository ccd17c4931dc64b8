package oauth2

// TokenResponse represents the response from an OAuth2 token request.
// Returned from the /oauth2/token endpoint for every successful grant.
type TokenResponse struct {
	// AccessToken is the JWT token used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string `json:"access_token"`

	// RefreshToken is an opaque token used to obtain new access tokens.
	// Encoded as null for grants that do not issue one (client_credentials).
	RefreshToken *string `json:"refresh_token"`

	// TokenType indicates how to use the access token (always "Bearer").
	TokenType string `json:"token_type,omitempty"`

	// ExpiresIn is the lifetime in seconds of the access token.
	ExpiresIn int `json:"expires_in,omitempty"`
}

const BearerTokenType = "Bearer"
