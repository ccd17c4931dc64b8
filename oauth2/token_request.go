package oauth2

import "net/url"

// TokenRequest holds parameters for the OAuth2 token request.
// This represents the form body sent to the /oauth2/token endpoint.
type TokenRequest struct {
	// GrantType selects the flow. Unrecognised or missing values parse to UnknownGrant.
	GrantType GrantType

	// ClientID identifies the OAuth2 client making the request.
	// Required: Yes (for all implemented grant types)
	ClientID string

	// ClientSecret is the secret credential for confidential clients.
	// Required: only when the client has a secret configured
	// Security: Never log or expose this value
	ClientSecret string

	// RefreshToken is used to obtain new access tokens without re-authentication.
	// Required: Yes (only for refresh_token grant)
	// Security: Never log or expose this value
	RefreshToken string
}

// NewTokenRequest reads the recognised keys from a form parameter set.
// Only the first value of each key is used.
func NewTokenRequest(params url.Values) TokenRequest {
	return TokenRequest{
		GrantType:    ParseGrantType(params.Get(ParamGrantType)),
		ClientID:     params.Get(ParamClientID),
		ClientSecret: params.Get(ParamClientSecret),
		RefreshToken: params.Get(ParamRefreshToken),
	}
}
