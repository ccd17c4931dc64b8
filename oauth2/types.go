package oauth2

// GrantType represents the OAuth 2.0 grant type used at the token endpoint.
// Determines what credentials are required to obtain tokens.
//
// The set is closed: ParseGrantType maps every value outside it onto
// UnknownGrant, so a switch over the constants below covers every request.
type GrantType string

const (
	// UnknownGrant is any grant_type value this server does not recognise, including an absent one.
	UnknownGrant GrantType = ""

	// AuthorizationCodeGrant exchanges an authorization code for tokens.
	// Recognised by the protocol but not serviced by this server.
	AuthorizationCodeGrant GrantType = "authorization_code"

	// ClientCredentialsGrant allows machine-to-machine authentication.
	// Token request includes: client_id, client_secret
	// Returns: access_token (no refresh_token)
	ClientCredentialsGrant GrantType = "client_credentials"

	// RefreshTokenGrant exchanges a refresh token for new tokens.
	// Token request includes: client_id, refresh_token
	// Returns: new access_token and refresh_token
	RefreshTokenGrant GrantType = "refresh_token"
)

// ServicedGrantTypes lists the grants that can actually issue tokens
var ServicedGrantTypes = []GrantType{
	RefreshTokenGrant,
	ClientCredentialsGrant,
}

// ParseGrantType matches the raw grant_type value exactly.
func ParseGrantType(raw string) GrantType {
	switch GrantType(raw) {
	case AuthorizationCodeGrant:
		return AuthorizationCodeGrant
	case ClientCredentialsGrant:
		return ClientCredentialsGrant
	case RefreshTokenGrant:
		return RefreshTokenGrant
	}
	return UnknownGrant
}

func (g GrantType) String() string {
	if g == UnknownGrant {
		return "unknown"
	}
	return string(g)
}

// Form parameter names read by the token endpoint.
const (
	ParamGrantType    = "grant_type"
	ParamClientID     = "client_id"
	ParamClientSecret = "client_secret"
	ParamRefreshToken = "refresh_token"
)
