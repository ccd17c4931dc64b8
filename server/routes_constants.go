package server

// Route path constants
const (
	// OAuth2 / OIDC Routes
	RouteWellKnownOpenIDConfig = "/.well-known/openid-configuration"
	RouteWellKnownJWKS         = "/.well-known/jwks.json"
	RouteOAuth2Token           = "/oauth2/token"

	// Operational Routes
	RouteHealth = "/healthz"
)
