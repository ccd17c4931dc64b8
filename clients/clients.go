package clients

import (
	"crypto/subtle"
	"slices"
	"strings"

	"github.com/jrsteele09/go-token-service/oauth2"
)

// Client is an app client registration inside a user pool.
type Client struct {
	ID            string             `json:"id"`
	UserPoolID    string             `json:"userPoolId"`
	Name          string             `json:"name"`
	Secret        string             `json:"secret,omitempty"` // Empty when the client has no secret configured
	Scopes        []string           `json:"scopes"`           // Scopes granted to tokens issued for this client
	AllowedGrants []oauth2.GrantType `json:"allowedGrants"`    // Empty allows every grant
}

// HasSecret returns true if a client secret is configured
func (c *Client) HasSecret() bool {
	return c.Secret != ""
}

// SecretMatches reports whether the presented secret satisfies the client.
// Clients without a configured secret accept any presented value.
func (c *Client) SecretMatches(presented string) bool {
	if !c.HasSecret() {
		return true
	}
	return subtle.ConstantTimeCompare([]byte(c.Secret), []byte(presented)) == 1
}

// AllowsGrant checks if the client may use the given grant type
func (c *Client) AllowsGrant(grant oauth2.GrantType) bool {
	if len(c.AllowedGrants) == 0 {
		return true
	}
	return slices.Contains(c.AllowedGrants, grant)
}

// Scope returns the space separated scope string for issued tokens
func (c *Client) Scope() string {
	return strings.Join(c.Scopes, " ")
}
