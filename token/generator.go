package token

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jrsteele09/go-token-service/clients"
	"github.com/jrsteele09/go-token-service/internal/config"
	"github.com/jrsteele09/go-token-service/oauth2"
	"github.com/jrsteele09/go-token-service/token/keys"
	"github.com/jrsteele09/go-token-service/token/refresh"
	"github.com/jrsteele09/go-token-service/userpools"
	"github.com/jrsteele09/go-token-service/users"
	"github.com/rs/zerolog"
)

// NowTimeFunc returns the current time. It can be overridden in tests.
var NowTimeFunc = time.Now

// Trigger records why a token set was generated. It is copied into the
// access token's origin claim.
type Trigger string

const (
	TriggerAuthentication    Trigger = "Authentication"
	TriggerRefreshTokens     Trigger = "RefreshTokens"
	TriggerClientCredentials Trigger = "ClientCredentials"
)

const accessTokenUse = "access"

// Tokens is a freshly issued token set
type Tokens struct {
	AccessToken  string
	RefreshToken *string // nil when no refresh token was issued
	ExpiresIn    time.Duration
}

// GeneratorConfig is the configuration the Generator reads
type GeneratorConfig interface {
	config.OAuthConfig
	GetBaseURL() string
}

// Generator signs JWT access tokens and mints opaque refresh tokens
type Generator struct {
	signer  keys.Signer
	pools   userpools.Repo
	refresh *refresh.Manager
	config  GeneratorConfig
}

func NewGenerator(signer keys.Signer, pools userpools.Repo, refreshManager *refresh.Manager, cfg GeneratorConfig) *Generator {
	return &Generator{
		signer:  signer,
		pools:   pools,
		refresh: refreshManager,
		config:  cfg,
	}
}

// Generate issues an access token for user and a new refresh token bound to
// the user, client and pool. A nil scope uses the client's configured scopes.
func (g *Generator) Generate(ctx context.Context, user *users.User, groups []string, client *clients.Client, scope *string, trigger Trigger) (*Tokens, error) {
	pool, err := g.pools.Get(ctx, client.UserPoolID)
	if err != nil {
		return nil, fmt.Errorf("[Generator.Generate] user pool %s: %w", client.UserPoolID, err)
	}

	grantedScope := client.Scope()
	if scope != nil {
		grantedScope = *scope
	}
	if groups == nil {
		groups = []string{}
	}

	expiresIn := pool.GetAccessTokenExpiry(g.config.GetDefaultAccessTokenExpiry())
	claims := g.baseClaims(pool, client, grantedScope, trigger, expiresIn)
	claims["sub"] = user.ID
	claims["username"] = user.Username
	claims["groups"] = groups

	accessToken, err := g.signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("[Generator.Generate] %w", err)
	}

	refreshToken, err := g.refresh.Create(ctx, refresh.Issue{
		UserPoolID: pool.ID,
		ClientID:   client.ID,
		UserID:     user.ID,
		Scope:      grantedScope,
		Expiry:     pool.RefreshTokenExpiry,
	})
	if err != nil {
		return nil, fmt.Errorf("[Generator.Generate] %w", err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("pool_id", pool.ID).
		Str("client_id", client.ID).
		Str("user_id", user.ID).
		Str("trigger", string(trigger)).
		Msg("issued user tokens")

	return &Tokens{
		AccessToken:  accessToken,
		RefreshToken: &refreshToken,
		ExpiresIn:    expiresIn,
	}, nil
}

// GenerateWithClientCredentials issues a machine-to-machine access token with
// the client as subject. It returns nil tokens when the client may not use
// the client_credentials grant.
func (g *Generator) GenerateWithClientCredentials(ctx context.Context, client *clients.Client) (*Tokens, error) {
	if !client.AllowsGrant(oauth2.ClientCredentialsGrant) {
		zerolog.Ctx(ctx).Debug().Str("client_id", client.ID).Msg("client_credentials grant not allowed for client")
		return nil, nil
	}

	pool, err := g.pools.Get(ctx, client.UserPoolID)
	if err != nil {
		return nil, fmt.Errorf("[Generator.GenerateWithClientCredentials] user pool %s: %w", client.UserPoolID, err)
	}

	expiresIn := pool.GetAccessTokenExpiry(g.config.GetDefaultAccessTokenExpiry())
	claims := g.baseClaims(pool, client, client.Scope(), TriggerClientCredentials, expiresIn)
	claims["sub"] = client.ID

	accessToken, err := g.signer.Sign(claims)
	if err != nil {
		return nil, fmt.Errorf("[Generator.GenerateWithClientCredentials] %w", err)
	}

	return &Tokens{
		AccessToken: accessToken,
		ExpiresIn:   expiresIn,
	}, nil
}

func (g *Generator) baseClaims(pool *userpools.UserPool, client *clients.Client, scope string, trigger Trigger, expiresIn time.Duration) jwt.MapClaims {
	now := NowTimeFunc()
	return jwt.MapClaims{
		"iss":       g.issuer(pool),
		"aud":       audience(pool, client),
		"client_id": client.ID,
		"scope":     scope,
		"token_use": accessTokenUse,
		"origin":    string(trigger),
		"iat":       now.Unix(),
		"exp":       now.Add(expiresIn).Unix(),
		"jti":       uuid.New().String(),
	}
}

func (g *Generator) issuer(pool *userpools.UserPool) string {
	if pool.Issuer != "" {
		return pool.Issuer
	}
	return g.config.GetBaseURL() + "/" + pool.ID
}

func audience(pool *userpools.UserPool, client *clients.Client) string {
	if pool.Audience != "" {
		return pool.Audience
	}
	return client.ID
}
