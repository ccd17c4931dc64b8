package server

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jrsteele09/go-token-service/clients"
	apperrors "github.com/jrsteele09/go-token-service/internal/errors"
	"github.com/jrsteele09/go-token-service/oauth2"
	"github.com/jrsteele09/go-token-service/token/refresh"
	"github.com/jrsteele09/go-token-service/userpools"
	"github.com/jrsteele09/go-token-service/users"
	"github.com/rs/zerolog/log"
)

const generatedSecretBytes = 24

// SeedFile is the JSON document loaded from SEED_FILE
type SeedFile struct {
	UserPools []SeedUserPool  `json:"userPools"`
	Clients   []clients.Client `json:"clients"`
	Users     []users.User     `json:"users"`

	RefreshTokens []SeedRefreshToken `json:"refreshTokens"`
}

// SeedRefreshToken is a plaintext refresh token issued to a user through a
// client. Only its hash is stored.
type SeedRefreshToken struct {
	Token    string `json:"token"`
	ClientID string `json:"clientId"`
	UserID   string `json:"userId"`
	Expiry   string `json:"expiry,omitempty"` // e.g. "720h"; empty uses the pool or configured default
}

// SeedUserPool is a user pool with human readable durations, e.g. "15m"
type SeedUserPool struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	Issuer             string `json:"issuer,omitempty"`
	Audience           string `json:"audience,omitempty"`
	AccessTokenExpiry  string `json:"accessTokenExpiry,omitempty"`
	RefreshTokenExpiry string `json:"refreshTokenExpiry,omitempty"`
}

func (p SeedUserPool) toUserPool() (*userpools.UserPool, error) {
	pool := &userpools.UserPool{
		ID:       p.ID,
		Name:     p.Name,
		Issuer:   p.Issuer,
		Audience: p.Audience,
	}

	var err error
	if p.AccessTokenExpiry != "" {
		if pool.AccessTokenExpiry, err = time.ParseDuration(p.AccessTokenExpiry); err != nil {
			return nil, fmt.Errorf("user pool %s accessTokenExpiry: %w", p.ID, err)
		}
	}
	if p.RefreshTokenExpiry != "" {
		if pool.RefreshTokenExpiry, err = time.ParseDuration(p.RefreshTokenExpiry); err != nil {
			return nil, fmt.Errorf("user pool %s refreshTokenExpiry: %w", p.ID, err)
		}
	}
	return pool, nil
}

// LoadSeedFile reads and decodes a seed file
func LoadSeedFile(path string) (*SeedFile, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("[LoadSeedFile] %w", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(b, &seed); err != nil {
		return nil, fmt.Errorf("[LoadSeedFile] %s: %w", path, err)
	}
	return &seed, nil
}

// InitialiseSystem creates the default user pool and app client when they do
// not exist yet, then applies the seed file if one is configured.
func (s *Server) InitialiseSystem(ctx context.Context) error {
	pool, err := s.initialiseDefaultPool(ctx)
	if err != nil {
		return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap default user pool: %w", err)
	}

	if s.config.GetDefaultClientID() != "" {
		if err := s.initialiseDefaultClient(ctx, pool.ID); err != nil {
			return fmt.Errorf("[Server InitialiseSystem] failed to bootstrap default client: %w", err)
		}
	}

	if path := s.config.GetSeedFile(); path != "" {
		seed, err := LoadSeedFile(path)
		if err != nil {
			return fmt.Errorf("[Server InitialiseSystem] %w", err)
		}
		if err := s.ApplySeed(ctx, seed); err != nil {
			return fmt.Errorf("[Server InitialiseSystem] %w", err)
		}
	}

	log.Info().
		Str("base_url", s.config.GetBaseURL()).
		Str("pool_id", pool.ID).
		Str("token_endpoint", s.config.GetBaseURL()+RouteOAuth2Token).
		Msg("system initialised")
	return nil
}

func (s *Server) initialiseDefaultPool(ctx context.Context) (*userpools.UserPool, error) {
	poolID := s.config.GetDefaultPoolID()

	existing, err := s.repos.UserPools.Get(ctx, poolID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	pool := &userpools.UserPool{
		ID:   poolID,
		Name: s.config.GetDefaultPoolName(),
	}
	if err := s.repos.UserPools.Upsert(ctx, pool); err != nil {
		return nil, err
	}
	log.Info().Str("pool_id", pool.ID).Msg("created default user pool")
	return pool, nil
}

func (s *Server) initialiseDefaultClient(ctx context.Context, poolID string) error {
	clientID := s.config.GetDefaultClientID()

	_, err := s.repos.Clients.Get(ctx, clientID)
	if err == nil {
		log.Info().Str("client_id", clientID).Msg("default client already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	secret := s.config.GetDefaultClientSecret()
	generated := secret == ""
	if generated {
		b := make([]byte, generatedSecretBytes)
		if _, err := rand.Read(b); err != nil {
			return fmt.Errorf("failed to generate client secret: %w", err)
		}
		secret = hex.EncodeToString(b)
	}

	client := &clients.Client{
		ID:         clientID,
		UserPoolID: poolID,
		Name:       "Default Client",
		Secret:     secret,
		AllowedGrants: []oauth2.GrantType{
			oauth2.ClientCredentialsGrant,
			oauth2.RefreshTokenGrant,
		},
	}
	if err := s.repos.Clients.Upsert(ctx, client); err != nil {
		return err
	}

	event := log.Info().Str("client_id", clientID).Str("pool_id", poolID)
	if generated {
		// Shown once so the operator can configure the client
		event = event.Str("client_secret", secret)
	}
	event.Msg("created default client")
	return nil
}

// ApplySeed upserts every pool, client and user in the seed
func (s *Server) ApplySeed(ctx context.Context, seed *SeedFile) error {
	for _, p := range seed.UserPools {
		pool, err := p.toUserPool()
		if err != nil {
			return fmt.Errorf("[Server ApplySeed] %w", err)
		}
		if err := s.repos.UserPools.Upsert(ctx, pool); err != nil {
			return fmt.Errorf("[Server ApplySeed] user pool %s: %w", pool.ID, err)
		}
	}

	for i := range seed.Clients {
		client := seed.Clients[i]
		if _, err := s.repos.UserPools.Get(ctx, client.UserPoolID); err != nil {
			return fmt.Errorf("[Server ApplySeed] client %s: %w", client.ID, err)
		}
		if err := s.repos.Clients.Upsert(ctx, &client); err != nil {
			return fmt.Errorf("[Server ApplySeed] client %s: %w", client.ID, err)
		}
	}

	for i := range seed.Users {
		user := seed.Users[i]
		if _, err := s.repos.UserPools.Get(ctx, user.UserPoolID); err != nil {
			return fmt.Errorf("[Server ApplySeed] user %s: %w", user.ID, err)
		}
		if user.DateJoined.IsZero() {
			user.DateJoined = time.Now().UTC()
		}
		if err := s.repos.Users.Upsert(ctx, &user); err != nil {
			return fmt.Errorf("[Server ApplySeed] user %s: %w", user.ID, err)
		}
	}

	for i, rt := range seed.RefreshTokens {
		if err := s.importRefreshToken(ctx, rt); err != nil {
			return fmt.Errorf("[Server ApplySeed] refresh token %d: %w", i, err)
		}
	}

	log.Info().
		Int("user_pools", len(seed.UserPools)).
		Int("clients", len(seed.Clients)).
		Int("users", len(seed.Users)).
		Int("refresh_tokens", len(seed.RefreshTokens)).
		Msg("applied seed file")
	return nil
}

// importRefreshToken binds a seeded token to the client's pool after checking
// the user belongs to it.
func (s *Server) importRefreshToken(ctx context.Context, rt SeedRefreshToken) error {
	client, err := s.repos.Clients.Get(ctx, rt.ClientID)
	if err != nil {
		return err
	}
	if _, err := s.repos.Users.GetByID(ctx, client.UserPoolID, rt.UserID); err != nil {
		return err
	}

	pool, err := s.repos.UserPools.Get(ctx, client.UserPoolID)
	if err != nil {
		return err
	}
	expiry := pool.RefreshTokenExpiry
	if rt.Expiry != "" {
		if expiry, err = time.ParseDuration(rt.Expiry); err != nil {
			return fmt.Errorf("expiry: %w", err)
		}
	}

	return s.refresh.Import(ctx, rt.Token, refresh.Issue{
		UserPoolID: client.UserPoolID,
		ClientID:   client.ID,
		UserID:     rt.UserID,
		Scope:      client.Scope(),
		Expiry:     expiry,
	})
}
