package config

import (
	"fmt"
	"time"
)

type OAuthConfig interface {
	GetDefaultAccessTokenExpiry() time.Duration
	GetDefaultRefreshTokenExpiry() time.Duration
	GetRefreshTokenLength() int
}

type SigningConfig interface {
	GetSigningAlg() string
	GetSigningSecret() string
	GetSigningKeyID() string
	GetSigningKeyPEM() string
}

type StorageConfig interface {
	GetRefreshStore() string
	GetClientStore() string
}

type RedisConfig interface {
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisKeyPrefix() string
}

// PoolSettings tunes the pgx connection pool
type PoolSettings struct {
	MaxConns          int32
	MinConns          int32
	MaxConnLifetime   time.Duration
	MaxConnIdleTime   time.Duration
	HealthCheckPeriod time.Duration
	ConnectTimeout    time.Duration
}

type PostgresConfig interface {
	GetPostgresDSN() string
	GetPostgresPool() PoolSettings
}

type BootstrapConfig interface {
	GetDefaultPoolID() string
	GetDefaultPoolName() string
	GetDefaultClientID() string
	GetDefaultClientSecret() string
	GetSeedFile() string
}

func (s *Settings) GetDefaultAccessTokenExpiry() time.Duration {
	return s.Token.AccessTokenExpiry
}

func (s *Settings) GetDefaultRefreshTokenExpiry() time.Duration {
	return s.Token.RefreshTokenExpiry
}

// GetRefreshTokenLength is the number of random bytes in an opaque refresh token
func (s *Settings) GetRefreshTokenLength() int {
	return s.Token.RefreshTokenLength
}

func (s *Settings) GetSigningAlg() string {
	return s.Signing.Alg
}

func (s *Settings) GetSigningSecret() string {
	return s.Signing.Secret
}

func (s *Settings) GetSigningKeyID() string {
	return s.Signing.KeyID
}

func (s *Settings) GetSigningKeyPEM() string {
	return s.Signing.PrivateKeyPEM
}

func (s *Settings) GetRefreshStore() string {
	return s.Storage.RefreshStore
}

func (s *Settings) GetClientStore() string {
	return s.Storage.ClientStore
}

func (s *Settings) GetRedisAddr() string {
	return s.Redis.Addr
}

func (s *Settings) GetRedisPassword() string {
	return s.Redis.Password
}

func (s *Settings) GetRedisDB() int {
	return s.Redis.DB
}

func (s *Settings) GetRedisKeyPrefix() string {
	return s.Redis.KeyPrefix
}

func (s *Settings) GetPostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		s.Database.User,
		s.Database.Password,
		s.Database.Host,
		s.Database.Port,
		s.Database.Name,
		s.Database.SSLMode,
	)
}

func (s *Settings) GetPostgresPool() PoolSettings {
	return PoolSettings(s.Postgres)
}

func (s *Settings) GetDefaultPoolID() string {
	return s.Bootstrap.PoolID
}

func (s *Settings) GetDefaultPoolName() string {
	return s.Bootstrap.PoolName
}

func (s *Settings) GetDefaultClientID() string {
	return s.Bootstrap.ClientID
}

func (s *Settings) GetDefaultClientSecret() string {
	return s.Bootstrap.ClientSecret
}

func (s *Settings) GetSeedFile() string {
	return s.Bootstrap.SeedFile
}
