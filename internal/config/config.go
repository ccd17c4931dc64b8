package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config interface {
	EnvConfig
	CorsConfig
	OAuthConfig
	SigningConfig
	StorageConfig
	RedisConfig
	PostgresConfig
	BootstrapConfig
}

type EnvConfig interface {
	GetEnv() string
	GetAppName() string
	GetPort() string
	GetBaseURL() string
	GetLogLevel() string
}

type CorsConfig interface {
	GetAllowedOrigins() AllowedOrigins
	GetAllowedMethods() string
	GetAllowedHeaders() string
}

var _ Config = (*Settings)(nil)

// Settings is populated from the environment (and an optional .env file).
type Settings struct {
	Env      string `envconfig:"ENV" default:"DEV" validate:"required"`
	AppName  string `envconfig:"APP_NAME" default:"Token Service"`
	Port     string `envconfig:"PORT" default:"8080" validate:"required"`
	BaseURL  string `envconfig:"BASE_URL" default:"http://localhost:8080" validate:"required,url"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=trace debug info warn error"`

	Cors struct {
		AllowedOrigins []string `envconfig:"CORS_ALLOWED_ORIGINS"`
	}

	Token struct {
		AccessTokenExpiry  time.Duration `envconfig:"ACCESS_TOKEN_EXPIRY" default:"1h" validate:"gt=0"`
		RefreshTokenExpiry time.Duration `envconfig:"REFRESH_TOKEN_EXPIRY" default:"720h" validate:"gt=0"`
		RefreshTokenLength int           `envconfig:"REFRESH_TOKEN_LENGTH" default:"32" validate:"gte=16,lte=128"`
	}

	Signing struct {
		Alg           string `envconfig:"SIGNING_ALG" default:"HS256" validate:"oneof=HS256 RS256"`
		Secret        string `envconfig:"SIGNING_SECRET" validate:"omitempty,min=32"`
		KeyID         string `envconfig:"SIGNING_KEY_ID" default:"default" validate:"required"`
		PrivateKeyPEM string `envconfig:"SIGNING_KEY_PEM"`
	}

	Storage struct {
		RefreshStore string `envconfig:"REFRESH_STORE" default:"memory" validate:"oneof=memory redis"`
		ClientStore  string `envconfig:"CLIENT_STORE" default:"memory" validate:"oneof=memory postgres"`
	}

	Redis struct {
		Addr      string `envconfig:"REDIS_ADDR" default:"localhost:6379" validate:"required"`
		Password  string `envconfig:"REDIS_PASSWORD"`
		DB        int    `envconfig:"REDIS_DB" default:"0" validate:"gte=0"`
		KeyPrefix string `envconfig:"REDIS_KEY_PREFIX" default:"tokensvc"`
	}

	Postgres struct {
		MaxConns          int32         `envconfig:"PGX_MAX_CONNS" default:"10"`
		MinConns          int32         `envconfig:"PGX_MIN_CONNS" default:"1"`
		MaxConnLifetime   time.Duration `envconfig:"PGX_MAX_CONN_LIFETIME" default:"30m"`
		MaxConnIdleTime   time.Duration `envconfig:"PGX_MAX_CONN_IDLE_TIME" default:"5m"`
		HealthCheckPeriod time.Duration `envconfig:"PGX_HEALTH_CHECK_PERIOD" default:"1m"`
		ConnectTimeout    time.Duration `envconfig:"PGX_CONNECT_TIMEOUT" default:"5s"`
	}

	Database struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD"`
		Name     string `envconfig:"DB_NAME" default:"tokens"`
		SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	}

	Bootstrap struct {
		PoolID       string `envconfig:"DEFAULT_POOL_ID" default:"local_pool" validate:"required"`
		PoolName     string `envconfig:"DEFAULT_POOL_NAME" default:"Local Pool"`
		ClientID     string `envconfig:"DEFAULT_CLIENT_ID"`
		ClientSecret string `envconfig:"DEFAULT_CLIENT_SECRET"`
		SeedFile     string `envconfig:"SEED_FILE"`
	}
}

// Load reads an optional .env file, then the process environment, and validates the result.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env file: %w", err)
	}
	return FromEnv()
}

// FromEnv builds Settings from the process environment only.
func FromEnv() (*Settings, error) {
	var s Settings
	if err := envconfig.Process("", &s); err != nil {
		return nil, fmt.Errorf("failed to process config from environment: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *Settings) Validate() error {
	if err := validator.New().Struct(s); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("invalid configuration: %s failed %q", verrs[0].Namespace(), verrs[0].Tag())
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
