package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrsteele09/go-token-service/internal/config"
	"github.com/rs/zerolog/log"
)

type Postgres struct {
	Pool *pgxpool.Pool
}

func NewPostgresConnection(ctx context.Context, cfg config.PostgresConfig) (*Postgres, error) {
	parsedCfg, err := pgxpool.ParseConfig(cfg.GetPostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pgx config: %w", err)
	}

	pool := cfg.GetPostgresPool()
	parsedCfg.MaxConns = pool.MaxConns
	parsedCfg.MinConns = pool.MinConns
	parsedCfg.MaxConnLifetime = pool.MaxConnLifetime
	parsedCfg.MaxConnIdleTime = pool.MaxConnIdleTime
	parsedCfg.HealthCheckPeriod = pool.HealthCheckPeriod
	parsedCfg.ConnConfig.ConnectTimeout = pool.ConnectTimeout

	p, err := pgxpool.NewWithConfig(ctx, parsedCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres connection pool: %w", err)
	}

	if err := p.Ping(ctx); err != nil {
		p.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	log.Info().Str("host", parsedCfg.ConnConfig.Host).Msg("postgres connection pool established")
	return &Postgres{Pool: p}, nil
}

func (p *Postgres) Close() {
	if p.Pool != nil {
		p.Pool.Close()
		log.Info().Msg("postgres connection pool closed")
	}
}
