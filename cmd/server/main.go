package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	fakeclientrepo "github.com/jrsteele09/go-token-service/clients/fakerepo"
	pgclientrepo "github.com/jrsteele09/go-token-service/clients/pgrepo"
	"github.com/jrsteele09/go-token-service/internal/config"
	"github.com/jrsteele09/go-token-service/internal/platform/postgres"
	"github.com/jrsteele09/go-token-service/server"
	"github.com/jrsteele09/go-token-service/token/keys"
	"github.com/jrsteele09/go-token-service/token/refresh/redisrepo"
	refreshrepofake "github.com/jrsteele09/go-token-service/token/refresh/repofake"
	userpoolrepofakes "github.com/jrsteele09/go-token-service/userpools/repofakes"
	fakeuserrepo "github.com/jrsteele09/go-token-service/users/repofake"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	storeRedis    = "redis"
	storePostgres = "postgres"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("error running server")
			time.Sleep(1 * time.Second)
			continue
		}
		break
	}
	log.Info().Msg("server stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("recovered from panic")
			returnError = errors.New("panic recovered")
		}
	}()

	c, err := config.Load()
	if err != nil {
		// Configuration errors do not go away on restart
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	setupLogging(c)
	displayAppname(c.GetAppName())

	ctx := context.Background()

	repos, options, closeStores, err := openStores(ctx, c)
	if err != nil {
		return err
	}
	defer closeStores()

	signer, err := keys.NewSignerFromConfig(c)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create token signer")
	}

	handler, err := server.New(ctx, c, repos, signer, options...)
	if err != nil {
		return fmt.Errorf("server.New: %w", err)
	}

	httpServer := &http.Server{
		Addr:              c.GetPort(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(httpServer) }()

	select {
	case err := <-errCh:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(httpServer)
}

func setupLogging(c config.EnvConfig) {
	level, err := zerolog.ParseLevel(c.GetLogLevel())
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if c.GetEnv() == "DEV" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openStores builds the repositories selected by REFRESH_STORE and CLIENT_STORE.
// Everything else lives in memory.
func openStores(ctx context.Context, c *config.Settings) (server.Repos, []server.Option, func(), error) {
	repos := server.Repos{
		Clients:       fakeclientrepo.NewFakeClientRepo(),
		UserPools:     userpoolrepofakes.NewFakeUserPoolRepo(),
		Users:         fakeuserrepo.NewFakeUserRepo(),
		RefreshTokens: refreshrepofake.NewFakeRefreshTokenRepo(),
	}
	var options []server.Option
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if c.GetRefreshStore() == storeRedis {
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		closers = append(closers, func() { _ = rdb.Close() })

		if err := rdb.Ping(ctx).Err(); err != nil {
			closeAll()
			return server.Repos{}, nil, nil, fmt.Errorf("failed to ping redis at %s: %w", c.GetRedisAddr(), err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("redis refresh token store connected")

		repos.RefreshTokens = redisrepo.NewRedisRefreshTokenRepo(rdb, c.GetRedisKeyPrefix())
		options = append(options, server.WithHealthCheck("redis", func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		}))
	}

	if c.GetClientStore() == storePostgres {
		pg, err := postgres.NewPostgresConnection(ctx, c)
		if err != nil {
			closeAll()
			return server.Repos{}, nil, nil, err
		}
		closers = append(closers, pg.Close)

		clientRepo := pgclientrepo.NewPostgresClientRepo(pg.Pool)
		if err := clientRepo.EnsureSchema(ctx); err != nil {
			closeAll()
			return server.Repos{}, nil, nil, err
		}

		repos.Clients = clientRepo
		options = append(options, server.WithHealthCheck("postgres", func(ctx context.Context) error {
			return pg.Pool.Ping(ctx)
		}))
	}

	return repos, options, closeAll, nil
}

func listenAndServe(server *http.Server) error {
	log.Info().Str("addr", server.Addr).Msg("server listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname, "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
