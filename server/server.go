package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/go-token-service/auth"
	"github.com/jrsteele09/go-token-service/clients"
	"github.com/jrsteele09/go-token-service/directory"
	"github.com/jrsteele09/go-token-service/internal/config"
	"github.com/jrsteele09/go-token-service/token"
	"github.com/jrsteele09/go-token-service/token/keys"
	"github.com/jrsteele09/go-token-service/token/refresh"
	"github.com/jrsteele09/go-token-service/userpools"
	"github.com/jrsteele09/go-token-service/users"
	"github.com/rs/zerolog/log"
)

// Repos holds the storage the server is wired to
type Repos struct {
	Clients       clients.Repo
	UserPools     userpools.Repo
	Users         users.UserRepo
	RefreshTokens refresh.Repo
}

// HealthCheck reports whether a backing dependency is reachable
type HealthCheck func(ctx context.Context) error

type Server struct {
	env          string // Environment (e.g., "DEV", "PROD")
	mux          *http.ServeMux
	routes       []string
	config       config.Config
	repos        Repos
	signer       keys.Signer
	refresh      *refresh.Manager
	tokens       *auth.TokenService
	healthChecks map[string]HealthCheck
}

type Option func(*Server)

// WithHealthCheck adds a named dependency check to GET /healthz
func WithHealthCheck(name string, check HealthCheck) Option {
	return func(s *Server) {
		s.healthChecks[name] = check
	}
}

func New(ctx context.Context, cfg config.Config, repos Repos, signer keys.Signer, options ...Option) (*Server, error) {
	if repos.Clients == nil || repos.UserPools == nil || repos.Users == nil || repos.RefreshTokens == nil {
		return nil, fmt.Errorf("[Server New] all repos are required")
	}
	if signer == nil {
		return nil, fmt.Errorf("[Server New] signer is required")
	}

	refreshManager := refresh.NewManager(repos.RefreshTokens, cfg)
	dir, err := directory.NewService(repos.Clients, repos.UserPools, repos.Users, refreshManager)
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create directory: %w", err)
	}
	tokenService, err := auth.NewTokenService(dir, token.NewGenerator(signer, repos.UserPools, refreshManager, cfg))
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to create token service: %w", err)
	}

	s := &Server{
		env:          cfg.GetEnv(),
		mux:          http.NewServeMux(),
		config:       cfg,
		repos:        repos,
		signer:       signer,
		refresh:      refreshManager,
		tokens:       tokenService,
		healthChecks: make(map[string]HealthCheck),
	}
	for _, opt := range options {
		opt(s)
	}

	// Bootstrap: ensure the default pool and client exist, then apply the seed file
	if err := s.InitialiseSystem(ctx); err != nil {
		return nil, fmt.Errorf("[Server New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%s] %s", color+paddedMethod+ResetColor, path)
}
