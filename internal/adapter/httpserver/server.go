// Package httpserver is the development backend: the session, login and media
// endpoints the client talks to, backed by in-memory storage.
package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/sessions"
	"github.com/jonboulle/clockwork"
	"github.com/labstack/echo/v4"
	"github.com/pscheid92/mediapost/internal/adapter/metrics"
	"github.com/pscheid92/mediapost/internal/platform/config"
	"github.com/prometheus/client_golang/prometheus"
)

type Server struct {
	echo   *echo.Echo
	config *config.BackendConfig
	clock  clockwork.Clock

	store        *Store
	tokens       *tokens
	sessionStore *sessions.CookieStore
	metrics      *metrics.HTTPMetrics
	registry     *prometheus.Registry
	startTime    time.Time
}

func NewServer(cfg *config.BackendConfig, clock clockwork.Clock, reg *prometheus.Registry) (*Server, error) {
	users, err := cfg.ParseUsers()
	if err != nil {
		return nil, fmt.Errorf("failed to parse users: %w", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:         e,
		config:       cfg,
		clock:        clock,
		store:        NewStore(users, clock),
		tokens:       newTokens(cfg.TokenSecret, cfg.TokenTTL, clock),
		sessionStore: setupSessionStore(cfg),
		metrics:      metrics.NewHTTPMetrics(reg),
		registry:     reg,
		startTime:    clock.Now(),
	}

	srv.registerRoutes()

	return srv, nil
}

// Handler exposes the router, e.g. for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Store() *Store {
	return s.store
}

func (s *Server) Start() error {
	slog.Info("Starting backend", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Session keys
const (
	sessionName      = "mediapost-session"
	sessionKeyUserID = "user_id"
)

// Echo context keys
const (
	contextKeyIdentity = "identity"
	contextKeyUserID   = "userID"
)

func setupSessionStore(cfg *config.BackendConfig) *sessions.CookieStore {
	sessionStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	sessionStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.SessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cfg.AppEnv == "production",
		SameSite: http.SameSiteLaxMode,
	}
	return sessionStore
}
