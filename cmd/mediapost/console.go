package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/mediapost/internal/adapter/backend"
	"github.com/pscheid92/mediapost/internal/adapter/console"
	"github.com/pscheid92/mediapost/internal/adapter/metrics"
	"github.com/pscheid92/mediapost/internal/app"
	"github.com/pscheid92/mediapost/internal/navigation"
	"github.com/pscheid92/mediapost/internal/overlay"
	"github.com/pscheid92/mediapost/internal/platform/config"
	"github.com/pscheid92/mediapost/internal/platform/logging"
	"github.com/pscheid92/mediapost/internal/session"
	"github.com/spf13/cobra"
)

const metricsShutdownTimeout = 5 * time.Second

func newConsoleCmd() *cobra.Command {
	var backendURL string

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Interactive client against a mediapost backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if backendURL != "" {
				cfg.BackendURL = backendURL
			}

			// stdout belongs to the console
			logging.InitLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			slog.Info("Console starting", "env", cfg.AppEnv, "backend", cfg.BackendURL)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runConsole(ctx, cfg, cmd)
		},
	}

	cmd.Flags().StringVar(&backendURL, "backend-url", "", "Backend base URL (overrides BACKEND_URL)")
	return cmd
}

func runConsole(ctx context.Context, cfg *config.Config, cmd *cobra.Command) error {
	clock := clockwork.NewRealClock()
	reg := metrics.NewRegistry()

	client, err := backend.NewClient(cfg.BackendURL, cfg.RequestTimeout)
	if err != nil {
		return err
	}

	router := navigation.NewRouter("/")
	coordinator := session.NewCoordinator(client, router, clock, metrics.NewSessionMetrics(reg),
		session.WithLoginPath(cfg.LoginPath),
		session.WithRefreshTimeout(cfg.RequestTimeout),
	)
	stack := overlay.NewStack(clock, metrics.NewOverlayMetrics(reg))

	root := app.NewRoot(coordinator, stack, router)
	defer root.Stop()

	if cfg.MetricsAddr != "" {
		shutdown := serveMetrics(cfg.MetricsAddr, reg)
		defer shutdown()
	}

	// resume a session the backend still holds for us
	if _, err := coordinator.EnsureAuthorization(ctx, false); err != nil {
		slog.Warn("Session resume failed", "error", err)
	}

	c := console.New(root, backend.NewAPI(client, coordinator), clock, cmd.OutOrStdout())
	return c.Run(ctx, cmd.InOrStdin())
}

func serveMetrics(addr string, reg *prometheus.Registry) func() {
	srv := &http.Server{
		Addr:              addr,
		Handler:           metrics.Handler(reg),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("Serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server error", "error", err)
		}
	}()

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Metrics server shutdown error", "error", err)
		}
	}
}
