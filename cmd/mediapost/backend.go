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
	"github.com/pscheid92/mediapost/internal/adapter/httpserver"
	"github.com/pscheid92/mediapost/internal/adapter/metrics"
	"github.com/pscheid92/mediapost/internal/platform/config"
	"github.com/pscheid92/mediapost/internal/platform/logging"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newBackendCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "backend",
		Short: "Run the in-memory development backend",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadBackend()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if port != "" {
				cfg.Port = port
			}

			logging.InitLogger(cfg.LogLevel, cfg.LogFormat, os.Stderr)
			slog.Info("Backend starting", "env", cfg.AppEnv, "port", cfg.Port)

			srv, err := httpserver.NewServer(cfg, clockwork.NewRealClock(), metrics.NewRegistry())
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			slog.Info("Shutdown signal received, cleaning up...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	return cmd
}
