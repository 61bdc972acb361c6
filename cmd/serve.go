package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/listing-harvester/internal/api"
)

// newServeCmd creates and configures the 'serve' subcommand.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the harvester HTTP API",
		Long: `Starts the HTTP server exposing search, listing query, and export
endpoints, plus health checks and Prometheus metrics.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := setupEnvironment(cmd.Context())
			if err != nil {
				return err
			}
			defer env.close()

			svc, err := env.searchService(cmd.Context())
			if err != nil {
				return err
			}

			server := api.NewServer(svc, env.store, env.cfg, env.logger)
			httpServer := &http.Server{
				Addr:              fmt.Sprintf(":%d", env.cfg.Server.Port),
				Handler:           server.Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				env.logger.Info("http server listening", zap.Int("port", env.cfg.Server.Port))
				errCh <- httpServer.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if err != nil && !errors.Is(err, http.ErrServerClosed) {
					return fmt.Errorf("http server: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			env.logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown http server: %w", err)
			}
			return nil
		},
	}
	return cmd
}
