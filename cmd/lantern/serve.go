package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/lantern/internal/cli"
	lanternhttp "github.com/aretw0/lantern/pkg/adapters/http"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the host JSON API",
	Long:  `Serves one journey controller per session over HTTP, with Prometheus metrics on /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := loadServices(cmd)
		if err != nil {
			return err
		}
		defer svc.Close()

		port := svc.Config.HTTP.Port
		if cmd.Flags().Changed("port") {
			port, _ = cmd.Flags().GetInt("port")
		}

		server := lanternhttp.NewServer(svc,
			lanternhttp.WithLogger(svc.Logger),
			lanternhttp.WithMetrics(svc.Metrics.Handler()),
			lanternhttp.WithMaxSessions(svc.Config.HTTP.MaxSessions),
		)
		defer server.Close()

		ctx := cli.NewSignalContext(context.Background())
		defer ctx.Cancel()

		return listen(ctx, fmt.Sprintf(":%d", port), server, svc.Logger)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().IntP("port", "p", 8080, "Port to listen on (defaults to http.port)")
}

// listen serves handler until ctx is cancelled, then shuts down gracefully.
func listen(ctx *cli.SignalContext, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("listening", "address", addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("shutting down", "signal", ctx.Signal())

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		logger.Info("server stopped")
		return nil
	}
}
