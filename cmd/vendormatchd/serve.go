package main

import (
	"context"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/vendormatch/recommender/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the recommendation HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		d, err := buildDeps(ctx)
		if err != nil {
			return err
		}
		defer d.close()

		httpServer := server.NewHTTPServer(server.HTTPServerConfig{
			Port:   d.cfg.HTTPPort,
			Logger: slog.Default(),
		}, d.newPipeline())

		errCh := make(chan error, 1)
		go func() {
			errCh <- httpServer.Start()
		}()

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
			slog.Info("received shutdown signal")
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("failed to shutdown HTTP server", "error", err)
		}

		slog.Info("server stopped")
		return nil
	},
}
