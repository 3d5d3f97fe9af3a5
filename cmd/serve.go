package cmd

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nijaru/yt-notes/config"
	"github.com/nijaru/yt-notes/handlers/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			logrus.WithError(err).Error("Invalid configuration")
			return err
		}

		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.ServerPort = port
		}

		log, err := newLogger(cfg, false)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		app, err := newApp(ctx, cfg, log)
		if err != nil {
			log.WithError(err).Error("Failed to initialize services")
			return err
		}
		defer app.Close()

		if app.cache != nil {
			go purgeLoop(ctx, app, cfg.Cache.TTL)
		}

		server := api.NewServer(cfg,
			api.WithLogger(log),
			api.WithServices(app.video),
		)

		errCh := make(chan error, 1)
		go func() {
			if err := server.Start(); err != nil && err != http.ErrServerClosed {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				log.WithError(err).Error("Server failed")
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.WithError(err).Error("Server shutdown failed")
			return err
		}

		log.Info("Server stopped")
		return nil
	},
}

// purgeLoop drops expired cache rows so memory use stays bounded by the TTL.
func purgeLoop(ctx context.Context, app *App, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := app.cache.PurgeExpired(ctx)
			if err != nil {
				app.logger.WithError(err).Warn("Cache purge failed")
				continue
			}
			app.logger.WithField("removed", removed).Debug("Cache purged")
		}
	}
}

func init() {
	serveCmd.Flags().String("port", "", "Port to listen on (overrides SERVER_PORT)")
	rootCmd.AddCommand(serveCmd)
}
