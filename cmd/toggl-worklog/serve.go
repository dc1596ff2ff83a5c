package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Refresh summaries periodically and serve them over HTTP",
	Long: `Refresh every configured workspace right away and then once per scan
interval. Latest sensor states are served on /summaries; POST /sync?months=N
forces a re-sync of every workspace.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().Duration("interval", 0, "Scan interval (overrides config, minimum 1m)")
	serveCmd.Flags().String("addr", "", "HTTP listen address (overrides config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	logger := newLogger()

	// Context with signal handling
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, cfg, err := loadApp(ctx, logger)
	if err != nil {
		return err
	}
	defer application.Close()

	interval := cfg.Server.ScanInterval
	if d, _ := cmd.Flags().GetDuration("interval"); d > 0 {
		if d < time.Minute {
			return errors.New("--interval must be at least 1m")
		}
		interval = d
	}
	addr := cfg.Server.Addr
	if v, _ := cmd.Flags().GetString("addr"); v != "" {
		addr = v
	}

	srv := application.HTTPServer(addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server failed", slog.String("error", err.Error()))
			stop()
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	logger.Info("starting periodic refresh", slog.Duration("interval", interval))
	// Kick off immediately
	if err := application.RunOnce(ctx); err != nil {
		logger.Error("initial refresh failed", slog.String("error", err.Error()))
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			if err := application.RunOnce(ctx); err != nil {
				logger.Error("periodic refresh failed", slog.String("error", err.Error()))
			}
		}
	}
}
