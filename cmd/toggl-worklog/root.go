package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"toggl-worklog/internal/app"
	"toggl-worklog/internal/config"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "toggl-worklog",
	Short: "Worked-time summaries from Toggl Track",
	Long: `toggl-worklog fetches your Toggl Track time entries and turns them into
rolling (last 24h, 7d, 30d) and calendar (today, this week, this month)
worked-time summaries for a home dashboard.`,
	Version:       version + " (" + commit + ")",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "TOML config file (default $WORKLOG_CONFIG)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(validateCmd)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// loadApp reads the config and builds the application. Callers own Close.
func loadApp(ctx context.Context, logger *slog.Logger) (*app.App, config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, cfg, err
	}
	a, err := app.New(ctx, logger, cfg)
	if err != nil {
		return nil, cfg, err
	}
	return a, cfg, nil
}
