package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	msql "toggl-worklog/internal/adapter/mysql"
	"toggl-worklog/internal/config"
	"toggl-worklog/internal/domain"
	"toggl-worklog/internal/ports"
	"toggl-worklog/internal/usecase"
	"toggl-worklog/internal/worklog"
)

// DefaultSyncMonths is the window of a manual sync when none is given.
const DefaultSyncMonths = 3

// App wires one worklog client and coordinator per configured account.
type App struct {
	log          *slog.Logger
	coordinators []*usecase.Coordinator
	closers      []func() error
}

// SyncResult reports the outcome of a manual sync across all accounts.
type SyncResult struct {
	Months int `json:"months"`
	Synced int `json:"synced"`
	Failed int `json:"failed"`
}

func New(ctx context.Context, log *slog.Logger, cfg config.Config) (*App, error) {
	a := &App{log: log}

	var recorder ports.Recorder
	if cfg.MySQL.DSN != "" {
		rec, err := msql.NewRecorder(ctx, cfg.MySQL.DSN, log)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, rec.Close)
		if err := rec.Migrate(ctx); err != nil {
			a.Close()
			return nil, err
		}
		recorder = rec
	}

	for _, acc := range cfg.Accounts {
		opts := []worklog.Option{worklog.WithBaseURL(cfg.Toggl.BaseURL)}
		if acc.FetchMode == config.FetchModeReports {
			opts = append(opts, worklog.WithReportsAPI())
		}
		client, err := worklog.New(acc.APIToken, acc.WorkspaceID, acc.SyncMonths, log, opts...)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("workspace %s: %w", acc.WorkspaceID, err)
		}
		a.closers = append(a.closers, client.Close)
		a.coordinators = append(a.coordinators, &usecase.Coordinator{
			Log:      log,
			Worklog:  client,
			Recorder: recorder,
		})
	}
	return a, nil
}

// Clients returns the worklog client of every account.
func (a *App) Clients() []*worklog.Client {
	out := make([]*worklog.Client, 0, len(a.coordinators))
	for _, c := range a.coordinators {
		out = append(out, c.Worklog)
	}
	return out
}

// RunOnce refreshes every account over its configured sync window.
func (a *App) RunOnce(ctx context.Context) error {
	var errs []error
	for _, c := range a.coordinators {
		if err := c.Refresh(ctx, 0); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sync clears every account's cache and refreshes it over the last months
// (1-12, 0 meaning DefaultSyncMonths). Failures are counted, not returned.
func (a *App) Sync(ctx context.Context, months int) (SyncResult, error) {
	if months == 0 {
		months = DefaultSyncMonths
	}
	if months < worklog.MinSyncMonths || months > worklog.MaxSyncMonths {
		return SyncResult{}, worklog.ErrSyncMonths
	}
	if len(a.coordinators) == 0 {
		return SyncResult{}, errors.New("no worklog account configured")
	}
	a.log.Info("syncing timesheet data", slog.Int("months", months))

	res := SyncResult{Months: months}
	for _, c := range a.coordinators {
		ws := c.Worklog.WorkspaceID()
		if err := c.Refresh(ctx, months); err != nil {
			res.Failed++
			continue
		}
		res.Synced++
		a.log.Info("synced workspace", slog.String("workspace_id", ws))
	}
	a.log.Info("timesheet sync completed",
		slog.Int("synced", res.Synced),
		slog.Int("failed", res.Failed),
	)
	return res, nil
}

// Snapshots returns the latest snapshot of every account that has one.
func (a *App) Snapshots() []domain.Snapshot {
	out := make([]domain.Snapshot, 0, len(a.coordinators))
	for _, c := range a.coordinators {
		if s, ok := c.Snapshot(); ok {
			out = append(out, s)
		}
	}
	return out
}

// Close releases every client and the recorder.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
