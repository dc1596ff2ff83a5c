package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"toggl-worklog/internal/domain"
	"toggl-worklog/internal/ports"
	"toggl-worklog/internal/worklog"
)

// Coordinator refreshes one workspace: it forces a fresh sync-window fetch,
// derives all six summaries from it and keeps the latest snapshot. A failed
// refresh leaves the previous snapshot in place.
type Coordinator struct {
	Log      *slog.Logger
	Worklog  *worklog.Client
	Recorder ports.Recorder // optional

	refreshMu sync.Mutex

	mu       sync.RWMutex
	last     domain.Snapshot
	hasLast  bool
	lastErr  error
	failedAt time.Time
}

// Refresh runs one update. months of 0 uses the client's own sync window.
func (c *Coordinator) Refresh(ctx context.Context, months int) error {
	if c.Worklog == nil {
		return errors.New("coordinator not initialized: missing worklog client")
	}
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	ws := c.Worklog.WorkspaceID()
	c.Log.Info("updating worklog data", slog.String("workspace_id", ws), slog.Int("months", months))

	if err := c.Worklog.Resync(ctx, months); err != nil {
		c.setFailure(err)
		c.Log.Error("error fetching worklog data", slog.String("workspace_id", ws), slog.String("error", err.Error()))
		return fmt.Errorf("refresh workspace %s: %w", ws, err)
	}

	// The cache is populated and read-only until the next Resync, so the
	// derivations need no coordination.
	results := make([]domain.WorkedTimeSummary, len(domain.Sensors))
	g, gctx := errgroup.WithContext(ctx)
	for i, s := range domain.Sensors {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = c.Worklog.Summary(gctx, s)
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		c.setFailure(err)
		c.Log.Error("worklog refresh interrupted", slog.String("workspace_id", ws), slog.String("error", err.Error()))
		return fmt.Errorf("refresh workspace %s: %w", ws, err)
	}

	snap := domain.Snapshot{
		WorkspaceID: ws,
		RefreshedAt: time.Now(),
		Summaries:   make(map[domain.Sensor]domain.WorkedTimeSummary, len(results)),
	}
	for i, s := range domain.Sensors {
		snap.Summaries[s] = results[i]
	}

	c.mu.Lock()
	c.last, c.hasLast, c.lastErr = snap, true, nil
	c.mu.Unlock()

	c.Log.Info("updated worklog data",
		slog.String("workspace_id", ws),
		slog.Int("today_entries", snap.Summaries[domain.SensorCurrentDayWorkedTime].EntriesCount),
		slog.Int("week_entries", snap.Summaries[domain.SensorCurrentWeekWorkedTime].EntriesCount),
		slog.Int("month_entries", snap.Summaries[domain.SensorCurrentMonthWorkedTime].EntriesCount),
	)

	if c.Recorder != nil {
		if err := c.Recorder.RecordSnapshot(ctx, snap); err != nil {
			c.Log.Error("recording snapshot failed", slog.String("workspace_id", ws), slog.String("error", err.Error()))
		}
	}
	return nil
}

// Snapshot returns the latest successful snapshot, if any.
func (c *Coordinator) Snapshot() (domain.Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last, c.hasLast
}

// LastFailure returns when the most recent refresh failed and why. The
// error is nil once a later refresh succeeded.
func (c *Coordinator) LastFailure() (time.Time, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.failedAt, c.lastErr
}

func (c *Coordinator) setFailure(err error) {
	c.mu.Lock()
	c.lastErr, c.failedAt = err, time.Now()
	c.mu.Unlock()
}
