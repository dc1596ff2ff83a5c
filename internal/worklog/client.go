// Package worklog derives worked-time summaries for one Toggl workspace.
//
// A Client fetches every entry of its sync window once, keeps them in
// memory and computes the rolling (last 24h/7d/30d) and calendar (today,
// this week, this month) summaries from that cache. The cache lives until
// ClearCache or Resync; there is no timer behind it.
package worklog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	tg "toggl-worklog/internal/adapter/toggl"
	"toggl-worklog/internal/domain"
	"toggl-worklog/internal/ports"
)

const (
	DefaultSyncMonths = 3
	MinSyncMonths     = 1
	MaxSyncMonths     = 12

	// A sync month is 30 days, not a calendar month.
	daysPerSyncMonth = 30
)

var (
	ErrEmptyToken = errors.New("worklog: API token cannot be empty")
	ErrSyncMonths = fmt.Errorf("worklog: sync months must be between %d and %d", MinSyncMonths, MaxSyncMonths)
)

// Client is the worked-time client of a single workspace.
type Client struct {
	workspaceID string
	syncMonths  int
	toggl       ports.TogglClient
	now         func() time.Time
	log         *slog.Logger

	mu        sync.Mutex
	entries   []domain.TimeEntry
	populated bool
	gen       uint64 // bumped by ClearCache; stale fetches are not stored
	fetches   singleflight.Group
}

// Option customises a Client.
type Option func(*settings)

type settings struct {
	baseURL   string
	reports   bool
	toggl     ports.TogglClient
	now       func() time.Time
	togglOpts []tg.Option
}

// WithBaseURL points the client at another Toggl host.
func WithBaseURL(u string) Option {
	return func(s *settings) { s.baseURL = u }
}

// WithReportsAPI fetches entries through the Reports API v3 instead of the
// v9 time entries endpoint.
func WithReportsAPI() Option {
	return func(s *settings) { s.reports = true }
}

// WithTogglClient replaces the HTTP client entirely.
func WithTogglClient(tc ports.TogglClient) Option {
	return func(s *settings) { s.toggl = tc }
}

// WithClock overrides the wall clock used for windows.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.now = now }
}

// WithTransportOptions passes options to the underlying Toggl client.
func WithTransportOptions(opts ...tg.Option) Option {
	return func(s *settings) { s.togglOpts = append(s.togglOpts, opts...) }
}

// New builds a client. syncMonths of 0 means DefaultSyncMonths. It fails
// before any network activity when the token is blank.
func New(apiToken, workspaceID string, syncMonths int, log *slog.Logger, opts ...Option) (*Client, error) {
	apiToken = strings.TrimSpace(apiToken)
	if apiToken == "" {
		return nil, ErrEmptyToken
	}
	if syncMonths == 0 {
		syncMonths = DefaultSyncMonths
	}
	if syncMonths < MinSyncMonths || syncMonths > MaxSyncMonths {
		return nil, ErrSyncMonths
	}

	s := settings{now: time.Now}
	for _, opt := range opts {
		opt(&s)
	}
	log = log.With(slog.String("workspace_id", workspaceID))
	tc := s.toggl
	if tc == nil {
		httpClient := tg.NewClient(s.baseURL, apiToken, log, s.togglOpts...)
		tc = httpClient
		if s.reports {
			tc = tg.NewReportsClient(httpClient, workspaceID)
		}
	}
	log.Info("initialized worklog client",
		slog.String("token", tg.TokenPreview(apiToken)),
		slog.Int("sync_months", syncMonths),
	)
	return &Client{
		workspaceID: workspaceID,
		syncMonths:  syncMonths,
		toggl:       tc,
		now:         s.now,
		log:         log,
	}, nil
}

func (c *Client) WorkspaceID() string { return c.workspaceID }

func (c *Client) SyncMonths() int { return c.syncMonths }

// ValidateToken checks that the token can see the configured workspace.
// Transport failures are returned so setup can tell "cannot connect" from
// "invalid credentials".
func (c *Client) ValidateToken(ctx context.Context) (bool, error) {
	return c.toggl.HasWorkspace(ctx, c.workspaceID)
}

// ClearCache drops the cached entries; the next summary fetches again.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.entries, c.populated = nil, false
	c.gen++
	c.mu.Unlock()
	c.log.Debug("cleared entries cache")
}

// Close releases the HTTP connection pool. It is idempotent.
func (c *Client) Close() error {
	return c.toggl.Close()
}

// Entries returns the sync-window entries, fetching them on first use.
// A failed fetch is returned and leaves the cache empty.
func (c *Client) Entries(ctx context.Context) ([]domain.TimeEntry, error) {
	return c.populate(ctx, c.syncMonths)
}

// Resync clears the cache and repopulates it over the last months*30 days.
// months of 0 uses the configured sync window. The fetch error, if any, is
// returned and the cache stays empty.
func (c *Client) Resync(ctx context.Context, months int) error {
	if months == 0 {
		months = c.syncMonths
	}
	if months < MinSyncMonths || months > MaxSyncMonths {
		return ErrSyncMonths
	}
	c.ClearCache()
	_, err := c.populate(ctx, months)
	return err
}

func (c *Client) populate(ctx context.Context, months int) ([]domain.TimeEntry, error) {
	entries, ok, gen := c.cached()
	if ok {
		return entries, nil
	}
	// Callers only share a fetch of the same window within one cache generation.
	key := fmt.Sprintf("%d/%d", gen, months)
	v, err, _ := c.fetches.Do(key, func() (any, error) {
		// A concurrent caller may have filled the cache while we queued.
		if entries, ok, cur := c.cached(); ok && cur == gen {
			return entries, nil
		}
		today := c.today()
		start := today.AddDate(0, 0, -daysPerSyncMonth*months)
		c.log.Debug("fetching entries for sync period",
			slog.Int("months", months),
			slog.String("from", start.Format(time.DateOnly)),
			slog.String("to", today.Format(time.DateOnly)),
		)
		entries, err := c.toggl.ListTimeEntries(ctx, start, today)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		stored := c.gen == gen
		if stored {
			c.entries, c.populated = entries, true
		}
		c.mu.Unlock()
		if stored {
			c.log.Info("cached entries for sync period", slog.Int("count", len(entries)))
		} else {
			c.log.Debug("cache cleared during fetch, entries not stored", slog.Int("count", len(entries)))
		}
		return entries, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]domain.TimeEntry), nil
}

func (c *Client) cached() ([]domain.TimeEntry, bool, uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries, c.populated, c.gen
}

// today is the calendar date of the client's clock.
func (c *Client) today() time.Time {
	return dateOf(c.now())
}
