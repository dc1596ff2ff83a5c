package toggl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"toggl-worklog/internal/domain"
)

const timeEntriesPath = "/api/v9/me/time_entries"

// ListTimeEntries fetches completed entries whose start falls in the
// inclusive date range [startDate, endDate], both days taken as full UTC days.
// Toggl v9: GET /api/v9/me/time_entries?start_date=...&end_date=...
func (c *Client) ListTimeEntries(ctx context.Context, startDate, endDate time.Time) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("start_date", startDate.Format(time.DateOnly)+"T00:00:00Z")
	q.Set("end_date", endDate.Format(time.DateOnly)+"T23:59:59Z")

	raw, err := c.do(ctx, http.MethodGet, timeEntriesPath, nil, q)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return []domain.TimeEntry{}, nil
	}
	var records []rawTimeEntry
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, &Error{Kind: KindUnexpected, Method: http.MethodGet, Endpoint: timeEntriesPath,
			Err: fmt.Errorf("decode time entries: %w", err)}
	}

	out := make([]domain.TimeEntry, 0, len(records))
	for _, r := range records {
		e, ok := r.normalize()
		if !ok {
			continue
		}
		out = append(out, e)
	}
	c.log.Debug("normalized time entries",
		slog.Int("received", len(records)),
		slog.Int("kept", len(out)),
	)
	return out, nil
}

// rawTimeEntry mirrors the JSON from Toggl v9.
type rawTimeEntry struct {
	ID          int64   `json:"id"`
	Description *string `json:"description"`
	ProjectID   *int64  `json:"project_id"`
	TaskID      *int64  `json:"task_id"`
	Start       string  `json:"start"`
	Stop        *string `json:"stop"`
	Duration    *int64  `json:"duration"` // negative while running
}

// normalize maps the record to the domain, reporting false for running
// entries.
func (r rawTimeEntry) normalize() (domain.TimeEntry, bool) {
	if r.Duration != nil && *r.Duration < 0 {
		return domain.TimeEntry{}, false
	}
	e := domain.TimeEntry{
		ID:        r.ID,
		Seconds:   r.Duration,
		ProjectID: r.ProjectID,
		TaskID:    r.TaskID,
	}
	if r.Description != nil {
		e.Description = *r.Description
	}
	e.Start, _ = parseTimestamp(r.Start)
	if r.Stop != nil {
		if stop, ok := parseTimestamp(*r.Stop); ok {
			e.Stop = &stop
		}
	}
	return e, true
}

// parseTimestamp accepts RFC 3339 with any offset and, failing that, a bare
// local wall-clock timestamp. The offset is kept as reported.
func parseTimestamp(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
		return t, true
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05.999999999", s, time.Local); err == nil {
		return t, true
	}
	return time.Time{}, false
}
