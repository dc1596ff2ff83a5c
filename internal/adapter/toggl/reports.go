package toggl

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"toggl-worklog/internal/domain"
)

const (
	reportsSearchPath = "/reports/api/v3/workspace/%s/search/time_entries"
	reportsPageSize   = 50
	// Guards against a server that keeps returning a next-row header.
	reportsMaxPages = 200
)

// ReportsClient lists entries through the Reports API v3 detailed search,
// which returns rows grouped by description/project/task. Everything else
// is served by the embedded v9 Client.
type ReportsClient struct {
	*Client
	workspaceID string
}

func NewReportsClient(c *Client, workspaceID string) *ReportsClient {
	return &ReportsClient{Client: c, workspaceID: workspaceID}
}

// ListTimeEntries flattens the grouped rows of the detailed report for the
// inclusive date range into entries. Pages are followed through the
// X-Next-Row-Number header.
func (r *ReportsClient) ListTimeEntries(ctx context.Context, startDate, endDate time.Time) ([]domain.TimeEntry, error) {
	path := fmt.Sprintf(reportsSearchPath, r.workspaceID)
	req := reportsSearch{
		StartDate: startDate.Format(time.DateOnly),
		EndDate:   endDate.Format(time.DateOnly),
		PageSize:  reportsPageSize,
	}

	out := []domain.TimeEntry{}
	var groups int
	for page := 0; page < reportsMaxPages; page++ {
		raw, header, err := r.exchange(ctx, http.MethodPost, path, req, nil)
		if err != nil {
			return nil, err
		}
		var rows []reportRow
		if raw != nil {
			if err := json.Unmarshal(raw, &rows); err != nil {
				return nil, &Error{Kind: KindUnexpected, Method: http.MethodPost, Endpoint: path,
					Err: fmt.Errorf("decode report rows: %w", err)}
			}
		}
		groups += len(rows)
		for _, row := range rows {
			out = append(out, row.flatten()...)
		}

		next, err := strconv.Atoi(header.Get("X-Next-Row-Number"))
		if err != nil || next <= 0 || len(rows) == 0 {
			break
		}
		req.FirstRowNumber = next
	}
	r.log.Debug("flattened report rows",
		slog.Int("groups", groups),
		slog.Int("entries", len(out)),
	)
	return out, nil
}

type reportsSearch struct {
	StartDate      string `json:"start_date"`
	EndDate        string `json:"end_date"`
	PageSize       int    `json:"page_size,omitempty"`
	FirstRowNumber int    `json:"first_row_number,omitempty"`
}

// reportRow is one grouping of the detailed report. The descriptive fields
// live on the group, durations on the nested entries.
type reportRow struct {
	Description *string          `json:"description"`
	ProjectID   *int64           `json:"project_id"`
	TaskID      *int64           `json:"task_id"`
	TimeEntries []reportRowEntry `json:"time_entries"`
}

type reportRowEntry struct {
	ID      int64   `json:"id"`
	Seconds *int64  `json:"seconds"`
	Start   string  `json:"start"`
	Stop    *string `json:"stop"`
}

func (g reportRow) flatten() []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, len(g.TimeEntries))
	for _, te := range g.TimeEntries {
		e, ok := rawTimeEntry{
			ID:          te.ID,
			Description: g.Description,
			ProjectID:   g.ProjectID,
			TaskID:      g.TaskID,
			Start:       te.Start,
			Stop:        te.Stop,
			Duration:    te.Seconds,
		}.normalize()
		if ok {
			out = append(out, e)
		}
	}
	return out
}
