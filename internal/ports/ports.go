package ports

import (
	"context"
	"time"

	"toggl-worklog/internal/domain"
)

// TogglClient is the remote side of a worklog client: it lists completed
// entries for an inclusive calendar-date range and checks workspace access.
type TogglClient interface {
	// ListTimeEntries only looks at the date part of startDate and endDate.
	ListTimeEntries(ctx context.Context, startDate, endDate time.Time) ([]domain.TimeEntry, error)
	HasWorkspace(ctx context.Context, workspaceID string) (bool, error)
	Close() error
}

// Recorder receives refreshed snapshots and keeps the latest sensor states
// somewhere outside the process. Implementations must be idempotent.
type Recorder interface {
	RecordSnapshot(ctx context.Context, snap domain.Snapshot) error
}
