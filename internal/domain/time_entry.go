package domain

import "time"

// TimeEntry represents a completed Toggl time entry in the domain.
// Running entries never reach this type; adapters drop them on ingestion.
type TimeEntry struct {
	ID          int64      `json:"id"`
	Start       time.Time  `json:"start"` // keeps the offset Toggl reported
	Stop        *time.Time `json:"stop,omitempty"`
	Seconds     *int64     `json:"seconds"` // nil when Toggl omitted a duration
	Description string     `json:"description"`
	ProjectID   *int64     `json:"project_id,omitempty"`
	TaskID      *int64     `json:"task_id,omitempty"`
}

// DurationMillis returns the entry duration in milliseconds, 0 when unknown.
func (e TimeEntry) DurationMillis() int64 {
	if e.Seconds == nil {
		return 0
	}
	return *e.Seconds * 1000
}
