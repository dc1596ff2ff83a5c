package domain

import "math"

const (
	millisPerHour   = 3_600_000
	millisPerMinute = 60_000
)

// WorkedTimeSummary aggregates a filtered set of time entries.
type WorkedTimeSummary struct {
	TotalDurationMillis int64       `json:"total_duration"`
	DurationHours       int64       `json:"duration_hours"`
	DurationMinutes     int64       `json:"duration_minutes"` // remainder after whole hours
	EntriesCount        int         `json:"entries_count"`
	Entries             []TimeEntry `json:"entries"`
}

// TotalDurationMillis sums entry durations in milliseconds. Entries without
// a duration contribute nothing.
func TotalDurationMillis(entries []TimeEntry) int64 {
	var total int64
	for _, e := range entries {
		total += e.DurationMillis()
	}
	return total
}

// NewWorkedTimeSummary packages entries into a summary. A nil or empty
// slice yields the zero summary with a non-nil empty Entries slice.
func NewWorkedTimeSummary(entries []TimeEntry) WorkedTimeSummary {
	if entries == nil {
		entries = []TimeEntry{}
	}
	total := TotalDurationMillis(entries)
	return WorkedTimeSummary{
		TotalDurationMillis: total,
		DurationHours:       total / millisPerHour,
		DurationMinutes:     (total % millisPerHour) / millisPerMinute,
		EntriesCount:        len(entries),
		Entries:             entries,
	}
}

// StateHours is the value shown on the dashboard: whole hours plus the
// minute remainder as a fraction, rounded to two decimals.
func (s WorkedTimeSummary) StateHours() float64 {
	v := float64(s.DurationHours) + float64(s.DurationMinutes)/60
	return math.Round(v*100) / 100
}
