package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func secs(n int64) *int64 { return &n }

func TestNewWorkedTimeSummary(t *testing.T) {
	t.Run("two half hours", func(t *testing.T) {
		s := NewWorkedTimeSummary([]TimeEntry{{ID: 1, Seconds: secs(1800)}, {ID: 2, Seconds: secs(1800)}})
		assert.Equal(t, int64(3_600_000), s.TotalDurationMillis)
		assert.Equal(t, int64(1), s.DurationHours)
		assert.Equal(t, int64(0), s.DurationMinutes)
		assert.Equal(t, 2, s.EntriesCount)
		assert.Equal(t, 1.0, s.StateHours())
	})

	t.Run("missing duration counts as zero", func(t *testing.T) {
		s := NewWorkedTimeSummary([]TimeEntry{{ID: 1, Seconds: secs(100)}, {ID: 2}, {ID: 3, Seconds: secs(200)}})
		assert.Equal(t, int64(300_000), s.TotalDurationMillis)
		assert.Equal(t, int64(0), s.DurationHours)
		assert.Equal(t, int64(5), s.DurationMinutes)
		assert.Equal(t, 3, s.EntriesCount)
	})

	t.Run("nil yields the empty summary", func(t *testing.T) {
		s := NewWorkedTimeSummary(nil)
		require.NotNil(t, s.Entries)
		assert.Empty(t, s.Entries)
		assert.Zero(t, s.TotalDurationMillis)
		assert.Zero(t, s.EntriesCount)
		assert.Zero(t, s.StateHours())
	})
}

func TestStateHours(t *testing.T) {
	tests := []struct {
		name    string
		seconds int64
		want    float64
	}{
		{"one hour forty", 6000, 1.67},
		{"seven hours fifteen", 26100, 7.25},
		{"seconds below a minute are dropped", 59, 0},
		{"twenty minutes", 1200, 0.33},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewWorkedTimeSummary([]TimeEntry{{Seconds: secs(tt.seconds)}})
			assert.Equal(t, tt.want, s.StateHours())
		})
	}
}

func TestSensorNames(t *testing.T) {
	require.Len(t, Sensors, 6)
	seen := map[string]bool{}
	for _, s := range Sensors {
		name := s.Name()
		assert.NotEmpty(t, name, string(s))
		assert.False(t, seen[name], "duplicate name %q", name)
		seen[name] = true
	}
	assert.Equal(t, "Daily Worked Time (Last 24h)", SensorDailyWorkedTime.Name())
}
