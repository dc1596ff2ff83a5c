package domain

import "time"

// Sensor identifies one of the six worked-time summaries.
type Sensor string

const (
	SensorDailyWorkedTime        Sensor = "daily_worked_time"
	SensorWeeklyWorkedTime       Sensor = "weekly_worked_time"
	SensorMonthlyWorkedTime      Sensor = "monthly_worked_time"
	SensorCurrentDayWorkedTime   Sensor = "current_day_worked_time"
	SensorCurrentWeekWorkedTime  Sensor = "current_week_worked_time"
	SensorCurrentMonthWorkedTime Sensor = "current_month_worked_time"
)

// Sensors lists every sensor in display order.
var Sensors = []Sensor{
	SensorDailyWorkedTime,
	SensorWeeklyWorkedTime,
	SensorMonthlyWorkedTime,
	SensorCurrentDayWorkedTime,
	SensorCurrentWeekWorkedTime,
	SensorCurrentMonthWorkedTime,
}

var sensorNames = map[Sensor]string{
	SensorDailyWorkedTime:        "Daily Worked Time (Last 24h)",
	SensorWeeklyWorkedTime:       "Weekly Worked Time (Last 7d)",
	SensorMonthlyWorkedTime:      "Monthly Worked Time (Last 30d)",
	SensorCurrentDayWorkedTime:   "Today's Worked Time",
	SensorCurrentWeekWorkedTime:  "This Week's Worked Time",
	SensorCurrentMonthWorkedTime: "This Month's Worked Time",
}

// Name returns the human readable sensor name.
func (s Sensor) Name() string {
	if n, ok := sensorNames[s]; ok {
		return n
	}
	return string(s)
}

// Snapshot is the result of one refresh of a workspace: all six summaries
// computed from the same cache generation.
type Snapshot struct {
	WorkspaceID string                       `json:"workspace_id"`
	RefreshedAt time.Time                    `json:"refreshed_at"`
	Summaries   map[Sensor]WorkedTimeSummary `json:"-"`
}
