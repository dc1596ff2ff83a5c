package worklog

import (
	"context"
	"log/slog"
	"time"

	"toggl-worklog/internal/domain"
)

// DailyWorkedTime covers entries started in the last 24 hours.
func (c *Client) DailyWorkedTime(ctx context.Context) domain.WorkedTimeSummary {
	return c.summarize(ctx, c.rolling(24))
}

// WeeklyWorkedTime covers entries started in the last 7 days.
func (c *Client) WeeklyWorkedTime(ctx context.Context) domain.WorkedTimeSummary {
	return c.summarize(ctx, c.rolling(7*24))
}

// MonthlyWorkedTime covers entries started in the last 30 days.
func (c *Client) MonthlyWorkedTime(ctx context.Context) domain.WorkedTimeSummary {
	return c.summarize(ctx, c.rolling(30*24))
}

// CurrentDayWorkedTime covers entries started today.
func (c *Client) CurrentDayWorkedTime(ctx context.Context) domain.WorkedTimeSummary {
	today := c.today()
	return c.summarize(ctx, calendar(today, today))
}

// CurrentWeekWorkedTime covers entries started since Monday.
func (c *Client) CurrentWeekWorkedTime(ctx context.Context) domain.WorkedTimeSummary {
	today := c.today()
	return c.summarize(ctx, calendar(WeekStart(today), today))
}

// CurrentMonthWorkedTime covers entries started since the first of the month.
func (c *Client) CurrentMonthWorkedTime(ctx context.Context) domain.WorkedTimeSummary {
	today := c.today()
	return c.summarize(ctx, calendar(MonthStart(today), today))
}

// Summary returns the summary behind a sensor.
func (c *Client) Summary(ctx context.Context, s domain.Sensor) domain.WorkedTimeSummary {
	switch s {
	case domain.SensorDailyWorkedTime:
		return c.DailyWorkedTime(ctx)
	case domain.SensorWeeklyWorkedTime:
		return c.WeeklyWorkedTime(ctx)
	case domain.SensorMonthlyWorkedTime:
		return c.MonthlyWorkedTime(ctx)
	case domain.SensorCurrentDayWorkedTime:
		return c.CurrentDayWorkedTime(ctx)
	case domain.SensorCurrentWeekWorkedTime:
		return c.CurrentWeekWorkedTime(ctx)
	case domain.SensorCurrentMonthWorkedTime:
		return c.CurrentMonthWorkedTime(ctx)
	}
	return domain.NewWorkedTimeSummary(nil)
}

func (c *Client) summarize(ctx context.Context, keep func(domain.TimeEntry) bool) domain.WorkedTimeSummary {
	entries := c.orEmpty(c.Entries(ctx))
	return domain.NewWorkedTimeSummary(Filter(entries, keep))
}

// orEmpty folds a failed fetch into an empty entry set so summaries show
// zero instead of failing.
func (c *Client) orEmpty(entries []domain.TimeEntry, err error) []domain.TimeEntry {
	if err != nil {
		c.log.Error("error getting time entries", slog.String("error", err.Error()))
		return nil
	}
	return entries
}

func (c *Client) rolling(hours int) func(domain.TimeEntry) bool {
	return StartedWithin(c.now(), time.Duration(hours)*time.Hour)
}

func calendar(from, to time.Time) func(domain.TimeEntry) bool {
	return StartedOnDates(from, to)
}
