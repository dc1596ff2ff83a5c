package worklog

import (
	"time"

	"toggl-worklog/internal/domain"
)

// Filter returns the entries keep accepts, in their original order.
func Filter(entries []domain.TimeEntry, keep func(domain.TimeEntry) bool) []domain.TimeEntry {
	out := make([]domain.TimeEntry, 0, len(entries))
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// StartedWithin accepts entries that started no earlier than window before
// now. Both instants are compared by wall clock with their offsets dropped,
// so an entry logged at 09:00+02:00 counts as 09:00 whatever zone now is in.
func StartedWithin(now time.Time, window time.Duration) func(domain.TimeEntry) bool {
	cutoff := wallClock(now).Add(-window)
	return func(e domain.TimeEntry) bool {
		if e.Start.IsZero() {
			return false
		}
		return !wallClock(e.Start).Before(cutoff)
	}
}

// StartedOnDates accepts entries whose start date, read in the entry's own
// offset, falls in [from, to]. Time of day is ignored on all three.
func StartedOnDates(from, to time.Time) func(domain.TimeEntry) bool {
	from, to = dateOf(from), dateOf(to)
	return func(e domain.TimeEntry) bool {
		if e.Start.IsZero() {
			return false
		}
		d := dateOf(e.Start)
		return !d.Before(from) && !d.After(to)
	}
}

// WeekStart returns the Monday of day's week.
func WeekStart(day time.Time) time.Time {
	offset := (int(day.Weekday()) + 6) % 7
	return dateOf(day).AddDate(0, 0, -offset)
}

// MonthStart returns the first day of day's month.
func MonthStart(day time.Time) time.Time {
	return time.Date(day.Year(), day.Month(), 1, 0, 0, 0, 0, time.UTC)
}

func wallClock(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
}

func dateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
