// Package window resolves local calendar dates to UTC instant ranges.
package window

import (
	"fmt"
	"time"
)

// DayWindow is the inclusive UTC range covering one full local calendar
// day, from local midnight through 23:59:59.999 local time.
type DayWindow struct {
	Start time.Time
	End   time.Time
}

// ForDate resolves the given calendar date in loc. Only the year, month
// and day of date are used. The local wall-clock day is always fully
// covered, including dates where a DST transition makes the day 23 or 25
// hours long in UTC.
func ForDate(date time.Time, loc *time.Location) DayWindow {
	y, m, d := date.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, loc)
	next := time.Date(y, m, d+1, 0, 0, 0, 0, loc)
	return DayWindow{
		Start: start.UTC(),
		End:   next.Add(-time.Millisecond).UTC(),
	}
}

// ParseDate parses a date-only YYYY-MM-DD argument.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// Dates returns the target dates for a run: days consecutive calendar
// days in loc, ending offset days before now's date. offset 1, days 1
// yields yesterday only; offset 0 starts at today. Dates are produced
// most recent first.
func Dates(now time.Time, loc *time.Location, offset, days int) []time.Time {
	y, m, d := now.In(loc).Date()
	out := make([]time.Time, 0, days)
	for i := 0; i < days; i++ {
		out = append(out, time.Date(y, m, d-offset-i, 0, 0, 0, 0, loc))
	}
	return out
}

// Key formats a resolved date for file names and log fields.
func Key(date time.Time) string { return date.Format("2006-01-02") }
