// Package insights holds the pure analytics core: time windows, goal progress,
// effectiveness aggregation, the comparison matrix and the significance filter.
// Nothing in this package performs I/O.
package insights

import (
	"time"

	"github.com/noah-isme/intervention-insights-api/internal/models"
)

// termMonths approximates an academic term. It is not tied to a school calendar.
const termMonths = 3

// WindowStart returns the instant a timeframe window opens, evaluated in now's location.
// Weeks start on Monday (ISO-8601). Unknown timeframes resolve like daily.
func WindowStart(tf models.Timeframe, now time.Time) time.Time {
	switch tf {
	case models.TimeframeWeekly:
		// Weekday() counts from Sunday; shift so Monday is 0.
		offset := (int(now.Weekday()) + 6) % 7
		return startOfDay(now.AddDate(0, 0, -offset))
	case models.TimeframeMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	case models.TimeframeTerm:
		return now.AddDate(0, -termMonths, 0)
	default:
		return startOfDay(now)
	}
}

// RangeStart maps a settings time range onto the window resolver. The boolean is
// false when the range is unbounded.
func RangeStart(tr models.TimeRange, now time.Time) (time.Time, bool) {
	switch tr {
	case models.TimeRangeWeek:
		return WindowStart(models.TimeframeWeekly, now), true
	case models.TimeRangeMonth:
		return WindowStart(models.TimeframeMonthly, now), true
	case models.TimeRangeTerm:
		return WindowStart(models.TimeframeTerm, now), true
	case models.TimeRangeYear:
		return time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()), true
	default:
		return time.Time{}, false
	}
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
