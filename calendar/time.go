/*
Package calendar provides the date arithmetic every work-time computation
depends on.

KEY CONCEPTS:
  - Date: a time.Time normalized to midnight UTC (see Day)
  - DateRange: inclusive span of calendar days, iterated lazily
  - Interval: generic [Start, End] span of instants with strict overlap
  - Holiday: a named non-working day supplied by the caller

Nothing here performs I/O or caching. Holiday lists are always passed in.

SEE ALSO:
  - daterange.go: DateRange and its cursor
  - interval.go: Overlaps
  - workdays.go: workable-day counting
  - hours.go: duration to decimal hours
*/
package calendar

import (
	"slices"
	"time"
)

// DateLayout is the wire format for calendar days.
const DateLayout = "2006-01-02"

// =============================================================================
// DATES
// =============================================================================

// NewDate returns midnight UTC of the given calendar day.
func NewDate(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Day returns midnight UTC of the calendar day t falls on in its own location.
func Day(t time.Time) time.Time {
	return NewDate(t.Year(), t.Month(), t.Day())
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.UTC)
}

func Today() time.Time { return Day(time.Now()) }

func StartOfYear(year int) time.Time { return NewDate(year, time.January, 1) }
func EndOfYear(year int) time.Time   { return NewDate(year, time.December, 31) }

// MinDate returns the earlier of a and b.
func MinDate(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}

// MaxDate returns the later of a and b.
func MaxDate(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}
	return a
}

// =============================================================================
// PREDICATES
// =============================================================================

// IsWeekend reports whether date falls on Saturday or Sunday.
func IsWeekend(date time.Time) bool {
	wd := date.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsHoliday reports whether date is the same calendar day as any of holidays.
func IsHoliday(date time.Time, holidays []time.Time) bool {
	day := Day(date)
	return slices.ContainsFunc(holidays, func(h time.Time) bool {
		return Day(h).Equal(day)
	})
}

// IsWorkable reports whether date is neither a weekend nor a holiday.
func IsWorkable(date time.Time, holidays []time.Time) bool {
	return !IsWeekend(date) && !IsHoliday(date, holidays)
}

// =============================================================================
// HOLIDAYS
// =============================================================================

// Holiday is a named non-working day.
type Holiday struct {
	ID   string
	Date time.Time
	Name string
}

// Holidays is a list of holidays as loaded by a repository.
type Holidays []Holiday

// Dates returns the holiday days, in list order.
func (hs Holidays) Dates() []time.Time {
	dates := make([]time.Time, len(hs))
	for i, h := range hs {
		dates[i] = Day(h.Date)
	}
	return dates
}
