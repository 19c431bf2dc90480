// Package dates holds the calendar arithmetic shared by the booking and
// bedspace domains. All functions are pure and operate on calendar days,
// not elapsed time, so results are stable across daylight-saving changes.
package dates

import (
	"fmt"
	"time"
)

const isoLayout = "2006-01-02"

// ParseISO parses an ISO 8601 calendar date (YYYY-MM-DD).
func ParseISO(value string) (time.Time, error) {
	t, err := time.Parse(isoLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid ISO date %q: %w", value, err)
	}
	return t, nil
}

// FormatISO formats a date as YYYY-MM-DD.
func FormatISO(t time.Time) string {
	return t.Format(isoLayout)
}

// FormatUI formats a date for display, e.g. "8 January 2026".
func FormatUI(t time.Time) string {
	return t.Format("2 January 2006")
}

// Truncate drops the time-of-day component, keeping the calendar date in UTC.
func Truncate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// NightsBetween returns the number of nights between two dates as a
// calendar-day difference. A stay arriving and departing on the same day is
// zero nights.
func NightsBetween(from, to time.Time) int {
	f := Truncate(from)
	t := Truncate(to)
	return int(t.Sub(f).Hours() / 24)
}

// SameDay reports whether two timestamps fall on the same calendar date.
func SameDay(a, b time.Time) bool {
	return Truncate(a).Equal(Truncate(b))
}

// Before reports whether date a falls on an earlier calendar day than b.
func Before(a, b time.Time) bool {
	return Truncate(a).Before(Truncate(b))
}

// After reports whether date a falls on a later calendar day than b.
func After(a, b time.Time) bool {
	return Truncate(a).After(Truncate(b))
}

// AddWorkingDays advances a date by n working days, skipping Saturdays and
// Sundays. Zero working days returns the date unchanged.
func AddWorkingDays(t time.Time, n int) time.Time {
	d := Truncate(t)
	for added := 0; added < n; {
		d = d.AddDate(0, 0, 1)
		if wd := d.Weekday(); wd != time.Saturday && wd != time.Sunday {
			added++
		}
	}
	return d
}

// Parts is a date split into its day, month and year components, as captured
// by separate form fields.
type Parts struct {
	Day   int
	Month int
	Year  int
}

// SplitParts decomposes a date into day/month/year parts.
func SplitParts(t time.Time) Parts {
	y, m, d := t.Date()
	return Parts{Day: d, Month: int(m), Year: y}
}

// DateFromParts reassembles a date from day/month/year parts, rejecting
// combinations that do not name a real calendar day (e.g. 31 February).
func DateFromParts(p Parts) (time.Time, error) {
	t := time.Date(p.Year, time.Month(p.Month), p.Day, 0, 0, 0, 0, time.UTC)
	rebuilt := SplitParts(t)
	if rebuilt != p {
		return time.Time{}, fmt.Errorf("invalid date parts: %02d-%02d-%04d", p.Day, p.Month, p.Year)
	}
	return t, nil
}
