// Package care holds the scheduling engine: due-date arithmetic, urgency
// classification, calendar projection and task aggregation. Nothing in this
// package performs I/O; "now" is always passed in by the caller.
package care

import (
	"fmt"
	"time"
)

const day = 24 * time.Hour

// ComputeNextDue returns when the next care action is due. A plant that was
// never cared for is due immediately.
func ComputeNextDue(lastEventAt *time.Time, frequencyDays int, now time.Time) time.Time {
	if lastEventAt == nil {
		return now
	}
	return lastEventAt.AddDate(0, 0, frequencyDays)
}

// DaysUntilDue returns the signed number of whole calendar days between now
// and dueAt, rounded down. Negative values mean overdue.
func DaysUntilDue(dueAt, now time.Time) int {
	return calendarDays(now, dueAt)
}

// DaysSince returns the number of whole calendar days elapsed since t, rounded down
func DaysSince(t, now time.Time) int {
	return calendarDays(t, now)
}

// calendarDays returns the largest n for which from plus n calendar days is
// not after to. Days are added with AddDate in from's location, the same way
// ComputeNextDue adds them, so a day across a DST change still counts as one.
func calendarDays(from, to time.Time) int {
	n := floorDays(to.Sub(from))
	for from.AddDate(0, 0, n).After(to) {
		n--
	}
	for !from.AddDate(0, 0, n+1).After(to) {
		n++
	}
	return n
}

func floorDays(d time.Duration) int {
	days := int(d / day)
	if d < 0 && d%day != 0 {
		days--
	}
	return days
}

// Date is a calendar date without time of day
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the calendar date of t in t's own location
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses a YYYY-MM-DD string
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// In returns midnight of d in loc
func (d Date) In(loc *time.Location) time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// AddDays returns the date n calendar days after d
func (d Date) AddDays(n int) Date {
	return DateOf(d.In(time.UTC).AddDate(0, 0, n))
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o
func (d Date) Compare(o Date) int {
	return d.In(time.UTC).Compare(o.In(time.UTC))
}

// Before reports whether d is strictly before o
func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }

// After reports whether d is strictly after o
func (d Date) After(o Date) bool { return d.Compare(o) > 0 }

// DaysUntil returns the number of calendar days from d to o
func (d Date) DaysUntil(o Date) int {
	return int(o.In(time.UTC).Sub(d.In(time.UTC)) / day)
}

func (d Date) String() string {
	return d.In(time.UTC).Format(time.DateOnly)
}
