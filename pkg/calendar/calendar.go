// Package calendar normalizes instants to calendar dates in the app timezone.
// A Date is stored as midnight UTC of the local calendar day so that it maps
// cleanly onto postgres DATE columns.
package calendar

import "time"

const Layout = "2006-01-02"

// DateOf returns the calendar day of t as seen in loc.
func DateOf(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// Normalize strips any time-of-day from a stored date value.
func Normalize(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the whole number of days from a to b (b - a).
func DaysBetween(a, b time.Time) int {
	return int(Normalize(b).Sub(Normalize(a)).Hours() / 24)
}

// Same reports whether d (possibly nil) is the same calendar day as day.
func Same(d *time.Time, day time.Time) bool {
	return d != nil && Normalize(*d).Equal(Normalize(day))
}

func Format(d time.Time) string {
	return Normalize(d).Format(Layout)
}
