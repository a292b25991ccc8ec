package models

import "time"

// Overlaps reports whether the half-open date intervals [aStart, aEnd) and
// [bStart, bEnd) share at least one day. Adjacent intervals do not overlap:
// a checkout on the same day as a new check-in is a valid handover.
// Symmetric in its two interval arguments.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Day truncates t to midnight UTC so dates compare as whole days
// regardless of the zone they were parsed in.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(DateLayout, s)
}
