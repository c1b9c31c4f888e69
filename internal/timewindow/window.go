// Package timewindow holds the day-granularity date arithmetic every other
// analysis package builds on. All comparisons happen at calendar-day
// resolution; no instant carries meaning finer than a day.
package timewindow

import (
	"math"
	"time"
)

// Day is the canonical unit of schedule arithmetic.
const Day = 24 * time.Hour

// Normalize truncates t to midnight UTC, discarding any time-of-day the
// caller left on it.
func Normalize(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// IsNormalized reports whether t is already a midnight-UTC calendar day.
func IsNormalized(t time.Time) bool {
	return t.Equal(Normalize(t))
}

// SameDay reports whether a and b fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	return Normalize(a).Equal(Normalize(b))
}

// CeilDays converts a duration to whole days, rounding any partial day up.
// Negative durations round toward zero the same way, so -36h yields -1.
func CeilDays(d time.Duration) int {
	return int(math.Ceil(d.Hours() / 24))
}

// DaysBetween returns ceil((to - from) / 1 day) after normalizing both
// sides. Negative when to precedes from.
func DaysBetween(from, to time.Time) int {
	return CeilDays(Normalize(to).Sub(Normalize(from)))
}

// InclusiveDays returns the number of calendar days spanned by [start, end]
// counting both endpoints: a task running Monday through Monday spans one
// day. Zero or negative when end precedes start.
func InclusiveDays(start, end time.Time) int {
	return DaysBetween(start, end) + 1
}

// Contains reports whether day falls within [start, end] inclusive.
func Contains(start, end, day time.Time) bool {
	d := Normalize(day)
	return !d.Before(Normalize(start)) && !d.After(Normalize(end))
}

// Overlaps reports whether the inclusive windows [aStart, aEnd] and
// [bStart, bEnd] share at least one calendar day.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !Normalize(aStart).After(Normalize(bEnd)) && !Normalize(bStart).After(Normalize(aEnd))
}

// IsPast reports whether day lies strictly before now's calendar day.
func IsPast(day, now time.Time) bool {
	return Normalize(day).Before(Normalize(now))
}
