// Package timeutil provides calendar-window helpers for report aggregation.
// All report math runs in a single configurable reference timezone so that
// daily and weekly windows never drift against each other.
package timeutil

import (
	"math"
	"time"
)

// StartOfDay returns midnight of t's calendar day in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// DayWindow returns the half-open [midnight, next midnight) window
// containing t in loc.
func DayWindow(t time.Time, loc *time.Location) (time.Time, time.Time) {
	start := StartOfDay(t, loc)
	return start, start.AddDate(0, 0, 1)
}

// StartOfWeek returns the Monday midnight of the week containing t in loc.
func StartOfWeek(t time.Time, loc *time.Location) time.Time {
	day := StartOfDay(t, loc)
	weekday := int(day.Weekday())
	if weekday == 0 {
		weekday = 7 // Sunday
	}
	return day.AddDate(0, 0, -(weekday - 1))
}

// StartOfMonth returns the first day of t's month at midnight in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, loc)
}

// EndOfMonth returns the last day of t's month at midnight in loc.
func EndOfMonth(t time.Time, loc *time.Location) time.Time {
	return StartOfMonth(t, loc).AddDate(0, 1, -1)
}

// SameDay reports whether a and b fall on the same calendar day in loc.
func SameDay(a, b time.Time, loc *time.Location) bool {
	a = a.In(loc)
	b = b.In(loc)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// DaysBetween returns the number of whole calendar days from a to b in loc.
// Negative when b is before a. Rounding absorbs the 23- and 25-hour days a
// DST transition produces, so adjacent calendar days always differ by one.
func DaysBetween(a, b time.Time, loc *time.Location) int {
	return int(math.Round(StartOfDay(b, loc).Sub(StartOfDay(a, loc)).Hours() / 24))
}

// IsToday reports whether t is the same calendar day as now in loc.
func IsToday(t, now time.Time, loc *time.Location) bool {
	return SameDay(t, now, loc)
}

// IsYesterday reports whether t is the calendar day before now in loc.
func IsYesterday(t, now time.Time, loc *time.Location) bool {
	return SameDay(t, now.AddDate(0, 0, -1), loc)
}
