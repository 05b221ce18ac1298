package service

import (
	"time"

	"storynest/internal/timeutil"
)

// ComputeStreaks walks a sorted-ascending list of active dates and returns
// the current and longest consecutive-day streaks. The current streak is
// only "live" when the most recent active date is today or yesterday
// relative to now; a streak that ended two or more days ago still counts
// toward the longest but reports a current streak of zero.
func ComputeStreaks(dates []time.Time, now time.Time, loc *time.Location) (current, longest int) {
	if len(dates) == 0 {
		return 0, 0
	}

	run := 1
	longest = 1
	for i := 1; i < len(dates); i++ {
		if timeutil.DaysBetween(dates[i-1], dates[i], loc) == 1 {
			run++
		} else if timeutil.SameDay(dates[i-1], dates[i], loc) {
			// Duplicate day, streak unchanged
			continue
		} else {
			run = 1
		}
		if run > longest {
			longest = run
		}
	}

	last := dates[len(dates)-1]
	if timeutil.IsToday(last, now, loc) || timeutil.IsYesterday(last, now, loc) {
		current = run
	}

	return current, longest
}

// NextContentStreak advances a single content's streak counter for an
// access on accessDate. The same consecutive-day rule as ComputeStreaks
// applies; only the date source differs (one content's access dates rather
// than any-activity dates). lastStreakDate nil means first ever access.
func NextContentStreak(lastStreakDate *time.Time, accessDate time.Time, current int, loc *time.Location) int {
	if lastStreakDate == nil || current <= 0 {
		return 1
	}

	switch timeutil.DaysBetween(*lastStreakDate, accessDate, loc) {
	case 0:
		// Same day, streak unchanged
		return current
	case 1:
		return current + 1
	default:
		return 1
	}
}
