package service

import (
	"time"

	"storynest/internal/models"
	"storynest/internal/timeutil"
)

// streakLookbackDays bounds the active-date history consulted for streak
// computation. A year is far beyond any plausible streak for this app while
// keeping the range query cheap.
const streakLookbackDays = 366

// WeeklyRollup composes seven daily aggregates into a week summary,
// backfilling missing days through the Aggregator, and computes streak
// statistics over the child's activity history.
type WeeklyRollup struct {
	aggregator *Aggregator
	reports    ReportStore
	loc        *time.Location
}

// NewWeeklyRollup creates a new weekly rollup
func NewWeeklyRollup(aggregator *Aggregator, reports ReportStore, loc *time.Location) *WeeklyRollup {
	return &WeeklyRollup{
		aggregator: aggregator,
		reports:    reports,
		loc:        loc,
	}
}

// ComputeWeeklyReport builds and upserts the weekly report for the week
// containing weekStart (floored to its Monday). It returns (nil, nil) when
// all seven days had zero activity: "no report to generate" is distinct
// from a report that happens to contain zeros. A single failed backfill
// fails the whole rollup; a silently-zeroed day would corrupt the totals
// without any signal to the caller.
func (w *WeeklyRollup) ComputeWeeklyReport(childID int64, weekStart time.Time, now time.Time) (*models.WeeklyReport, error) {
	if weekStart.IsZero() {
		return nil, ErrInvalidRange
	}
	weekStart = timeutil.StartOfWeek(weekStart, w.loc)
	weekEnd := weekStart.AddDate(0, 0, 6)
	today := timeutil.StartOfDay(now, w.loc)

	report := &models.WeeklyReport{
		ChildID:           childID,
		WeekStart:         weekStart,
		WeekEnd:           weekEnd,
		EmotionalFeedback: map[string]int{},
		DailyBreakdown:    make([]models.DaySummary, 0, 7),
	}

	hasActivity := false
	for i := 0; i < 7; i++ {
		day := weekStart.AddDate(0, 0, i)

		if day.After(today) {
			// Future days are zero entries; nothing is persisted for them.
			report.DailyBreakdown = append(report.DailyBreakdown, models.DaySummary{Date: day})
			continue
		}

		daily, err := w.reports.GetDaily(childID, day)
		if err != nil {
			return nil, dataUnavailable(err)
		}
		if daily == nil {
			daily, err = w.aggregator.ComputeDailyReport(childID, day, now)
			if err != nil {
				return nil, err
			}
		}

		if daily.HasActivity() {
			hasActivity = true
		}

		report.StoriesRead += daily.StoriesRead
		report.GamesPlayed += daily.GamesPlayed
		report.TimeSpent += daily.TimeSpent
		report.StarsEarned += daily.StarsEarned
		mergeFeedback(report.EmotionalFeedback, daily.EmotionalFeedback)
		report.DailyBreakdown = append(report.DailyBreakdown, models.DaySummary{
			Date:        day,
			StoriesRead: daily.StoriesRead,
			GamesPlayed: daily.GamesPlayed,
			TimeSpent:   daily.TimeSpent,
			StarsEarned: daily.StarsEarned,
		})
	}

	if !hasActivity {
		return nil, nil
	}

	// Streaks run over the child's whole stored activity history up to the
	// week end, not just these seven days, so a streak that started in a
	// prior week keeps its full length.
	activeDates, err := w.reports.ActiveDates(childID, weekEnd, streakLookbackDays)
	if err != nil {
		return nil, dataUnavailable(err)
	}
	report.CurrentStreak, report.LongestStreak = ComputeStreaks(activeDates, now, w.loc)

	if err := w.reports.UpsertWeekly(report); err != nil {
		return nil, dataUnavailable(err)
	}

	return report, nil
}

// mergeFeedback adds src counts into dst per emoji key.
func mergeFeedback(dst, src map[string]int) {
	for emoji, count := range src {
		dst[emoji] += count
	}
}
