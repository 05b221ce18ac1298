package service

import (
	"sort"
	"time"

	"storynest/internal/models"
	"storynest/internal/timeutil"
)

// Aggregator computes a single day's metrics for one child from raw
// activity events and upserts the resulting DailyReport. Re-running for
// the same day replaces all fields rather than duplicating the row.
type Aggregator struct {
	events  EventStore
	reports ReportStore
	rewards RewardStore
	loc     *time.Location
}

// NewAggregator creates a new aggregator
func NewAggregator(events EventStore, reports ReportStore, rewards RewardStore, loc *time.Location) *Aggregator {
	return &Aggregator{
		events:  events,
		reports: reports,
		rewards: rewards,
		loc:     loc,
	}
}

// ComputeDailyReport aggregates the [midnight, next midnight) window of day
// in the reference timezone and upserts the DailyReport for (child, day).
// now is the evaluation time: sessions still open are measured against it,
// so totals for the current day are live and settle once sessions close.
// A future day yields an empty report. Store failures return
// ErrDataUnavailable with nothing written.
func (a *Aggregator) ComputeDailyReport(childID int64, day time.Time, now time.Time) (*models.DailyReport, error) {
	windowStart, windowEnd := timeutil.DayWindow(day, a.loc)

	report := &models.DailyReport{
		ChildID:           childID,
		ReportDate:        windowStart,
		EmotionalFeedback: map[string]int{},
		Breakdown: models.ActivityBreakdown{
			Stories:  []string{},
			Games:    []string{},
			Sessions: []models.SessionSummary{},
		},
	}

	// Content progress: distinct completed content ids count toward
	// stories_read/games_played; every touched id lands in the breakdown.
	progressEvents, err := a.events.EventsByType(childID, models.EventTypeContentProgress, windowStart, windowEnd)
	if err != nil {
		return nil, dataUnavailable(err)
	}

	completedStories := map[string]bool{}
	completedGames := map[string]bool{}
	touchedStories := map[string]bool{}
	touchedGames := map[string]bool{}

	for _, ev := range progressEvents {
		switch ev.ContentType {
		case models.ContentTypeStory:
			touchedStories[ev.ContentID] = true
			if ev.Completed {
				completedStories[ev.ContentID] = true
			}
		case models.ContentTypeGame:
			touchedGames[ev.ContentID] = true
			if ev.Completed {
				completedGames[ev.ContentID] = true
			}
		}
	}

	report.StoriesRead = len(completedStories)
	report.GamesPlayed = len(completedGames)
	report.Breakdown.Stories = sortedKeys(touchedStories)
	report.Breakdown.Games = sortedKeys(touchedGames)

	// Sessions: explicit end time wins; open sessions run until now.
	sessionEvents, err := a.events.EventsByType(childID, models.EventTypeSession, windowStart, windowEnd)
	if err != nil {
		return nil, dataUnavailable(err)
	}

	for _, ev := range sessionEvents {
		minutes := ev.SessionMinutes(now)
		report.TimeSpent += minutes
		report.Breakdown.Sessions = append(report.Breakdown.Sessions, models.SessionSummary{
			StartedAt: ev.OccurredAt,
			EndedAt:   ev.SessionEnd,
			Minutes:   minutes,
		})
	}

	// Emotional feedback tallies
	feedbackEvents, err := a.events.EventsByType(childID, models.EventTypeEmotionalFeedback, windowStart, windowEnd)
	if err != nil {
		return nil, dataUnavailable(err)
	}

	for _, ev := range feedbackEvents {
		if ev.Emoji != "" {
			report.EmotionalFeedback[ev.Emoji]++
		}
	}

	// Stars are attributed to the day a reward was issued, not the day the
	// triggering content was completed.
	stars, err := a.rewards.PointsInWindow(childID, windowStart, windowEnd)
	if err != nil {
		return nil, dataUnavailable(err)
	}
	report.StarsEarned = stars

	// The only write this component performs: an atomic replace-all-fields
	// upsert keyed on (child_id, report_date).
	if err := a.reports.UpsertDaily(report); err != nil {
		return nil, dataUnavailable(err)
	}

	return report, nil
}

// sortedKeys returns map keys in a stable order so repeated aggregation of
// the same events yields identical breakdown lists.
func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
