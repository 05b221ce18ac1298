package scheduler

import (
	"fmt"
	"sort"
	"testing"
	"time"

	"storynest/internal/models"
	"storynest/internal/service"
)

type stubChildren struct {
	ids []int64
}

func (s *stubChildren) ActiveChildIDs(since time.Time) ([]int64, error) {
	return s.ids, nil
}

type stubEvents struct {
	events []models.ActivityEvent
}

func (s *stubEvents) EventsByType(childID int64, eventType string, from, to time.Time) ([]models.ActivityEvent, error) {
	var result []models.ActivityEvent
	for _, ev := range s.events {
		if ev.ChildID == childID && ev.EventType == eventType &&
			!ev.OccurredAt.Before(from) && ev.OccurredAt.Before(to) {
			result = append(result, ev)
		}
	}
	return result, nil
}

type stubReports struct {
	daily  map[string]*models.DailyReport
	weekly map[string]*models.WeeklyReport
}

func key(childID int64, date time.Time) string {
	return fmt.Sprintf("%d|%s", childID, date.Format("2006-01-02"))
}

func (s *stubReports) GetDaily(childID int64, date time.Time) (*models.DailyReport, error) {
	return s.daily[key(childID, date)], nil
}

func (s *stubReports) UpsertDaily(report *models.DailyReport) error {
	s.daily[key(report.ChildID, report.ReportDate)] = report
	return nil
}

func (s *stubReports) GetWeekly(childID int64, weekStart time.Time) (*models.WeeklyReport, error) {
	return s.weekly[key(childID, weekStart)], nil
}

func (s *stubReports) UpsertWeekly(report *models.WeeklyReport) error {
	s.weekly[key(report.ChildID, report.WeekStart)] = report
	return nil
}

func (s *stubReports) ActiveDates(childID int64, until time.Time, lookbackDays int) ([]time.Time, error) {
	var dates []time.Time
	for _, report := range s.daily {
		if report.ChildID == childID && report.TimeSpent > 0 && !report.ReportDate.After(until) {
			dates = append(dates, report.ReportDate)
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

type stubProgress struct {
	rows []models.Progress
}

func (s *stubProgress) ByChild(childID int64) ([]models.Progress, error) {
	return s.rows, nil
}

type stubMilestones struct {
	rows []models.Milestone
}

func (s *stubMilestones) ByChild(childID int64) ([]models.Milestone, error) {
	return s.rows, nil
}

func (s *stubMilestones) Create(m *models.Milestone) error {
	m.ID = int64(len(s.rows) + 1)
	s.rows = append(s.rows, *m)
	return nil
}

func (s *stubMilestones) Update(m *models.Milestone) error {
	for i := range s.rows {
		if s.rows[i].ID == m.ID {
			s.rows[i] = *m
		}
	}
	return nil
}

type stubRewards struct {
	rewards []models.Reward
}

func (s *stubRewards) CreateIfAbsent(childID int64, badgeID, title string, points int) (bool, error) {
	for _, r := range s.rewards {
		if r.ChildID == childID && r.BadgeID == badgeID {
			return false, nil
		}
	}
	s.rewards = append(s.rewards, models.Reward{ChildID: childID, BadgeID: badgeID, Title: title, Points: points})
	return true, nil
}

func (s *stubRewards) PointsInWindow(childID int64, from, to time.Time) (int, error) {
	return 0, nil
}

func TestRunOnceAggregatesYesterday(t *testing.T) {
	yesterday := time.Date(2026, time.March, 3, 0, 0, 0, 0, time.UTC)
	sessionEnd := yesterday.Add(9*time.Hour + 40*time.Minute)

	events := &stubEvents{
		events: []models.ActivityEvent{
			{
				ChildID:    1,
				EventType:  models.EventTypeSession,
				OccurredAt: yesterday.Add(9 * time.Hour),
				SessionEnd: &sessionEnd,
			},
			{
				ChildID:     1,
				EventType:   models.EventTypeContentProgress,
				OccurredAt:  yesterday.Add(9 * time.Hour),
				ContentType: models.ContentTypeStory,
				ContentID:   "story-dragon",
				Completed:   true,
			},
		},
	}
	reports := &stubReports{daily: map[string]*models.DailyReport{}, weekly: map[string]*models.WeeklyReport{}}
	rewards := &stubRewards{}
	milestones := &stubMilestones{}
	progress := &stubProgress{
		rows: []models.Progress{
			{ChildID: 1, ContentType: models.ContentTypeStory, ContentID: "story-dragon", Completed: true, TimeSpent: 40},
		},
	}

	loc := time.UTC
	aggregator := service.NewAggregator(events, reports, rewards, loc)
	rollup := service.NewWeeklyRollup(aggregator, reports, loc)
	engine := service.NewMilestoneEngine(progress, reports, milestones, rewards, loc)
	sched := New(&stubChildren{ids: []int64{1}}, aggregator, rollup, engine, loc, "00:30")

	sched.RunOnce(time.Date(2026, time.March, 4, 0, 30, 0, 0, time.UTC))

	daily := reports.daily[key(1, yesterday)]
	if daily == nil {
		t.Fatal("daily report for yesterday was not stored")
	}
	if daily.StoriesRead != 1 || daily.TimeSpent != 40 {
		t.Errorf("daily totals = %d stories / %d minutes, want 1/40", daily.StoriesRead, daily.TimeSpent)
	}

	// Yesterday (Tuesday) belongs to the week of Monday 2026-03-02.
	weekly := reports.weekly[key(1, time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC))]
	if weekly == nil {
		t.Fatal("weekly report was not stored")
	}
	if weekly.TimeSpent != 40 {
		t.Errorf("weekly minutes = %d, want 40", weekly.TimeSpent)
	}

	// One completed story earns first_story during the same pass.
	found := false
	for _, r := range rewards.rewards {
		if r.BadgeID == "milestone_first_story" {
			found = true
		}
	}
	if !found {
		t.Error("milestone evaluation did not run during the nightly pass")
	}
}
