package service

import (
	"fmt"
	"sort"
	"time"

	"storynest/internal/models"
)

// In-memory store fakes shared by the service tests.

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func at(year int, month time.Month, d, hour, min int) time.Time {
	return time.Date(year, month, d, hour, min, 0, 0, time.UTC)
}

type fakeEventStore struct {
	events []models.ActivityEvent
	err    error
}

func (f *fakeEventStore) EventsByType(childID int64, eventType string, from, to time.Time) ([]models.ActivityEvent, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []models.ActivityEvent
	for _, ev := range f.events {
		if ev.ChildID == childID && ev.EventType == eventType &&
			!ev.OccurredAt.Before(from) && ev.OccurredAt.Before(to) {
			result = append(result, ev)
		}
	}
	return result, nil
}

func (f *fakeEventStore) RecordEvent(ev *models.ActivityEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, *ev)
	return nil
}

func (f *fakeEventStore) CloseSession(eventID string, endedAt time.Time) error {
	for i := range f.events {
		if f.events[i].ID == eventID && f.events[i].SessionEnd == nil {
			end := endedAt
			f.events[i].SessionEnd = &end
		}
	}
	return nil
}

type fakeReportStore struct {
	daily  map[string]*models.DailyReport
	weekly map[string]*models.WeeklyReport
	err    error
}

func newFakeReportStore() *fakeReportStore {
	return &fakeReportStore{
		daily:  map[string]*models.DailyReport{},
		weekly: map[string]*models.WeeklyReport{},
	}
}

func dailyKey(childID int64, date time.Time) string {
	return fmt.Sprintf("%d|%s", childID, date.Format("2006-01-02"))
}

func (f *fakeReportStore) GetDaily(childID int64, date time.Time) (*models.DailyReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	report, ok := f.daily[dailyKey(childID, date)]
	if !ok {
		return nil, nil
	}
	copied := *report
	return &copied, nil
}

func (f *fakeReportStore) UpsertDaily(report *models.DailyReport) error {
	if f.err != nil {
		return f.err
	}
	copied := *report
	f.daily[dailyKey(report.ChildID, report.ReportDate)] = &copied
	return nil
}

func (f *fakeReportStore) GetWeekly(childID int64, weekStart time.Time) (*models.WeeklyReport, error) {
	if f.err != nil {
		return nil, f.err
	}
	report, ok := f.weekly[dailyKey(childID, weekStart)]
	if !ok {
		return nil, nil
	}
	copied := *report
	return &copied, nil
}

func (f *fakeReportStore) UpsertWeekly(report *models.WeeklyReport) error {
	if f.err != nil {
		return f.err
	}
	copied := *report
	f.weekly[dailyKey(report.ChildID, report.WeekStart)] = &copied
	return nil
}

func (f *fakeReportStore) ActiveDates(childID int64, until time.Time, lookbackDays int) ([]time.Time, error) {
	if f.err != nil {
		return nil, f.err
	}
	earliest := until.AddDate(0, 0, -lookbackDays)
	var dates []time.Time
	for _, report := range f.daily {
		if report.ChildID != childID || report.TimeSpent <= 0 {
			continue
		}
		if report.ReportDate.Before(earliest) || report.ReportDate.After(until) {
			continue
		}
		dates = append(dates, report.ReportDate)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates, nil
}

type fakeProgressStore struct {
	rows []models.Progress
	err  error
}

func (f *fakeProgressStore) ByChild(childID int64) ([]models.Progress, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []models.Progress
	for _, p := range f.rows {
		if p.ChildID == childID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (f *fakeProgressStore) GetByContent(childID int64, contentType, contentID string) (*models.Progress, error) {
	for _, p := range f.rows {
		if p.ChildID == childID && p.ContentType == contentType && p.ContentID == contentID {
			copied := p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeProgressStore) Create(p *models.Progress) error {
	p.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *p)
	return nil
}

func (f *fakeProgressStore) Update(p *models.Progress) error {
	for i := range f.rows {
		if f.rows[i].ID == p.ID {
			f.rows[i] = *p
			return nil
		}
	}
	return fmt.Errorf("progress %d not found", p.ID)
}

type fakeMilestoneStore struct {
	rows []models.Milestone
	err  error
}

func (f *fakeMilestoneStore) ByChild(childID int64) ([]models.Milestone, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []models.Milestone
	for _, m := range f.rows {
		if m.ChildID == childID {
			result = append(result, m)
		}
	}
	return result, nil
}

func (f *fakeMilestoneStore) Create(m *models.Milestone) error {
	m.ID = int64(len(f.rows) + 1)
	f.rows = append(f.rows, *m)
	return nil
}

func (f *fakeMilestoneStore) Update(m *models.Milestone) error {
	for i := range f.rows {
		if f.rows[i].ID == m.ID {
			f.rows[i] = *m
			return nil
		}
	}
	return fmt.Errorf("milestone %d not found", m.ID)
}

func (f *fakeMilestoneStore) get(childID int64, milestoneID string) *models.Milestone {
	for i := range f.rows {
		if f.rows[i].ChildID == childID && f.rows[i].MilestoneID == milestoneID {
			return &f.rows[i]
		}
	}
	return nil
}

type fakeRewardStore struct {
	rewards []models.Reward
	now     time.Time // stamped as CreatedAt on new rewards
	err     error
}

func (f *fakeRewardStore) CreateIfAbsent(childID int64, badgeID, title string, points int) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.rewards {
		if r.ChildID == childID && r.BadgeID == badgeID {
			return false, nil
		}
	}
	f.rewards = append(f.rewards, models.Reward{
		ID:        int64(len(f.rewards) + 1),
		ChildID:   childID,
		BadgeID:   badgeID,
		Title:     title,
		Points:    points,
		CreatedAt: f.now,
	})
	return true, nil
}

func (f *fakeRewardStore) PointsInWindow(childID int64, from, to time.Time) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	total := 0
	for _, r := range f.rewards {
		if r.ChildID == childID && !r.CreatedAt.Before(from) && r.CreatedAt.Before(to) {
			total += r.Points
		}
	}
	return total, nil
}

func (f *fakeRewardStore) has(childID int64, badgeID string) bool {
	for _, r := range f.rewards {
		if r.ChildID == childID && r.BadgeID == badgeID {
			return true
		}
	}
	return false
}

type fakeReportCache struct {
	entries map[string]*Report
	gets    int
	sets    int
}

func newFakeReportCache() *fakeReportCache {
	return &fakeReportCache{entries: map[string]*Report{}}
}

func (f *fakeReportCache) Get(key string) (*Report, error) {
	f.gets++
	return f.entries[key], nil
}

func (f *fakeReportCache) Set(key string, report *Report) error {
	f.sets++
	f.entries[key] = report
	return nil
}
