package service

import (
	"time"

	"storynest/internal/models"
)

// EventStore reads the append-only activity log.
type EventStore interface {
	// EventsByType returns all events of the given type for a child within
	// the half-open window [from, to), ordered by occurred_at ascending.
	EventsByType(childID int64, eventType string, from, to time.Time) ([]models.ActivityEvent, error)
}

// EventSink appends to the activity log.
type EventSink interface {
	RecordEvent(ev *models.ActivityEvent) error
	CloseSession(eventID string, endedAt time.Time) error
}

// ReportStore owns the daily_reports and weekly_reports rows.
type ReportStore interface {
	// GetDaily returns the stored daily report, or nil when absent.
	GetDaily(childID int64, date time.Time) (*models.DailyReport, error)

	// UpsertDaily atomically inserts or replaces the report for its
	// (child_id, report_date) key.
	UpsertDaily(report *models.DailyReport) error

	// GetWeekly returns the stored weekly report, or nil when absent.
	GetWeekly(childID int64, weekStart time.Time) (*models.WeeklyReport, error)

	// UpsertWeekly atomically inserts or replaces the report for its
	// (child_id, week_start) key.
	UpsertWeekly(report *models.WeeklyReport) error

	// ActiveDates returns, sorted ascending, the report dates with
	// time_spent > 0 for the child, no later than until and no more than
	// lookbackDays old.
	ActiveDates(childID int64, until time.Time, lookbackDays int) ([]time.Time, error)
}

// ProgressStore reads the externally-owned per-content progress rows.
type ProgressStore interface {
	ByChild(childID int64) ([]models.Progress, error)
}

// ProgressWriter mutates per-content progress rows on behalf of the
// activity tracker.
type ProgressWriter interface {
	GetByContent(childID int64, contentType, contentID string) (*models.Progress, error)
	Create(p *models.Progress) error
	Update(p *models.Progress) error
}

// MilestoneStore owns the milestone rows.
type MilestoneStore interface {
	ByChild(childID int64) ([]models.Milestone, error)
	Create(m *models.Milestone) error
	Update(m *models.Milestone) error
}

// RewardStore owns the reward rows.
type RewardStore interface {
	// CreateIfAbsent issues a badge exactly once per (child, badge_id).
	// It reports false when the badge already existed.
	CreateIfAbsent(childID int64, badgeID, title string, points int) (bool, error)

	// PointsInWindow sums the point values of rewards issued within the
	// half-open window [from, to).
	PointsInWindow(childID int64, from, to time.Time) (int, error)
}
