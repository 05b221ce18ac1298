package models

import "time"

// SessionSummary is one session entry inside a daily activity breakdown
type SessionSummary struct {
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Minutes   int        `json:"minutes"`
}

// ActivityBreakdown lists the content touched during one day
type ActivityBreakdown struct {
	Stories  []string         `json:"stories"`
	Games    []string         `json:"games"`
	Sessions []SessionSummary `json:"sessions"`
}

// DailyReport holds one child's aggregated metrics for a single calendar
// day. There is at most one row per (child_id, report_date); recomputation
// replaces all fields atomically.
type DailyReport struct {
	ID                int64
	ChildID           int64
	ReportDate        time.Time // midnight in the reference timezone
	StoriesRead       int
	GamesPlayed       int
	TimeSpent         int // minutes
	StarsEarned       int
	EmotionalFeedback map[string]int // emoji -> count
	Breakdown         ActivityBreakdown
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// HasActivity reports whether the day recorded any session time.
func (r *DailyReport) HasActivity() bool {
	return r.TimeSpent > 0
}

// DaySummary is one day's entry in a weekly report breakdown, zero-filled
// for days without a stored daily report.
type DaySummary struct {
	Date        time.Time `json:"date"`
	StoriesRead int       `json:"stories_read"`
	GamesPlayed int       `json:"games_played"`
	TimeSpent   int       `json:"time_spent"`
	StarsEarned int       `json:"stars_earned"`
}

// WeeklyReport holds one child's metrics for a Monday-anchored week.
// There is at most one row per (child_id, week_start).
type WeeklyReport struct {
	ID                int64
	ChildID           int64
	WeekStart         time.Time // always a Monday
	WeekEnd           time.Time // week_start + 6 days
	StoriesRead       int
	GamesPlayed       int
	TimeSpent         int
	StarsEarned       int
	EmotionalFeedback map[string]int
	DailyBreakdown    []DaySummary // ordered Monday..Sunday, length 7
	CurrentStreak     int
	LongestStreak     int
	CreatedAt         time.Time
	UpdatedAt         time.Time
}
