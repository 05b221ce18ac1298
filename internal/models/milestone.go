package models

import "time"

// Milestone types
const (
	MilestoneTypeCompletion = "completion"
	MilestoneTypeEngagement = "engagement"
	MilestoneTypeStreak     = "streak"
)

// Milestone tracks one child's progress toward a catalog entry.
// There is at most one row per (child_id, milestone_id). Progress is
// monotonically non-decreasing until completed; completed rows are never
// updated again.
type Milestone struct {
	ID            int64
	ChildID       int64
	MilestoneID   string // catalog entry id, e.g. "read_5_stories"
	MilestoneType string
	TargetValue   int
	Progress      int
	Completed     bool
	EarnedAt      *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
