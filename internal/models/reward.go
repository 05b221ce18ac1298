package models

import "time"

// Reward is a badge issued to a child exactly once. BadgeID is unique per
// child and derived deterministically from its source (for milestones:
// "milestone_" + milestone id), so retries cannot double-award.
type Reward struct {
	ID        int64
	ChildID   int64
	BadgeID   string
	Title     string
	Points    int
	CreatedAt time.Time
}
