package models

import "time"

// Progress is the live per-content state for one (child, content) pair.
// It is owned and mutated by the content-tracking collaborator; the
// analytics core reads it as a stable snapshot during one evaluation.
type Progress struct {
	ID               int64
	ChildID          int64
	ContentType      string // "story" or "game"
	ContentID        string
	Completed        bool
	CompletionCount  int
	TimeSpent        int // minutes
	LastAccessed     time.Time
	IsFavorite       bool
	PagesRead        int
	Score            int
	EngagementRating int
	StreakCount      int
	LastStreakDate   *time.Time
	AccessCount      int
}
