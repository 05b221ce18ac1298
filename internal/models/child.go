package models

import "time"

// Child represents a child profile in the system
type Child struct {
	ID          int64
	Name        string
	AvatarColor string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ChildWithStats combines a child with their aggregate statistics
type ChildWithStats struct {
	Child         Child
	TotalStories  int
	TotalGames    int
	TotalMinutes  int
	TotalStars    int
	CurrentStreak int
	LongestStreak int
	MilestonesWon int
}
