package models

import "time"

// Event types recorded by the activity log
const (
	EventTypeSession           = "session"
	EventTypeContentProgress   = "content_progress"
	EventTypeEmotionalFeedback = "emotional_feedback"
)

// Content types distinguished inside content_progress events
const (
	ContentTypeStory = "story"
	ContentTypeGame  = "game"
)

// ActivityEvent is one immutable entry in the append-only activity log.
// Events are written by the tracking collaborator and only read here.
type ActivityEvent struct {
	ID         string // uuid
	ChildID    int64
	EventType  string
	EventName  string
	OccurredAt time.Time

	// Payload fields; which ones are set depends on EventType.
	ContentType string     // content_progress: "story" or "game"
	ContentID   string     // content_progress
	Completed   bool       // content_progress
	Score       int        // content_progress
	Emoji       string     // emotional_feedback
	SessionEnd  *time.Time // session: nil while the session is still open
}

// SessionMinutes returns the session duration in whole minutes. Sessions
// still open at evaluation time are measured against now, so totals for the
// current day are live and change on re-aggregation until the session closes.
func (e *ActivityEvent) SessionMinutes(now time.Time) int {
	end := now
	if e.SessionEnd != nil {
		end = *e.SessionEnd
	}
	if end.Before(e.OccurredAt) {
		return 0
	}
	return int(end.Sub(e.OccurredAt).Minutes())
}
