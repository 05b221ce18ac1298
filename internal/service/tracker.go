package service

import (
	"time"

	"github.com/google/uuid"

	"storynest/internal/models"
	"storynest/internal/timeutil"
)

// Tracker is the write side of the activity pipeline: it appends events to
// the log the Aggregator later reads and keeps per-content progress rows
// current as the child reads and plays.
type Tracker struct {
	events   EventSink
	progress ProgressWriter
	loc      *time.Location
}

// NewTracker creates a new activity tracker
func NewTracker(events EventSink, progress ProgressWriter, loc *time.Location) *Tracker {
	return &Tracker{
		events:   events,
		progress: progress,
		loc:      loc,
	}
}

// StartSession opens a session and returns its event id, which the caller
// holds on to until EndSession.
func (t *Tracker) StartSession(childID int64, now time.Time) (string, error) {
	ev := &models.ActivityEvent{
		ID:         uuid.New().String(),
		ChildID:    childID,
		EventType:  models.EventTypeSession,
		EventName:  "session_started",
		OccurredAt: now,
	}
	if err := t.events.RecordEvent(ev); err != nil {
		return "", err
	}
	return ev.ID, nil
}

// EndSession closes an open session. Closing an already-closed session is
// a no-op.
func (t *Tracker) EndSession(eventID string, now time.Time) error {
	return t.events.CloseSession(eventID, now)
}

// RecordContentProgress logs a content interaction and folds it into the
// child's progress row for that content: time and access counts accumulate,
// completion latches on, and the per-content streak advances by the
// consecutive-day rule.
func (t *Tracker) RecordContentProgress(childID int64, contentType, contentID string, completed bool, score, minutes int, now time.Time) error {
	ev := &models.ActivityEvent{
		ID:          uuid.New().String(),
		ChildID:     childID,
		EventType:   models.EventTypeContentProgress,
		EventName:   "content_progress",
		OccurredAt:  now,
		ContentType: contentType,
		ContentID:   contentID,
		Completed:   completed,
		Score:       score,
	}
	if err := t.events.RecordEvent(ev); err != nil {
		return err
	}

	p, err := t.progress.GetByContent(childID, contentType, contentID)
	if err != nil {
		return err
	}

	accessDate := timeutil.StartOfDay(now, t.loc)
	if p == nil {
		p = &models.Progress{
			ChildID:     childID,
			ContentType: contentType,
			ContentID:   contentID,
		}
		t.applyAccess(p, completed, score, minutes, accessDate, now)
		return t.progress.Create(p)
	}

	t.applyAccess(p, completed, score, minutes, accessDate, now)
	return t.progress.Update(p)
}

func (t *Tracker) applyAccess(p *models.Progress, completed bool, score, minutes int, accessDate, now time.Time) {
	p.AccessCount++
	p.TimeSpent += minutes
	p.LastAccessed = now
	if score > p.Score {
		p.Score = score
	}
	if completed {
		p.Completed = true
		p.CompletionCount++
	}

	p.StreakCount = NextContentStreak(p.LastStreakDate, accessDate, p.StreakCount, t.loc)
	p.LastStreakDate = &accessDate
}

// RecordEmotionalFeedback logs one emoji reaction.
func (t *Tracker) RecordEmotionalFeedback(childID int64, emoji string, now time.Time) error {
	return t.events.RecordEvent(&models.ActivityEvent{
		ID:         uuid.New().String(),
		ChildID:    childID,
		EventType:  models.EventTypeEmotionalFeedback,
		EventName:  "emotional_feedback",
		OccurredAt: now,
		Emoji:      emoji,
	})
}
