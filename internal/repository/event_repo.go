package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storynest/internal/database"
	"storynest/internal/models"
)

// EventRepository handles the append-only activity event log
type EventRepository struct {
	db *database.DB
}

// NewEventRepository creates a new event repository
func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

// RecordEvent appends one event to the log. A missing ID is assigned here;
// callers that retry should pass their own ID so the unique key absorbs the
// duplicate.
func (r *EventRepository) RecordEvent(ev *models.ActivityEvent) error {
	if ev.ID == "" {
		ev.ID = uuid.New().String()
	}

	query := `
		INSERT INTO activity_events
			(id, child_id, event_type, event_name, occurred_at,
			 content_type, content_id, completed, score, emoji, session_end)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.Exec(query,
		ev.ID,
		ev.ChildID,
		ev.EventType,
		ev.EventName,
		ev.OccurredAt,
		ev.ContentType,
		ev.ContentID,
		ev.Completed,
		ev.Score,
		ev.Emoji,
		nullableTime(ev.SessionEnd),
	)
	if err != nil {
		return fmt.Errorf("failed to record event: %w", err)
	}
	return nil
}

// CloseSession sets the end time on an open session event.
func (r *EventRepository) CloseSession(eventID string, endedAt time.Time) error {
	query := `
		UPDATE activity_events
		SET session_end = ?
		WHERE id = ? AND event_type = ? AND session_end IS NULL
	`
	_, err := r.db.Exec(query, endedAt, eventID, models.EventTypeSession)
	if err != nil {
		return fmt.Errorf("failed to close session: %w", err)
	}
	return nil
}

// EventsByType retrieves all events of one type for a child within the
// half-open window [from, to), ordered by occurrence time.
func (r *EventRepository) EventsByType(childID int64, eventType string, from, to time.Time) ([]models.ActivityEvent, error) {
	query := `
		SELECT id, child_id, event_type, event_name, occurred_at,
		       content_type, content_id, completed, score, emoji, session_end
		FROM activity_events
		WHERE child_id = ? AND event_type = ? AND occurred_at >= ? AND occurred_at < ?
		ORDER BY occurred_at ASC
	`
	rows, err := r.db.Query(query, childID, eventType, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []models.ActivityEvent
	for rows.Next() {
		var ev models.ActivityEvent
		var sessionEnd sql.NullTime
		if err := rows.Scan(
			&ev.ID,
			&ev.ChildID,
			&ev.EventType,
			&ev.EventName,
			&ev.OccurredAt,
			&ev.ContentType,
			&ev.ContentID,
			&ev.Completed,
			&ev.Score,
			&ev.Emoji,
			&sessionEnd,
		); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if sessionEnd.Valid {
			ev.SessionEnd = &sessionEnd.Time
		}
		events = append(events, ev)
	}

	return events, rows.Err()
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return *t
}
