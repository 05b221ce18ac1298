package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storynest/internal/database"
	"storynest/internal/models"
)

// ProgressRepository handles the per-content progress rows
type ProgressRepository struct {
	db  *database.DB
	loc *time.Location
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB, loc *time.Location) *ProgressRepository {
	return &ProgressRepository{db: db, loc: loc}
}

const progressColumns = `
	id, child_id, content_type, content_id, completed, completion_count,
	time_spent, last_accessed, is_favorite, pages_read, score,
	engagement_rating, streak_count, last_streak_date, access_count
`

// ByChild retrieves all progress rows for a child
func (r *ProgressRepository) ByChild(childID int64) ([]models.Progress, error) {
	query := "SELECT" + progressColumns + `
		FROM progress
		WHERE child_id = ?
		ORDER BY last_accessed DESC
	`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var result []models.Progress
	for rows.Next() {
		p, err := r.scanProgress(rows.Scan)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}

	return result, rows.Err()
}

// GetByContent retrieves the progress row for one (child, content) pair,
// or nil when the child has never touched that content.
func (r *ProgressRepository) GetByContent(childID int64, contentType, contentID string) (*models.Progress, error) {
	query := "SELECT" + progressColumns + `
		FROM progress
		WHERE child_id = ? AND content_type = ? AND content_id = ?
	`
	p, err := r.scanProgress(r.db.QueryRow(query, childID, contentType, contentID).Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

// Create inserts a new progress row
func (r *ProgressRepository) Create(p *models.Progress) error {
	query := `
		INSERT INTO progress
			(child_id, content_type, content_id, completed, completion_count,
			 time_spent, last_accessed, is_favorite, pages_read, score,
			 engagement_rating, streak_count, last_streak_date, access_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		p.ChildID,
		p.ContentType,
		p.ContentID,
		p.Completed,
		p.CompletionCount,
		p.TimeSpent,
		p.LastAccessed,
		p.IsFavorite,
		p.PagesRead,
		p.Score,
		p.EngagementRating,
		p.StreakCount,
		nullableDate(p.LastStreakDate),
		p.AccessCount,
	)
	if err != nil {
		return fmt.Errorf("failed to create progress: %w", err)
	}
	p.ID = id
	return nil
}

// Update replaces the mutable fields of an existing progress row
func (r *ProgressRepository) Update(p *models.Progress) error {
	query := `
		UPDATE progress
		SET completed = ?, completion_count = ?, time_spent = ?, last_accessed = ?,
		    is_favorite = ?, pages_read = ?, score = ?, engagement_rating = ?,
		    streak_count = ?, last_streak_date = ?, access_count = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		p.Completed,
		p.CompletionCount,
		p.TimeSpent,
		p.LastAccessed,
		p.IsFavorite,
		p.PagesRead,
		p.Score,
		p.EngagementRating,
		p.StreakCount,
		nullableDate(p.LastStreakDate),
		p.AccessCount,
		p.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update progress: %w", err)
	}
	return nil
}

func (r *ProgressRepository) scanProgress(scan func(...interface{}) error) (*models.Progress, error) {
	p := &models.Progress{}
	var lastStreakDate sql.NullString

	err := scan(
		&p.ID,
		&p.ChildID,
		&p.ContentType,
		&p.ContentID,
		&p.Completed,
		&p.CompletionCount,
		&p.TimeSpent,
		&p.LastAccessed,
		&p.IsFavorite,
		&p.PagesRead,
		&p.Score,
		&p.EngagementRating,
		&p.StreakCount,
		&lastStreakDate,
		&p.AccessCount,
	)
	if err == sql.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan progress: %w", err)
	}

	if lastStreakDate.Valid {
		date, err := time.ParseInLocation(dateLayout, lastStreakDate.String, r.loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse streak date: %w", err)
		}
		p.LastStreakDate = &date
	}

	return p, nil
}

func nullableDate(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.Format(dateLayout)
}
