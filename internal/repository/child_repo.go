package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storynest/internal/database"
	"storynest/internal/models"
)

// ChildRepository handles database operations for child profiles
type ChildRepository struct {
	db *database.DB
}

// NewChildRepository creates a new child repository
func NewChildRepository(db *database.DB) *ChildRepository {
	return &ChildRepository{db: db}
}

// CreateChild creates a new child profile
func (r *ChildRepository) CreateChild(name, avatarColor string) (*models.Child, error) {
	query := "INSERT INTO children (name, avatar_color) VALUES (?, ?)"
	childID, err := r.db.ExecReturningID(query, name, avatarColor)
	if err != nil {
		return nil, fmt.Errorf("failed to create child: %w", err)
	}

	return &models.Child{
		ID:          childID,
		Name:        name,
		AvatarColor: avatarColor,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}, nil
}

// GetChildByID retrieves a child by ID
func (r *ChildRepository) GetChildByID(childID int64) (*models.Child, error) {
	query := "SELECT id, name, avatar_color, created_at, updated_at FROM children WHERE id = ?"
	child := &models.Child{}
	err := r.db.QueryRow(query, childID).Scan(
		&child.ID,
		&child.Name,
		&child.AvatarColor,
		&child.CreatedAt,
		&child.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get child: %w", err)
	}

	return child, nil
}

// GetAllChildren retrieves all child profiles
func (r *ChildRepository) GetAllChildren() ([]models.Child, error) {
	query := `
		SELECT id, name, avatar_color, created_at, updated_at
		FROM children
		ORDER BY name ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query children: %w", err)
	}
	defer rows.Close()

	var children []models.Child
	for rows.Next() {
		var child models.Child
		if err := rows.Scan(
			&child.ID,
			&child.Name,
			&child.AvatarColor,
			&child.CreatedAt,
			&child.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan child: %w", err)
		}
		children = append(children, child)
	}

	return children, rows.Err()
}

// GetChildrenWithStats retrieves all child profiles together with their
// all-time report totals and earned-milestone count. Streak fields are left
// zero; callers that need them compute streaks from the active-date history.
func (r *ChildRepository) GetChildrenWithStats() ([]models.ChildWithStats, error) {
	query := `
		SELECT c.id, c.name, c.avatar_color, c.created_at, c.updated_at,
		       COALESCE(SUM(d.stories_read), 0),
		       COALESCE(SUM(d.games_played), 0),
		       COALESCE(SUM(d.time_spent), 0),
		       COALESCE(SUM(d.stars_earned), 0),
		       (SELECT COUNT(*) FROM milestones m WHERE m.child_id = c.id AND m.completed = TRUE)
		FROM children c
		LEFT JOIN daily_reports d ON d.child_id = c.id
		GROUP BY c.id, c.name, c.avatar_color, c.created_at, c.updated_at
		ORDER BY c.name ASC
	`
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query children with stats: %w", err)
	}
	defer rows.Close()

	var children []models.ChildWithStats
	for rows.Next() {
		var cs models.ChildWithStats
		if err := rows.Scan(
			&cs.Child.ID,
			&cs.Child.Name,
			&cs.Child.AvatarColor,
			&cs.Child.CreatedAt,
			&cs.Child.UpdatedAt,
			&cs.TotalStories,
			&cs.TotalGames,
			&cs.TotalMinutes,
			&cs.TotalStars,
			&cs.MilestonesWon,
		); err != nil {
			return nil, fmt.Errorf("failed to scan child stats: %w", err)
		}
		children = append(children, cs)
	}

	return children, rows.Err()
}

// ActiveChildIDs returns the ids of children with at least one activity
// event since the given time. The nightly aggregation uses this to skip
// children with nothing to aggregate.
func (r *ChildRepository) ActiveChildIDs(since time.Time) ([]int64, error) {
	query := `
		SELECT DISTINCT child_id
		FROM activity_events
		WHERE occurred_at >= ?
		ORDER BY child_id ASC
	`
	rows, err := r.db.Query(query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query active children: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan child id: %w", err)
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

// DeleteChild deletes a child profile and, through foreign keys, all of the
// child's analytics rows
func (r *ChildRepository) DeleteChild(childID int64) error {
	query := "DELETE FROM children WHERE id = ?"
	_, err := r.db.Exec(query, childID)
	if err != nil {
		return fmt.Errorf("failed to delete child: %w", err)
	}
	return nil
}
