package repository

import (
	"database/sql"
	"fmt"
	"time"

	"storynest/internal/database"
	"storynest/internal/models"
)

// MilestoneRepository handles milestone rows
type MilestoneRepository struct {
	db *database.DB
}

// NewMilestoneRepository creates a new milestone repository
func NewMilestoneRepository(db *database.DB) *MilestoneRepository {
	return &MilestoneRepository{db: db}
}

// ByChild retrieves all milestone rows for a child
func (r *MilestoneRepository) ByChild(childID int64) ([]models.Milestone, error) {
	query := `
		SELECT id, child_id, milestone_id, milestone_type, target_value,
		       progress, completed, earned_at, created_at, updated_at
		FROM milestones
		WHERE child_id = ?
		ORDER BY created_at ASC
	`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query milestones: %w", err)
	}
	defer rows.Close()

	var milestones []models.Milestone
	for rows.Next() {
		var m models.Milestone
		var earnedAt sql.NullTime
		if err := rows.Scan(
			&m.ID,
			&m.ChildID,
			&m.MilestoneID,
			&m.MilestoneType,
			&m.TargetValue,
			&m.Progress,
			&m.Completed,
			&earnedAt,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan milestone: %w", err)
		}
		if earnedAt.Valid {
			m.EarnedAt = &earnedAt.Time
		}
		milestones = append(milestones, m)
	}

	return milestones, rows.Err()
}

// Create inserts a new milestone row
func (r *MilestoneRepository) Create(m *models.Milestone) error {
	query := `
		INSERT INTO milestones
			(child_id, milestone_id, milestone_type, target_value, progress,
			 completed, earned_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	id, err := r.db.ExecReturningID(query,
		m.ChildID,
		m.MilestoneID,
		m.MilestoneType,
		m.TargetValue,
		m.Progress,
		m.Completed,
		nullableTime(m.EarnedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create milestone: %w", err)
	}
	m.ID = id
	return nil
}

// Update replaces the mutable fields of an existing milestone row
func (r *MilestoneRepository) Update(m *models.Milestone) error {
	query := `
		UPDATE milestones
		SET progress = ?, completed = ?, earned_at = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		m.Progress,
		m.Completed,
		nullableTime(m.EarnedAt),
		time.Now(),
		m.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update milestone: %w", err)
	}
	return nil
}

// CompletedCount returns how many milestones the child has earned
func (r *MilestoneRepository) CompletedCount(childID int64) (int, error) {
	query := "SELECT COUNT(*) FROM milestones WHERE child_id = ? AND completed = ?"
	var count int
	if err := r.db.QueryRow(query, childID, true).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count milestones: %w", err)
	}
	return count, nil
}
