package repository

import (
	"fmt"
	"time"

	"storynest/internal/database"
	"storynest/internal/models"
)

// RewardRepository handles reward rows. Issuance goes through the dialect's
// conditional insert so the (child_id, badge_id) unique key decides, inside
// the database, whether a badge is new.
type RewardRepository struct {
	db *database.DB
}

// NewRewardRepository creates a new reward repository
func NewRewardRepository(db *database.DB) *RewardRepository {
	return &RewardRepository{db: db}
}

// CreateIfAbsent issues a badge unless the child already has it. It reports
// true when this call created the row, false when the badge already
// existed. Concurrent callers racing on the same badge both succeed and
// exactly one sees true.
func (r *RewardRepository) CreateIfAbsent(childID int64, badgeID, title string, points int) (bool, error) {
	result, err := r.db.Exec(r.db.Dialect.InsertRewardIfAbsent(), childID, badgeID, title, points)
	if err != nil {
		return false, fmt.Errorf("failed to create reward: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read reward insert result: %w", err)
	}
	return affected > 0, nil
}

// PointsInWindow sums the point values of rewards issued within the
// half-open window [from, to).
func (r *RewardRepository) PointsInWindow(childID int64, from, to time.Time) (int, error) {
	query := `
		SELECT COALESCE(SUM(points), 0)
		FROM rewards
		WHERE child_id = ? AND created_at >= ? AND created_at < ?
	`
	var points int
	if err := r.db.QueryRow(query, childID, from, to).Scan(&points); err != nil {
		return 0, fmt.Errorf("failed to sum reward points: %w", err)
	}
	return points, nil
}

// ByChild retrieves all rewards for a child, newest first
func (r *RewardRepository) ByChild(childID int64) ([]models.Reward, error) {
	query := `
		SELECT id, child_id, badge_id, title, points, created_at
		FROM rewards
		WHERE child_id = ?
		ORDER BY created_at DESC
	`
	rows, err := r.db.Query(query, childID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rewards: %w", err)
	}
	defer rows.Close()

	var rewards []models.Reward
	for rows.Next() {
		var reward models.Reward
		if err := rows.Scan(
			&reward.ID,
			&reward.ChildID,
			&reward.BadgeID,
			&reward.Title,
			&reward.Points,
			&reward.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan reward: %w", err)
		}
		rewards = append(rewards, reward)
	}

	return rewards, rows.Err()
}

// TotalPoints sums every point the child has ever earned
func (r *RewardRepository) TotalPoints(childID int64) (int, error) {
	query := "SELECT COALESCE(SUM(points), 0) FROM rewards WHERE child_id = ?"
	var points int
	if err := r.db.QueryRow(query, childID).Scan(&points); err != nil {
		return 0, fmt.Errorf("failed to sum points: %w", err)
	}
	return points, nil
}
