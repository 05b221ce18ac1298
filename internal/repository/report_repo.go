package repository

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"storynest/internal/database"
	"storynest/internal/models"
)

// dateLayout is how report dates are stored. Plain date strings sort
// correctly, compare correctly and scan identically on every supported
// driver, unlike driver-dependent DATE handling.
const dateLayout = "2006-01-02"

// ReportRepository handles daily_reports and weekly_reports rows. The
// upserts go through the dialect so each database resolves the unique-key
// conflict natively in a single atomic statement.
type ReportRepository struct {
	db  *database.DB
	loc *time.Location
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *database.DB, loc *time.Location) *ReportRepository {
	return &ReportRepository{db: db, loc: loc}
}

// GetDaily retrieves the daily report for one (child, date), or nil when
// no report has been stored for that day.
func (r *ReportRepository) GetDaily(childID int64, date time.Time) (*models.DailyReport, error) {
	query := `
		SELECT id, child_id, report_date, stories_read, games_played, time_spent,
		       stars_earned, emotional_feedback, breakdown, created_at, updated_at
		FROM daily_reports
		WHERE child_id = ? AND report_date = ?
	`
	report := &models.DailyReport{}
	var reportDate string
	var feedbackJSON, breakdownJSON []byte

	err := r.db.QueryRow(query, childID, date.Format(dateLayout)).Scan(
		&report.ID,
		&report.ChildID,
		&reportDate,
		&report.StoriesRead,
		&report.GamesPlayed,
		&report.TimeSpent,
		&report.StarsEarned,
		&feedbackJSON,
		&breakdownJSON,
		&report.CreatedAt,
		&report.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get daily report: %w", err)
	}

	if report.ReportDate, err = time.ParseInLocation(dateLayout, reportDate, r.loc); err != nil {
		return nil, fmt.Errorf("failed to parse report date: %w", err)
	}
	if err := json.Unmarshal(feedbackJSON, &report.EmotionalFeedback); err != nil {
		return nil, fmt.Errorf("failed to decode emotional feedback: %w", err)
	}
	if err := json.Unmarshal(breakdownJSON, &report.Breakdown); err != nil {
		return nil, fmt.Errorf("failed to decode breakdown: %w", err)
	}

	return report, nil
}

// UpsertDaily inserts or replaces the report for its (child_id, report_date)
// key in a single statement.
func (r *ReportRepository) UpsertDaily(report *models.DailyReport) error {
	feedbackJSON, err := json.Marshal(report.EmotionalFeedback)
	if err != nil {
		return fmt.Errorf("failed to encode emotional feedback: %w", err)
	}
	breakdownJSON, err := json.Marshal(report.Breakdown)
	if err != nil {
		return fmt.Errorf("failed to encode breakdown: %w", err)
	}

	_, err = r.db.Exec(r.db.Dialect.UpsertDailyReport(),
		report.ChildID,
		report.ReportDate.Format(dateLayout),
		report.StoriesRead,
		report.GamesPlayed,
		report.TimeSpent,
		report.StarsEarned,
		feedbackJSON,
		breakdownJSON,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert daily report: %w", err)
	}
	return nil
}

// GetWeekly retrieves the weekly report for one (child, week_start), or nil
// when no report has been stored for that week.
func (r *ReportRepository) GetWeekly(childID int64, weekStart time.Time) (*models.WeeklyReport, error) {
	query := `
		SELECT id, child_id, week_start, week_end, stories_read, games_played,
		       time_spent, stars_earned, emotional_feedback, daily_breakdown,
		       current_streak, longest_streak, created_at, updated_at
		FROM weekly_reports
		WHERE child_id = ? AND week_start = ?
	`
	report := &models.WeeklyReport{}
	var start, end string
	var feedbackJSON, breakdownJSON []byte

	err := r.db.QueryRow(query, childID, weekStart.Format(dateLayout)).Scan(
		&report.ID,
		&report.ChildID,
		&start,
		&end,
		&report.StoriesRead,
		&report.GamesPlayed,
		&report.TimeSpent,
		&report.StarsEarned,
		&feedbackJSON,
		&breakdownJSON,
		&report.CurrentStreak,
		&report.LongestStreak,
		&report.CreatedAt,
		&report.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get weekly report: %w", err)
	}

	if report.WeekStart, err = time.ParseInLocation(dateLayout, start, r.loc); err != nil {
		return nil, fmt.Errorf("failed to parse week start: %w", err)
	}
	if report.WeekEnd, err = time.ParseInLocation(dateLayout, end, r.loc); err != nil {
		return nil, fmt.Errorf("failed to parse week end: %w", err)
	}
	if err := json.Unmarshal(feedbackJSON, &report.EmotionalFeedback); err != nil {
		return nil, fmt.Errorf("failed to decode emotional feedback: %w", err)
	}
	if err := json.Unmarshal(breakdownJSON, &report.DailyBreakdown); err != nil {
		return nil, fmt.Errorf("failed to decode daily breakdown: %w", err)
	}

	return report, nil
}

// UpsertWeekly inserts or replaces the report for its (child_id, week_start)
// key in a single statement.
func (r *ReportRepository) UpsertWeekly(report *models.WeeklyReport) error {
	feedbackJSON, err := json.Marshal(report.EmotionalFeedback)
	if err != nil {
		return fmt.Errorf("failed to encode emotional feedback: %w", err)
	}
	breakdownJSON, err := json.Marshal(report.DailyBreakdown)
	if err != nil {
		return fmt.Errorf("failed to encode daily breakdown: %w", err)
	}

	_, err = r.db.Exec(r.db.Dialect.UpsertWeeklyReport(),
		report.ChildID,
		report.WeekStart.Format(dateLayout),
		report.WeekEnd.Format(dateLayout),
		report.StoriesRead,
		report.GamesPlayed,
		report.TimeSpent,
		report.StarsEarned,
		feedbackJSON,
		breakdownJSON,
		report.CurrentStreak,
		report.LongestStreak,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert weekly report: %w", err)
	}
	return nil
}

// ActiveDates returns, sorted ascending, the dates the child has a daily
// report with recorded session time, no later than until and at most
// lookbackDays old.
func (r *ReportRepository) ActiveDates(childID int64, until time.Time, lookbackDays int) ([]time.Time, error) {
	earliest := until.AddDate(0, 0, -lookbackDays)

	query := `
		SELECT report_date
		FROM daily_reports
		WHERE child_id = ? AND time_spent > 0 AND report_date >= ? AND report_date <= ?
		ORDER BY report_date ASC
	`
	rows, err := r.db.Query(query, childID, earliest.Format(dateLayout), until.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query active dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("failed to scan active date: %w", err)
		}
		date, err := time.ParseInLocation(dateLayout, raw, r.loc)
		if err != nil {
			return nil, fmt.Errorf("failed to parse active date: %w", err)
		}
		dates = append(dates, date)
	}

	return dates, rows.Err()
}
