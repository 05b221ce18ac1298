package database

import (
	"database/sql"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// MySQLDialect implements Dialect for MySQL
type MySQLDialect struct{}

// NewMySQLDialect creates a new MySQL dialect
func NewMySQLDialect() *MySQLDialect {
	return &MySQLDialect{}
}

func (d *MySQLDialect) DriverName() string {
	return "mysql"
}

func (d *MySQLDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *MySQLDialect) RewriteQuery(query string) string {
	// MySQL uses ? placeholders like SQLite, no rewrite needed
	return query
}

func (d *MySQLDialect) SupportsLastInsertId() bool {
	return true
}

func (d *MySQLDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for MySQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// Ensure foreign key checks are enabled
	if _, err := db.Exec("SET FOREIGN_KEY_CHECKS = 1;"); err != nil {
		return err
	}

	return nil
}

func (d *MySQLDialect) MigrationsSubdir() string {
	return "mysql"
}

func (d *MySQLDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			filename VARCHAR(255) UNIQUE NOT NULL,
			executed_at DATETIME(6) DEFAULT CURRENT_TIMESTAMP(6)
		);
	`
}

func (d *MySQLDialect) UpsertDailyReport() string {
	return `
		INSERT INTO daily_reports
			(child_id, report_date, stories_read, games_played, time_spent,
			 stars_earned, emotional_feedback, breakdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			stories_read = VALUES(stories_read),
			games_played = VALUES(games_played),
			time_spent = VALUES(time_spent),
			stars_earned = VALUES(stars_earned),
			emotional_feedback = VALUES(emotional_feedback),
			breakdown = VALUES(breakdown),
			updated_at = CURRENT_TIMESTAMP
	`
}

func (d *MySQLDialect) UpsertWeeklyReport() string {
	return `
		INSERT INTO weekly_reports
			(child_id, week_start, week_end, stories_read, games_played,
			 time_spent, stars_earned, emotional_feedback, daily_breakdown,
			 current_streak, longest_streak)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON DUPLICATE KEY UPDATE
			week_end = VALUES(week_end),
			stories_read = VALUES(stories_read),
			games_played = VALUES(games_played),
			time_spent = VALUES(time_spent),
			stars_earned = VALUES(stars_earned),
			emotional_feedback = VALUES(emotional_feedback),
			daily_breakdown = VALUES(daily_breakdown),
			current_streak = VALUES(current_streak),
			longest_streak = VALUES(longest_streak),
			updated_at = CURRENT_TIMESTAMP
	`
}

func (d *MySQLDialect) InsertRewardIfAbsent() string {
	return `
		INSERT IGNORE INTO rewards (child_id, badge_id, title, points)
		VALUES (?, ?, ?, ?)
	`
}
