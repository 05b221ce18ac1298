package database

import (
	"database/sql"
	"time"

	_ "github.com/lib/pq"
)

// PostgresDialect implements Dialect for PostgreSQL
type PostgresDialect struct{}

// NewPostgresDialect creates a new PostgreSQL dialect
func NewPostgresDialect() *PostgresDialect {
	return &PostgresDialect{}
}

func (d *PostgresDialect) DriverName() string {
	return "postgres"
}

func (d *PostgresDialect) DSN(config DialectConfig) string {
	return config.URL
}

func (d *PostgresDialect) RewriteQuery(query string) string {
	// PostgreSQL uses $1, $2, etc. instead of ?
	return rewritePlaceholdersToNumbered(query)
}

func (d *PostgresDialect) SupportsLastInsertId() bool {
	// PostgreSQL doesn't support LastInsertId(), needs RETURNING clause
	return false
}

func (d *PostgresDialect) ConfigureConnection(db *sql.DB) error {
	// Configure connection pool for PostgreSQL
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	// PostgreSQL has foreign keys enabled by default, no pragma needed
	return nil
}

func (d *PostgresDialect) MigrationsSubdir() string {
	return "postgres"
}

func (d *PostgresDialect) CreateMigrationsTableQuery() string {
	return `
		CREATE TABLE IF NOT EXISTS migrations (
			id BIGSERIAL PRIMARY KEY,
			filename TEXT UNIQUE NOT NULL,
			executed_at TIMESTAMPTZ DEFAULT CURRENT_TIMESTAMP
		);
	`
}

func (d *PostgresDialect) UpsertDailyReport() string {
	return `
		INSERT INTO daily_reports
			(child_id, report_date, stories_read, games_played, time_spent,
			 stars_earned, emotional_feedback, breakdown)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (child_id, report_date) DO UPDATE SET
			stories_read = excluded.stories_read,
			games_played = excluded.games_played,
			time_spent = excluded.time_spent,
			stars_earned = excluded.stars_earned,
			emotional_feedback = excluded.emotional_feedback,
			breakdown = excluded.breakdown,
			updated_at = CURRENT_TIMESTAMP
	`
}

func (d *PostgresDialect) UpsertWeeklyReport() string {
	return `
		INSERT INTO weekly_reports
			(child_id, week_start, week_end, stories_read, games_played,
			 time_spent, stars_earned, emotional_feedback, daily_breakdown,
			 current_streak, longest_streak)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (child_id, week_start) DO UPDATE SET
			week_end = excluded.week_end,
			stories_read = excluded.stories_read,
			games_played = excluded.games_played,
			time_spent = excluded.time_spent,
			stars_earned = excluded.stars_earned,
			emotional_feedback = excluded.emotional_feedback,
			daily_breakdown = excluded.daily_breakdown,
			current_streak = excluded.current_streak,
			longest_streak = excluded.longest_streak,
			updated_at = CURRENT_TIMESTAMP
	`
}

func (d *PostgresDialect) InsertRewardIfAbsent() string {
	return `
		INSERT INTO rewards (child_id, badge_id, title, points)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (child_id, badge_id) DO NOTHING
	`
}
