package database

import (
	"database/sql"
	"regexp"
	"strconv"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertDailyReport returns a single-statement insert-or-replace for
	// daily_reports keyed on (child_id, report_date). Aggregation relies on
	// this being atomic: concurrent recomputations of the same day must not
	// produce duplicate rows or lost updates.
	// Parameters: child_id, report_date, stories_read, games_played,
	// time_spent, stars_earned, emotional_feedback, breakdown.
	UpsertDailyReport() string

	// UpsertWeeklyReport returns a single-statement insert-or-replace for
	// weekly_reports keyed on (child_id, week_start).
	// Parameters: child_id, week_start, week_end, stories_read, games_played,
	// time_spent, stars_earned, emotional_feedback, daily_breakdown,
	// current_streak, longest_streak.
	UpsertWeeklyReport() string

	// InsertRewardIfAbsent returns an insert for rewards that is a no-op when
	// a row with the same (child_id, badge_id) already exists. Zero rows
	// affected means the badge was already awarded.
	// Parameters: child_id, badge_id, title, points.
	InsertRewardIfAbsent() string
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}
