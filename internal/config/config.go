package config

import (
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds application configuration
type Config struct {
	// Database
	DatabaseType string // sqlite, postgres or mysql
	DatabasePath string // sqlite only
	DatabaseURL  string // postgres/mysql connection URL

	MigrationsPath string

	// ReportTimezone is the reference timezone for all day/week windows.
	// Every aggregation uses it consistently so daily and weekly totals
	// never disagree about where midnight falls.
	ReportTimezone string

	// Redis report cache; empty RedisAddr disables caching
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	ReportCacheTTL time.Duration

	// Nightly aggregation schedule, 24h clock in ReportTimezone
	AggregateAt string
}

// Load reads configuration from environment variables with sensible defaults
func Load() *Config {
	return &Config{
		DatabaseType:   getEnv("DATABASE_TYPE", "sqlite"),
		DatabasePath:   getEnv("DB_PATH", "./storynest.db"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		ReportTimezone: getEnv("REPORT_TIMEZONE", "UTC"),
		RedisAddr:      getEnv("REDIS_ADDR", ""),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		ReportCacheTTL: time.Duration(getEnvInt("REPORT_CACHE_TTL_SECONDS", 300)) * time.Second,
		AggregateAt:    getEnv("AGGREGATE_AT", "00:30"),
	}
}

// Location resolves ReportTimezone, falling back to UTC on a bad name.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.ReportTimezone)
	if err != nil {
		log.Printf("Invalid REPORT_TIMEZONE %q, falling back to UTC: %v", c.ReportTimezone, err)
		return time.UTC
	}
	return loc
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
