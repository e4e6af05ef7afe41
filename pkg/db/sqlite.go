package db

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fadedpez/placebo/pkg/db/migrations"
	_ "github.com/mattn/go-sqlite3"
)

// TimeFormat is how timestamps are written to SQLite
const TimeFormat = "2006-01-02 15:04:05.000"

// SQLite might hand timestamps back in any of these
var timeFormats = []string{
	TimeFormat,
	"2006-01-02 15:04:05",       // SQLite default format
	"2006-01-02T15:04:05Z",      // ISO 8601 format
	"2006-01-02T15:04:05-07:00", // ISO 8601 with timezone
	time.RFC3339Nano,
}

// OpenSQLite opens the database at path, creating its directory, and applies
// the embedded migrations. ":memory:" is accepted for tests.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		dsn = "file:" + path + "?_foreign_keys=on&_busy_timeout=5000"
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// one connection keeps ":memory:" databases shared and serialises writers
	conn.SetMaxOpenConns(1)

	if _, err := migrations.NewMigrator(conn, migrations.Embedded()).MigrateUp(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("error migrating database: %w", err)
	}
	return conn, nil
}

// FormatTime renders t for storage in UTC
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeFormat)
}

// ParseTime parses a stored timestamp, trying each known layout
func ParseTime(s string) (time.Time, error) {
	var parseErr error
	for _, format := range timeFormats {
		t, err := time.Parse(format, s)
		if err == nil {
			return t, nil
		}
		parseErr = err
	}
	return time.Time{}, fmt.Errorf("error parsing timestamp '%s': %w", s, parseErr)
}
