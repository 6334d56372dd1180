// Package store persists garmin-go's canonical activity, sync-state and
// report data in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// ErrActivityNotFound is returned when a garmin_summary row doesn't exist.
var ErrActivityNotFound = errors.New("activity not found")

// ErrScaleMeasurementNotFound is returned when a scale_measurements row
// doesn't exist.
var ErrScaleMeasurementNotFound = errors.New("scale measurement not found")

// DB wraps a SQLite connection with garmin-go's query methods.
type DB struct {
	*sql.DB
}

// Open opens the SQLite database at path, creating the file and its
// directory and running migrations if necessary.
func Open(path string) (*DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA foreign_keys = ON"); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &DB{DB: sqlDB}, nil
}

// OpenDefault opens the database at the conventional location under dir
// (typically the config's data directory).
func OpenDefault(dataDir string) (*DB, error) {
	return Open(filepath.Join(dataDir, "data.db"))
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
