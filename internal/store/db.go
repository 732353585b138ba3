package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// dataDir is the per-project directory holding the database and the
// legacy flat file.
const dataDir = ".mnemo"

// timeLayout is the timestamp format for the memories and
// memory_relations tables. Fixed-width fractional seconds so that
// lexicographic ordering of the stored strings matches chronological
// ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// DB wraps a sql.DB connection to one project's memory database.
type DB struct {
	*sql.DB
	Path string
}

func nowStamp() string {
	return time.Now().UTC().Format(timeLayout)
}

// ProjectDBPath returns the database path for a project directory:
// <project>/.mnemo/memory.db
func ProjectDBPath(project string) string {
	return filepath.Join(project, dataDir, "memory.db")
}

// Open opens (or creates) the memory database for the given project
// directory, configures pragmas, runs migrations, and attempts a
// one-time import of the legacy flat-file dataset if one is present.
func Open(project string) (*DB, error) {
	path := ProjectDBPath(project)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	db := &DB{DB: sqlDB, Path: path}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	// Best effort: a failed import leaves the legacy file in place for
	// a future attempt and never blocks construction.
	db.importLegacy(filepath.Join(filepath.Dir(path), "memory.json"))

	return db, nil
}

// OpenMemory opens an in-memory database for testing.
func OpenMemory() (*DB, error) {
	sqlDB, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}

	db := &DB{DB: sqlDB, Path: ":memory:"}
	if err := db.configurePragmas(); err != nil {
		sqlDB.Close()
		return nil, err
	}
	if err := db.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

func (db *DB) configurePragmas() error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return fmt.Errorf("pragma %q: %w", p, err)
		}
	}
	return nil
}
