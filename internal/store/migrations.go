package store

import (
	"fmt"
)

type migration struct {
	Version     int
	Description string
	SQL         string
}

var migrations = []migration{
	{
		Version:     1,
		Description: "memories: per-project key-value items",
		SQL: `
CREATE TABLE memories (
    key          TEXT PRIMARY KEY,
    value        TEXT NOT NULL,
    category     TEXT NOT NULL DEFAULT 'general',
    timestamp    TEXT NOT NULL,
    lastAccessed TEXT NOT NULL,
    priority     INTEGER DEFAULT 0
);

CREATE INDEX idx_memories_category     ON memories(category);
CREATE INDEX idx_memories_timestamp    ON memories(timestamp);
CREATE INDEX idx_memories_priority     ON memories(priority);
CREATE INDEX idx_memories_lastAccessed ON memories(lastAccessed);
`,
	},
	{
		Version:     2,
		Description: "memory_relations: directed typed edges between items",
		SQL: `
CREATE TABLE memory_relations (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    sourceKey    TEXT,
    targetKey    TEXT,
    relationType TEXT,
    strength     REAL DEFAULT 1.0,
    metadata     TEXT,
    timestamp    TEXT,
    UNIQUE(sourceKey, targetKey, relationType)
);

CREATE INDEX idx_relations_source ON memory_relations(sourceKey);
CREATE INDEX idx_relations_target ON memory_relations(targetKey);
CREATE INDEX idx_relations_type   ON memory_relations(relationType);
`,
	},
}

func (db *DB) migrate() error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_versions (
			version     INTEGER PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at  INTEGER NOT NULL DEFAULT (strftime('%s', 'now') * 1000)
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_versions: %w", err)
	}

	for _, m := range migrations {
		var count int
		err := db.QueryRow("SELECT COUNT(*) FROM schema_versions WHERE version = ?", m.Version).Scan(&count)
		if err != nil {
			return fmt.Errorf("check migration %d: %w", m.Version, err)
		}
		if count > 0 {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.Version, err)
		}

		if _, err := tx.Exec(m.SQL); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.Version, m.Description, err)
		}

		if _, err := tx.Exec(
			"INSERT INTO schema_versions (version, description) VALUES (?, ?)",
			m.Version, m.Description,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.Version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.Version, err)
		}
	}

	return nil
}

// SchemaVersion returns the current schema version.
func (db *DB) SchemaVersion() (int, error) {
	var version int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_versions").Scan(&version)
	return version, err
}
