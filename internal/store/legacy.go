package store

import (
	"encoding/json"
	"os"

	"github.com/charmbracelet/log"
)

// legacyItem is one record of the flat-file format that predates the
// SQLite store. Field names match the memories table.
type legacyItem struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	Category     string `json:"category"`
	Priority     int    `json:"priority"`
	Timestamp    string `json:"timestamp"`
	LastAccessed string `json:"lastAccessed"`
}

// importLegacy bulk-imports a legacy flat-file dataset in a single
// transaction, then renames the file with a .backup suffix. Every
// failure is swallowed: the legacy file stays put and a future Open
// retries. Construction never fails because of a bad import.
func (db *DB) importLegacy(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var records []legacyItem
	if err := json.Unmarshal(data, &records); err != nil {
		log.Warn("legacy import: unreadable flat file, leaving in place", "path", path, "err", err)
		return
	}

	tx, err := db.Begin()
	if err != nil {
		log.Warn("legacy import: begin failed", "err", err)
		return
	}
	defer tx.Rollback()

	for _, r := range records {
		if r.Category == "" {
			r.Category = "general"
		}
		if r.Timestamp == "" {
			r.Timestamp = nowStamp()
		}
		if r.LastAccessed == "" {
			r.LastAccessed = r.Timestamp
		}
		if _, err := tx.Exec(`
			INSERT OR REPLACE INTO memories (key, value, category, priority, timestamp, lastAccessed)
			VALUES (?, ?, ?, ?, ?, ?)
		`, r.Key, r.Value, r.Category, r.Priority, r.Timestamp, r.LastAccessed); err != nil {
			log.Warn("legacy import: insert failed, aborting", "key", r.Key, "err", err)
			return
		}
	}

	if err := tx.Commit(); err != nil {
		log.Warn("legacy import: commit failed", "err", err)
		return
	}

	if err := os.Rename(path, path+".backup"); err != nil {
		// Imported but could not rename. INSERT OR REPLACE keeps the
		// retry on next Open harmless.
		log.Warn("legacy import: rename failed", "path", path, "err", err)
		return
	}

	log.Info("imported legacy memory file", "path", path, "records", len(records))
}
