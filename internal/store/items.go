package store

import (
	"database/sql"
	"fmt"
)

// Item is a single key-value record with category, priority and
// timestamps. Key is unique per store.
type Item struct {
	Key          string `json:"key"`
	Value        string `json:"value"`
	Category     string `json:"category"`
	Priority     int    `json:"priority"`
	Timestamp    string `json:"timestamp"`
	LastAccessed string `json:"lastAccessed"`
}

const itemColumns = "key, value, category, priority, timestamp, lastAccessed"

// Save upserts an item. The upsert is a full replace — category and
// priority of an existing row are overwritten even when the caller
// only meant to change the value. Empty category defaults to "general".
func (db *DB) Save(key, value, category string, priority int) error {
	if category == "" {
		category = "general"
	}
	now := nowStamp()
	_, err := db.Exec(`
		INSERT OR REPLACE INTO memories (key, value, category, priority, timestamp, lastAccessed)
		VALUES (?, ?, ?, ?, ?, ?)
	`, key, value, category, priority, now, now)
	if err != nil {
		return fmt.Errorf("save %q: %w", key, err)
	}
	return nil
}

// Recall returns the item for key, or nil if absent. A successful
// read bumps lastAccessed. The select and the update run inside one
// transaction; true atomicity is only as strong as SQLite's isolation,
// so under concurrent handles a lastAccessed bump can be lost. That
// race is accepted, not worked around with external locking.
func (db *DB) Recall(key string) (*Item, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("recall %q: %w", key, err)
	}
	defer tx.Rollback()

	var it Item
	err = tx.QueryRow(
		"SELECT "+itemColumns+" FROM memories WHERE key = ?", key,
	).Scan(&it.Key, &it.Value, &it.Category, &it.Priority, &it.Timestamp, &it.LastAccessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recall %q: %w", key, err)
	}

	it.LastAccessed = nowStamp()
	if _, err := tx.Exec(
		"UPDATE memories SET lastAccessed = ? WHERE key = ?", it.LastAccessed, key,
	); err != nil {
		return nil, fmt.Errorf("recall touch %q: %w", key, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("recall commit %q: %w", key, err)
	}
	return &it, nil
}

// Get returns the item for key without touching lastAccessed, or nil
// if absent. Traversal and ranking layers read through Get so that
// only an explicit Recall counts as an access.
func (db *DB) Get(key string) (*Item, error) {
	var it Item
	err := db.QueryRow(
		"SELECT "+itemColumns+" FROM memories WHERE key = ?", key,
	).Scan(&it.Key, &it.Value, &it.Category, &it.Priority, &it.Timestamp, &it.LastAccessed)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get %q: %w", key, err)
	}
	return &it, nil
}

// Update replaces an item's value and refreshes its timestamp.
// Returns false without writing when the key does not exist — unlike
// Save, Update never creates.
func (db *DB) Update(key, value string) (bool, error) {
	res, err := db.Exec(
		"UPDATE memories SET value = ?, timestamp = ? WHERE key = ?",
		value, nowStamp(), key,
	)
	if err != nil {
		return false, fmt.Errorf("update %q: %w", key, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Delete removes an item and every relation where it appears as
// source or target, so relations never outlive their endpoints.
// Returns whether the item existed.
func (db *DB) Delete(key string) (bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", key, err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"DELETE FROM memory_relations WHERE sourceKey = ? OR targetKey = ?", key, key,
	); err != nil {
		return false, fmt.Errorf("delete relations for %q: %w", key, err)
	}

	res, err := tx.Exec("DELETE FROM memories WHERE key = ?", key)
	if err != nil {
		return false, fmt.Errorf("delete %q: %w", key, err)
	}
	n, _ := res.RowsAffected()

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("delete commit %q: %w", key, err)
	}
	return n > 0, nil
}

// List returns all items, or only those in category when it is
// non-empty, ordered by priority descending then timestamp descending.
func (db *DB) List(category string) ([]Item, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if category != "" {
		rows, err = db.Query(
			"SELECT "+itemColumns+" FROM memories WHERE category = ? ORDER BY priority DESC, timestamp DESC",
			category,
		)
	} else {
		rows, err = db.Query(
			"SELECT " + itemColumns + " FROM memories ORDER BY priority DESC, timestamp DESC",
		)
	}
	if err != nil {
		return nil, fmt.Errorf("list: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Search returns items whose key or value contains query as a
// substring (case-insensitive for ASCII, via LIKE). An empty query
// matches every row; that is documented behavior, not a bug.
func (db *DB) Search(query string) ([]Item, error) {
	pattern := "%" + query + "%"
	rows, err := db.Query(`
		SELECT `+itemColumns+` FROM memories
		WHERE key LIKE ? OR value LIKE ?
		ORDER BY priority DESC, timestamp DESC
	`, pattern, pattern)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// ByPriority returns items with exactly the given priority, newest
// first.
func (db *DB) ByPriority(priority int) ([]Item, error) {
	rows, err := db.Query(
		"SELECT "+itemColumns+" FROM memories WHERE priority = ? ORDER BY timestamp DESC",
		priority,
	)
	if err != nil {
		return nil, fmt.Errorf("by priority %d: %w", priority, err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// SetPriority re-weights an item. Returns whether the key existed.
func (db *DB) SetPriority(key string, priority int) (bool, error) {
	res, err := db.Exec("UPDATE memories SET priority = ? WHERE key = ?", priority, key)
	if err != nil {
		return false, fmt.Errorf("set priority %q: %w", key, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// Stats describes the store contents.
type Stats struct {
	Total      int            `json:"total"`
	ByCategory map[string]int `json:"byCategory"`
}

// GetStats aggregates item counts per category in a single pass.
func (db *DB) GetStats() (*Stats, error) {
	rows, err := db.Query("SELECT category, COUNT(*) FROM memories GROUP BY category")
	if err != nil {
		return nil, fmt.Errorf("stats: %w", err)
	}
	defer rows.Close()

	s := &Stats{ByCategory: make(map[string]int)}
	for rows.Next() {
		var category string
		var count int
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		s.ByCategory[category] = count
		s.Total += count
	}
	return s, rows.Err()
}

// Timeline returns items whose timestamp falls in the inclusive
// [start, end] range, newest first, capped at limit. Empty bounds are
// open; bounds are compared as strings against the stored stamps.
func (db *DB) Timeline(start, end string, limit int) ([]Item, error) {
	if limit <= 0 {
		limit = 50
	}

	query := "SELECT " + itemColumns + " FROM memories"
	var conds []string
	var args []any
	if start != "" {
		conds = append(conds, "timestamp >= ?")
		args = append(args, start)
	}
	if end != "" {
		conds = append(conds, "timestamp <= ?")
		args = append(args, end)
	}
	for i, c := range conds {
		if i == 0 {
			query += " WHERE " + c
		} else {
			query += " AND " + c
		}
	}
	query += " ORDER BY timestamp DESC LIMIT ?"
	args = append(args, limit)

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("timeline: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

func scanItems(rows *sql.Rows) ([]Item, error) {
	var items []Item
	for rows.Next() {
		var it Item
		if err := rows.Scan(&it.Key, &it.Value, &it.Category, &it.Priority, &it.Timestamp, &it.LastAccessed); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}
