package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
)

// Relation is a directed, typed, weighted edge between two item keys.
// Endpoints are not validated against the memories table; a caller
// that wants referential integrity checks them itself.
type Relation struct {
	ID           int64           `json:"id"`
	SourceKey    string          `json:"sourceKey"`
	TargetKey    string          `json:"targetKey"`
	RelationType string          `json:"relationType"`
	Strength     float64         `json:"strength"`
	Metadata     json.RawMessage `json:"metadata,omitempty"`
	Timestamp    string          `json:"timestamp"`
}

// Direction selects which edges RelationsFor returns.
type Direction string

const (
	Outgoing Direction = "outgoing"
	Incoming Direction = "incoming"
	Both     Direction = "both"
)

const relationColumns = "id, sourceKey, targetKey, relationType, strength, metadata, timestamp"

// Link upserts the (source, target, relationType) edge. Re-linking an
// existing triple replaces strength and metadata instead of creating
// a duplicate. Strength is advisory metadata; no traversal uses it.
func (db *DB) Link(source, target, relationType string, strength float64, metadata json.RawMessage) error {
	var meta any
	if len(metadata) > 0 {
		meta = string(metadata)
	}
	_, err := db.Exec(`
		INSERT INTO memory_relations (sourceKey, targetKey, relationType, strength, metadata, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(sourceKey, targetKey, relationType)
		DO UPDATE SET strength = excluded.strength, metadata = excluded.metadata, timestamp = excluded.timestamp
	`, source, target, relationType, strength, meta, nowStamp())
	if err != nil {
		return fmt.Errorf("link %q -> %q: %w", source, target, err)
	}
	return nil
}

// Unlink deletes relations for exactly the ordered pair source -> target.
// A reverse edge of the same type is untouched. When relationType is
// empty every type for the pair is removed. Returns whether any row
// was deleted.
func (db *DB) Unlink(source, target, relationType string) (bool, error) {
	var (
		res sql.Result
		err error
	)
	if relationType != "" {
		res, err = db.Exec(
			"DELETE FROM memory_relations WHERE sourceKey = ? AND targetKey = ? AND relationType = ?",
			source, target, relationType,
		)
	} else {
		res, err = db.Exec(
			"DELETE FROM memory_relations WHERE sourceKey = ? AND targetKey = ?",
			source, target,
		)
	}
	if err != nil {
		return false, fmt.Errorf("unlink %q -> %q: %w", source, target, err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RelationsFor returns the edges touching key in the given direction.
// Both is the concatenation of the outgoing and incoming queries.
func (db *DB) RelationsFor(key string, direction Direction) ([]Relation, error) {
	switch direction {
	case Outgoing:
		return db.queryRelations("SELECT "+relationColumns+" FROM memory_relations WHERE sourceKey = ?", key)
	case Incoming:
		return db.queryRelations("SELECT "+relationColumns+" FROM memory_relations WHERE targetKey = ?", key)
	case Both, "":
		out, err := db.queryRelations("SELECT "+relationColumns+" FROM memory_relations WHERE sourceKey = ?", key)
		if err != nil {
			return nil, err
		}
		in, err := db.queryRelations("SELECT "+relationColumns+" FROM memory_relations WHERE targetKey = ?", key)
		if err != nil {
			return nil, err
		}
		return append(out, in...), nil
	default:
		return nil, fmt.Errorf("unknown direction %q", direction)
	}
}

// AllOutgoing returns the outgoing relations of every stored item,
// keyed by source. Used by the whole-store graph view, which collects
// only each node's outgoing edges: a relation whose source key is not
// an item is invisible here even though Link allows creating one.
func (db *DB) AllOutgoing() ([]Relation, error) {
	return db.queryRelations(`
		SELECT r.id, r.sourceKey, r.targetKey, r.relationType, r.strength, r.metadata, r.timestamp
		FROM memory_relations r
		JOIN memories m ON m.key = r.sourceKey
		ORDER BY r.sourceKey
	`)
}

func (db *DB) queryRelations(query string, args ...any) ([]Relation, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query relations: %w", err)
	}
	defer rows.Close()

	var rels []Relation
	for rows.Next() {
		var r Relation
		var metadata sql.NullString
		if err := rows.Scan(&r.ID, &r.SourceKey, &r.TargetKey, &r.RelationType, &r.Strength, &metadata, &r.Timestamp); err != nil {
			return nil, fmt.Errorf("scan relation: %w", err)
		}
		if metadata.Valid && metadata.String != "" {
			r.Metadata = json.RawMessage(metadata.String)
		}
		rels = append(rels, r)
	}
	return rels, rows.Err()
}
