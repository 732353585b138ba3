package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resultKeys(results []SearchResult) []string {
	out := make([]string, len(results))
	for i, r := range results {
		out[i] = r.Item.Key
	}
	return out
}

func TestKeywordSearch(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("deploy-notes", "staging first", "ops", 5))
	require.NoError(t, db.Save("deploy-checklist", "verify staging", "ops", 1))
	require.NoError(t, db.Save("unrelated", "nothing", "misc", 9))

	results, err := Search(db, "keyword", "deploy", SearchOpts{})
	require.NoError(t, err)
	// Priority descending.
	assert.Equal(t, []string{"deploy-notes", "deploy-checklist"}, resultKeys(results))
}

func TestKeywordCategoryFilter(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("a", "shared term", "ops", 0))
	require.NoError(t, db.Save("b", "shared term", "misc", 0))

	results, err := Search(db, "keyword", "shared", SearchOpts{Category: "ops"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, resultKeys(results))
}

func TestSearchLimit(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"m1", "m2", "m3"} {
		require.NoError(t, db.Save(k, "match", "", 0))
	}

	results, err := Search(db, "keyword", "match", SearchOpts{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearchEmptyQueryMatchesAll(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Save(k, "v", "", 0))
	}

	results, err := Search(db, "keyword", "", SearchOpts{})
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestGraphTraversalStrategy(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"A", "B", "C"} {
		require.NoError(t, db.Save(k, "node "+k, "", 0))
	}
	require.NoError(t, db.Link("A", "B", "next", 1.0, nil))
	require.NoError(t, db.Link("B", "C", "next", 1.0, nil))

	results, err := Search(db, "graph_traversal", "", SearchOpts{StartKey: "A", Depth: 1})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, resultKeys(results))
}

func TestGraphTraversalRelationTypeFilter(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"A", "B", "C"} {
		require.NoError(t, db.Save(k, "node "+k, "", 0))
	}
	require.NoError(t, db.Link("A", "B", "next", 1.0, nil))
	require.NoError(t, db.Link("A", "C", "see-also", 1.0, nil))

	results, err := Search(db, "graph_traversal", "", SearchOpts{
		StartKey: "A", Depth: 2, RelationType: "next",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, resultKeys(results))
}

func TestGraphTraversalFallsBackToKeyword(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("note", "remember the milk", "", 0))

	// No start key: same query goes through keyword instead.
	results, err := Search(db, "graph_traversal", "milk", SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, resultKeys(results))
}

func TestTemporalStrategy(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("old", "match", "", 9))
	require.NoError(t, db.Save("new", "match", "", 1))
	db.Exec("UPDATE memories SET timestamp = '2026-01-01T00:00:00.000000000Z' WHERE key = 'old'")
	db.Exec("UPDATE memories SET timestamp = '2026-02-01T00:00:00.000000000Z' WHERE key = 'new'")

	// Strictly timestamp ordered; priority is ignored.
	results, err := Search(db, "temporal", "match", SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"new", "old"}, resultKeys(results))
}

func TestPriorityStrategy(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("hot", "match", "", 9))
	require.NoError(t, db.Save("warm-stale", "match", "", 3))
	require.NoError(t, db.Save("warm-fresh", "match", "", 3))
	db.Exec("UPDATE memories SET lastAccessed = '2026-01-01T00:00:00.000000000Z' WHERE key = 'warm-stale'")
	db.Exec("UPDATE memories SET lastAccessed = '2026-02-01T00:00:00.000000000Z' WHERE key = 'warm-fresh'")

	results, err := Search(db, "priority", "match", SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"hot", "warm-fresh", "warm-stale"}, resultKeys(results))
}

func TestContextAwareScoring(t *testing.T) {
	db := testDB(t)
	// Key hit + value hit: 3 + 2 = 5.
	require.NoError(t, db.Save("docker-setup", "docker compose config", "", 0))
	// Value hit only, boosted by priority: 2 + 4*0.5 = 4.
	require.NoError(t, db.Save("infra", "docker hosts list", "", 4))
	// Value hit only: 2.
	require.NoError(t, db.Save("notes", "uses docker sometimes", "", 0))

	results, err := Search(db, "context_aware", "docker", SearchOpts{})
	require.NoError(t, err)
	require.Equal(t, []string{"docker-setup", "infra", "notes"}, resultKeys(results))
	assert.Equal(t, 5.0, results[0].Score)
	assert.Equal(t, 4.0, results[1].Score)
	assert.Equal(t, 2.0, results[2].Score)
}

func TestUnknownStrategyFallsBack(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("note", "find me", "", 0))

	results, err := Search(db, "semantic_hologram", "find", SearchOpts{})
	require.NoError(t, err)
	assert.Equal(t, []string{"note"}, resultKeys(results))
}
