package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/voidlight/mnemo/internal/store"
)

func testDB(t *testing.T) *store.DB {
	t.Helper()
	db, err := store.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

// chainDB builds A -> B -> C -> D plus an isolated node X.
func chainDB(t *testing.T) *store.DB {
	t.Helper()
	db := testDB(t)
	for _, k := range []string{"A", "B", "C", "D", "X"} {
		require.NoError(t, db.Save(k, "node "+k, "", 0))
	}
	require.NoError(t, db.Link("A", "B", "next", 1.0, nil))
	require.NoError(t, db.Link("B", "C", "next", 1.0, nil))
	require.NoError(t, db.Link("C", "D", "next", 1.0, nil))
	return db
}

func keys(items []store.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Key
	}
	return out
}

func TestRelatedMemoriesDepthBound(t *testing.T) {
	db := chainDB(t)

	one, err := RelatedMemories(db, "A", 1, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B"}, keys(one))

	two, err := RelatedMemories(db, "A", 2, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B", "C"}, keys(two))
}

func TestRelatedMemoriesExcludesStart(t *testing.T) {
	db := chainDB(t)

	items, err := RelatedMemories(db, "B", 3, "")
	require.NoError(t, err)
	assert.NotContains(t, keys(items), "B")
	// Traversal is undirected: A is one hop back from B.
	assert.ElementsMatch(t, []string{"A", "C", "D"}, keys(items))
}

func TestRelatedMemoriesTypeFilterCutsBranches(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"A", "B", "C"} {
		require.NoError(t, db.Save(k, "node "+k, "", 0))
	}
	require.NoError(t, db.Link("A", "B", "next", 1.0, nil))
	require.NoError(t, db.Link("B", "C", "other", 1.0, nil))

	// The type filter applies at every hop, so C stays unreachable
	// even though a mixed-type path exists.
	items, err := RelatedMemories(db, "A", 5, "next")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B"}, keys(items))
}

func TestRelatedMemoriesVisitedOnce(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"A", "B", "C"} {
		require.NoError(t, db.Save(k, "node "+k, "", 0))
	}
	// Cycle A -> B -> C -> A.
	require.NoError(t, db.Link("A", "B", "next", 1.0, nil))
	require.NoError(t, db.Link("B", "C", "next", 1.0, nil))
	require.NoError(t, db.Link("C", "A", "next", 1.0, nil))

	items, err := RelatedMemories(db, "A", 10, "")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"B", "C"}, keys(items))
}

func TestFindPathIdentity(t *testing.T) {
	db := chainDB(t)

	path, err := FindPath(db, "A", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, path)
}

func TestFindPathChain(t *testing.T) {
	db := chainDB(t)

	path, err := FindPath(db, "A", "D")
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, path)
}

func TestFindPathUndirected(t *testing.T) {
	db := chainDB(t)

	// Edges point A -> D; the search still walks them backwards.
	path, err := FindPath(db, "D", "A")
	require.NoError(t, err)
	assert.Equal(t, []string{"D", "C", "B", "A"}, path)
}

func TestFindPathAbsent(t *testing.T) {
	db := chainDB(t)

	path, err := FindPath(db, "A", "X")
	require.NoError(t, err)
	assert.Nil(t, path)
}

func TestMemoryGraphKeyed(t *testing.T) {
	db := chainDB(t)

	g, err := MemoryGraph(db, "A", 2)
	require.NoError(t, err)

	assert.ElementsMatch(t, []string{"A", "B", "C"}, keys(g.Nodes))
	require.Len(t, g.Edges, 2)

	// One cluster holding every node in the view.
	require.Len(t, g.Clusters, 1)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, g.Clusters[0])
}

func TestMemoryGraphEdgeDedup(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("A", "a", "", 0))
	require.NoError(t, db.Save("B", "b", "", 0))
	require.NoError(t, db.Link("A", "B", "next", 1.0, nil))

	// The A->B edge is touched from both endpoints; it must appear once.
	g, err := MemoryGraph(db, "A", 3)
	require.NoError(t, err)
	assert.Len(t, g.Edges, 1)
}

func TestMemoryGraphWholeStore(t *testing.T) {
	db := chainDB(t)

	g, err := MemoryGraph(db, "", 0)
	require.NoError(t, err)

	// Every item becomes a node, including the isolated one.
	assert.ElementsMatch(t, []string{"A", "B", "C", "D", "X"}, keys(g.Nodes))
	assert.Len(t, g.Edges, 3)

	// The chain clusters together; X forms no cluster.
	require.Len(t, g.Clusters, 1)
	assert.ElementsMatch(t, []string{"A", "B", "C", "D"}, g.Clusters[0])
}

func TestMemoryGraphWholeStoreSkipsDanglingSources(t *testing.T) {
	db := testDB(t)
	require.NoError(t, db.Save("real", "v", "", 0))
	require.NoError(t, db.Link("ghost-src", "ghost-dst", "t", 1.0, nil))
	require.NoError(t, db.Link("real", "ghost-dst", "t", 1.0, nil))

	g, err := MemoryGraph(db, "", 0)
	require.NoError(t, err)

	// Edges are collected per stored node, so a relation whose source
	// was never saved stays out of the view. A stored source pointing
	// at an absent target is still that node's outgoing edge.
	require.Len(t, g.Edges, 1)
	assert.Equal(t, "real", g.Edges[0].SourceKey)
	assert.Equal(t, "ghost-dst", g.Edges[0].TargetKey)
}

func TestClustersPairAndIsolated(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"p1", "p2", "solo"} {
		require.NoError(t, db.Save(k, "v", "", 0))
	}
	require.NoError(t, db.Link("p1", "p2", "pairs", 1.0, nil))

	g, err := MemoryGraph(db, "", 0)
	require.NoError(t, err)

	require.Len(t, g.Clusters, 1)
	assert.ElementsMatch(t, []string{"p1", "p2"}, g.Clusters[0])
}

func TestClustersUndirected(t *testing.T) {
	db := testDB(t)
	for _, k := range []string{"a", "b", "c"} {
		require.NoError(t, db.Save(k, "v", "", 0))
	}
	// Opposing directions still merge into one component.
	require.NoError(t, db.Link("a", "b", "t", 1.0, nil))
	require.NoError(t, db.Link("c", "b", "t", 1.0, nil))

	g, err := MemoryGraph(db, "", 0)
	require.NoError(t, err)
	require.Len(t, g.Clusters, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, g.Clusters[0])
}
