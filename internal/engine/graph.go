// Package engine implements graph traversal and retrieval over a
// project memory store. The store owns the SQL; the engine owns the
// algorithms.
package engine

import (
	"github.com/voidlight/mnemo/internal/store"
)

// Graph is an ephemeral view over a subset of the store: the items
// visited, the edges among them, and the connected components of
// size >= 2 within that view. It is computed per query and never
// persisted.
type Graph struct {
	Nodes    []store.Item     `json:"nodes"`
	Edges    []store.Relation `json:"edges"`
	Clusters [][]string       `json:"clusters"`
}

// RelatedMemories expands breadth-first from key up to depth hops and
// returns the items reached, excluding the start key. Each key is
// visited at most once across the whole traversal. When relationType
// is non-empty only edges of that type are followed at every hop, so
// a type filter can cut off a branch that a mixed-type path would
// have reached; that is the intended semantics.
func RelatedMemories(db *store.DB, key string, depth int, relationType string) ([]store.Item, error) {
	if depth <= 0 {
		depth = 1
	}

	visited := map[string]bool{key: true}
	frontier := []string{key}
	var order []string

	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, k := range frontier {
			rels, err := db.RelationsFor(k, store.Both)
			if err != nil {
				return nil, err
			}
			for _, r := range rels {
				if relationType != "" && r.RelationType != relationType {
					continue
				}
				neighbor := r.TargetKey
				if neighbor == k {
					neighbor = r.SourceKey
				}
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
				order = append(order, neighbor)
			}
		}
		frontier = next
	}

	var items []store.Item
	for _, k := range order {
		it, err := db.Get(k)
		if err != nil {
			return nil, err
		}
		if it != nil {
			items = append(items, *it)
		}
	}
	return items, nil
}

// MemoryGraph builds a graph view. With a key it is a level-bounded
// BFS from that key, inclusive of the key itself, collecting every
// edge touched while expanding (deduplicated by the source/target/type
// triple). With an empty key it is the whole-store view: every item
// becomes a node but only outgoing edges are collected, so a node
// whose relations are all incoming exposes no edges. The asymmetry is
// preserved deliberately for compatibility with existing consumers.
func MemoryGraph(db *store.DB, key string, depth int) (*Graph, error) {
	if key == "" {
		return wholeStoreGraph(db)
	}
	if depth <= 0 {
		depth = 2
	}

	g := &Graph{}
	seenEdge := make(map[edgeKey]bool)
	visited := map[string]bool{key: true}
	frontier := []string{key}
	nodeKeys := []string{key}

	for level := 0; level < depth && len(frontier) > 0; level++ {
		var next []string
		for _, k := range frontier {
			rels, err := db.RelationsFor(k, store.Both)
			if err != nil {
				return nil, err
			}
			for _, r := range rels {
				ek := edgeKey{r.SourceKey, r.TargetKey, r.RelationType}
				if !seenEdge[ek] {
					seenEdge[ek] = true
					g.Edges = append(g.Edges, r)
				}
				neighbor := r.TargetKey
				if neighbor == k {
					neighbor = r.SourceKey
				}
				if visited[neighbor] {
					continue
				}
				visited[neighbor] = true
				next = append(next, neighbor)
				nodeKeys = append(nodeKeys, neighbor)
			}
		}
		frontier = next
	}

	for _, k := range nodeKeys {
		it, err := db.Get(k)
		if err != nil {
			return nil, err
		}
		if it != nil {
			g.Nodes = append(g.Nodes, *it)
		}
	}

	g.Clusters = clusters(g.Nodes, g.Edges)
	return g, nil
}

func wholeStoreGraph(db *store.DB) (*Graph, error) {
	items, err := db.List("")
	if err != nil {
		return nil, err
	}

	g := &Graph{Nodes: items}
	seenEdge := make(map[edgeKey]bool)

	rels, err := db.AllOutgoing()
	if err != nil {
		return nil, err
	}
	for _, r := range rels {
		ek := edgeKey{r.SourceKey, r.TargetKey, r.RelationType}
		if seenEdge[ek] {
			continue
		}
		seenEdge[ek] = true
		g.Edges = append(g.Edges, r)
	}

	g.Clusters = clusters(g.Nodes, g.Edges)
	return g, nil
}

type edgeKey struct {
	source, target, relType string
}

// FindPath returns the unweighted shortest path from source to target,
// traversing relations as undirected. Strength never influences the
// result. source == target yields [source] without requiring an edge.
// No connecting path yields nil, which is an ordinary outcome rather
// than an error.
func FindPath(db *store.DB, source, target string) ([]string, error) {
	if source == target {
		return []string{source}, nil
	}

	parent := map[string]string{source: ""}
	frontier := []string{source}

	for len(frontier) > 0 {
		var next []string
		for _, k := range frontier {
			rels, err := db.RelationsFor(k, store.Both)
			if err != nil {
				return nil, err
			}
			for _, r := range rels {
				neighbor := r.TargetKey
				if neighbor == k {
					neighbor = r.SourceKey
				}
				if _, seen := parent[neighbor]; seen {
					continue
				}
				parent[neighbor] = k
				if neighbor == target {
					return buildPath(parent, source, target), nil
				}
				next = append(next, neighbor)
			}
		}
		frontier = next
	}
	return nil, nil
}

func buildPath(parent map[string]string, source, target string) []string {
	var reversed []string
	for k := target; k != ""; k = parent[k] {
		reversed = append(reversed, k)
		if k == source {
			break
		}
	}
	path := make([]string, 0, len(reversed))
	for i := len(reversed) - 1; i >= 0; i-- {
		path = append(path, reversed[i])
	}
	return path
}

// clusters partitions the view's nodes into connected components via
// union-find, treating every edge as undirected. Components with a
// single member are dropped.
func clusters(nodes []store.Item, edges []store.Relation) [][]string {
	ds := newDisjointSet()
	for _, n := range nodes {
		ds.add(n.Key)
	}
	for _, e := range edges {
		// Only union endpoints present in the view.
		if ds.contains(e.SourceKey) && ds.contains(e.TargetKey) {
			ds.union(e.SourceKey, e.TargetKey)
		}
	}

	groups := make(map[string][]string)
	for _, n := range nodes {
		root := ds.find(n.Key)
		groups[root] = append(groups[root], n.Key)
	}

	var out [][]string
	// Iterate nodes, not the map, so cluster order is deterministic.
	emitted := make(map[string]bool)
	for _, n := range nodes {
		root := ds.find(n.Key)
		if emitted[root] || len(groups[root]) < 2 {
			continue
		}
		emitted[root] = true
		out = append(out, groups[root])
	}
	return out
}

type disjointSet struct {
	parent map[string]string
	rank   map[string]int
}

func newDisjointSet() *disjointSet {
	return &disjointSet{parent: make(map[string]string), rank: make(map[string]int)}
}

func (ds *disjointSet) add(x string) {
	if _, ok := ds.parent[x]; !ok {
		ds.parent[x] = x
	}
}

func (ds *disjointSet) contains(x string) bool {
	_, ok := ds.parent[x]
	return ok
}

func (ds *disjointSet) find(x string) string {
	for ds.parent[x] != x {
		ds.parent[x] = ds.parent[ds.parent[x]]
		x = ds.parent[x]
	}
	return x
}

func (ds *disjointSet) union(a, b string) {
	ra, rb := ds.find(a), ds.find(b)
	if ra == rb {
		return
	}
	if ds.rank[ra] < ds.rank[rb] {
		ra, rb = rb, ra
	}
	ds.parent[rb] = ra
	if ds.rank[ra] == ds.rank[rb] {
		ds.rank[ra]++
	}
}
