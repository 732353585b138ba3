package engine

import (
	"sort"
	"strings"

	"github.com/voidlight/mnemo/internal/store"
)

// SearchResult pairs an item with its relevance score. Score is only
// populated by the context_aware strategy; the others rank by column
// ordering alone.
type SearchResult struct {
	Item  store.Item `json:"item"`
	Score float64    `json:"score,omitempty"`
}

// SearchOpts controls strategy search behavior.
type SearchOpts struct {
	Limit        int    // max results (default 20)
	Category     string // filter by category (empty = all)
	StartKey     string // graph_traversal start
	Depth        int    // graph_traversal hops (default 2)
	RelationType string // graph_traversal edge filter
}

func (o SearchOpts) limit() int {
	if o.Limit <= 0 {
		return 20
	}
	return o.Limit
}

// Search dispatches a query to a named strategy. Unknown strategy
// names fall back to the store's plain substring search. An empty
// query matches every row; that is inherited substring semantics,
// documented rather than fixed.
func Search(db *store.DB, strategy, query string, opts SearchOpts) ([]SearchResult, error) {
	switch strategy {
	case "keyword":
		return keywordSearch(db, query, opts)
	case "graph_traversal":
		return graphSearch(db, query, opts)
	case "temporal":
		return temporalSearch(db, query, opts)
	case "priority":
		return prioritySearch(db, query, opts)
	case "context_aware":
		return contextAwareSearch(db, query, opts)
	default:
		items, err := db.Search(query)
		if err != nil {
			return nil, err
		}
		return wrap(filterCategory(items, opts.Category), opts.limit()), nil
	}
}

// keywordSearch: substring match, priority DESC then timestamp DESC
// (the store's natural search order).
func keywordSearch(db *store.DB, query string, opts SearchOpts) ([]SearchResult, error) {
	items, err := db.Search(query)
	if err != nil {
		return nil, err
	}
	return wrap(filterCategory(items, opts.Category), opts.limit()), nil
}

// graphSearch delegates to RelatedMemories from opts.StartKey. With
// no start key it falls back to keyword search on the same query —
// a fallback, not an error path.
func graphSearch(db *store.DB, query string, opts SearchOpts) ([]SearchResult, error) {
	if opts.StartKey == "" {
		return keywordSearch(db, query, opts)
	}
	depth := opts.Depth
	if depth <= 0 {
		depth = 2
	}
	items, err := RelatedMemories(db, opts.StartKey, depth, opts.RelationType)
	if err != nil {
		return nil, err
	}
	return wrap(filterCategory(items, opts.Category), opts.limit()), nil
}

// temporalSearch: substring match ordered strictly by timestamp DESC.
func temporalSearch(db *store.DB, query string, opts SearchOpts) ([]SearchResult, error) {
	items, err := db.Search(query)
	if err != nil {
		return nil, err
	}
	items = filterCategory(items, opts.Category)
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Timestamp > items[j].Timestamp
	})
	return wrap(items, opts.limit()), nil
}

// prioritySearch: substring match ordered by priority DESC then
// lastAccessed DESC.
func prioritySearch(db *store.DB, query string, opts SearchOpts) ([]SearchResult, error) {
	items, err := db.Search(query)
	if err != nil {
		return nil, err
	}
	items = filterCategory(items, opts.Category)
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority > items[j].Priority
		}
		return items[i].LastAccessed > items[j].LastAccessed
	})
	return wrap(items, opts.limit()), nil
}

// contextAwareSearch scores each match:
// 3 for a key hit, 2 for a value hit, plus priority * 0.5,
// ordered by score DESC then lastAccessed DESC. Matching is
// case-insensitive to stay consistent with the store's LIKE search.
func contextAwareSearch(db *store.DB, query string, opts SearchOpts) ([]SearchResult, error) {
	items, err := db.Search(query)
	if err != nil {
		return nil, err
	}
	items = filterCategory(items, opts.Category)

	q := strings.ToLower(query)
	results := make([]SearchResult, 0, len(items))
	for _, it := range items {
		score := 0.0
		if strings.Contains(strings.ToLower(it.Key), q) {
			score += 3
		}
		if strings.Contains(strings.ToLower(it.Value), q) {
			score += 2
		}
		score += float64(it.Priority) * 0.5
		results = append(results, SearchResult{Item: it, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Item.LastAccessed > results[j].Item.LastAccessed
	})

	limit := opts.limit()
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func filterCategory(items []store.Item, category string) []store.Item {
	if category == "" {
		return items
	}
	var out []store.Item
	for _, it := range items {
		if it.Category == category {
			out = append(out, it)
		}
	}
	return out
}

func wrap(items []store.Item, limit int) []SearchResult {
	if len(items) > limit {
		items = items[:limit]
	}
	results := make([]SearchResult, len(items))
	for i, it := range items {
		results[i] = SearchResult{Item: it}
	}
	return results
}
