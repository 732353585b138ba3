package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// Registry maps resolved project paths to open database handles.
// Callers that resolve to the same path share one handle; distinct
// paths get independent handles. This replaces the reference design's
// default-path singleton with one handle per resolved path.
type Registry struct {
	mu      sync.Mutex
	handles map[string]*DB
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{handles: make(map[string]*DB)}
}

// Resolve returns the open handle for a project directory, opening it
// on first use. An empty project means the current working directory.
func (r *Registry) Resolve(project string) (*DB, error) {
	if project == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve default project: %w", err)
		}
		project = wd
	}
	abs, err := filepath.Abs(project)
	if err != nil {
		return nil, fmt.Errorf("resolve project %q: %w", project, err)
	}
	abs = filepath.Clean(abs)

	r.mu.Lock()
	defer r.mu.Unlock()

	if db, ok := r.handles[abs]; ok {
		return db, nil
	}
	db, err := Open(abs)
	if err != nil {
		return nil, err
	}
	r.handles[abs] = db
	return db, nil
}

// Close closes every open handle. Errors after the first are dropped.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var first error
	for path, db := range r.handles {
		if err := db.Close(); err != nil && first == nil {
			first = fmt.Errorf("close %s: %w", path, err)
		}
		delete(r.handles, path)
	}
	return first
}
