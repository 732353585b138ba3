package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/voidlight/mnemo/internal/engine"
	"github.com/voidlight/mnemo/internal/store"
)

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project  string `json:"project"`
		Key      string `json:"key"`
		Value    string `json:"value"`
		Category string `json:"category"`
		Priority int    `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Key == "" {
		writeError(w, http.StatusBadRequest, "key required")
		return
	}

	db := s.db(w, req.Project)
	if db == nil {
		return
	}
	if err := db.Save(req.Key, req.Value, req.Category, req.Priority); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "saved", "key": req.Key})
}

func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	db := s.db(w, r.URL.Query().Get("project"))
	if db == nil {
		return
	}
	item, err := db.Recall(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if item == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project string `json:"project"`
		Value   string `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	db := s.db(w, req.Project)
	if db == nil {
		return
	}
	updated, err := db.Update(chi.URLParam(r, "key"), req.Value)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	db := s.db(w, r.URL.Query().Get("project"))
	if db == nil {
		return
	}
	deleted, err := db.Delete(chi.URLParam(r, "key"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"deleted": deleted})
}

func (s *Server) handleSetPriority(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project  string `json:"project"`
		Priority int    `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	db := s.db(w, req.Project)
	if db == nil {
		return
	}
	updated, err := db.SetPriority(chi.URLParam(r, "key"), req.Priority)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"updated": updated})
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}
	var items []store.Item
	var err error
	if p := q.Get("priority"); p != "" {
		priority, perr := strconv.Atoi(p)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "priority must be an integer")
			return
		}
		items, err = db.ByPriority(priority)
	} else {
		items, err = db.List(q.Get("category"))
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = s.search.DefaultLimit
	}
	depth, _ := strconv.Atoi(q.Get("depth"))
	if depth <= 0 {
		depth = s.search.DefaultDepth
	}
	results, err := engine.Search(db, q.Get("strategy"), q.Get("q"), engine.SearchOpts{
		Limit:        limit,
		Category:     q.Get("category"),
		StartKey:     q.Get("start_key"),
		Depth:        depth,
		RelationType: q.Get("relation_type"),
	})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": results})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	db := s.db(w, r.URL.Query().Get("project"))
	if db == nil {
		return
	}
	stats, err := db.GetStats()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (s *Server) handleTimeline(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	items, err := db.Timeline(q.Get("start"), q.Get("end"), limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleLink(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Project      string          `json:"project"`
		Source       string          `json:"source"`
		Target       string          `json:"target"`
		RelationType string          `json:"relationType"`
		Strength     *float64        `json:"strength"`
		Metadata     json.RawMessage `json:"metadata"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if req.Source == "" || req.Target == "" || req.RelationType == "" {
		writeError(w, http.StatusBadRequest, "source, target and relationType required")
		return
	}
	strength := 1.0
	if req.Strength != nil {
		strength = *req.Strength
	}

	db := s.db(w, req.Project)
	if db == nil {
		return
	}
	// Storage failures surface as linked=false, per the engine's
	// boolean contract for this operation.
	linked := db.Link(req.Source, req.Target, req.RelationType, strength, req.Metadata) == nil
	writeJSON(w, http.StatusOK, map[string]bool{"linked": linked})
}

func (s *Server) handleUnlink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}
	removed, err := db.Unlink(q.Get("source"), q.Get("target"), q.Get("type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"removed": removed})
}

func (s *Server) handleRelations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}
	direction := store.Direction(q.Get("direction"))
	if direction == "" {
		direction = store.Both
	}
	rels, err := db.RelationsFor(chi.URLParam(r, "key"), direction)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"relations": rels})
}

func (s *Server) handleRelated(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}
	depth, _ := strconv.Atoi(q.Get("depth"))
	items, err := engine.RelatedMemories(db, chi.URLParam(r, "key"), depth, q.Get("type"))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}
	depth, _ := strconv.Atoi(q.Get("depth"))
	graph, err := engine.MemoryGraph(db, q.Get("key"), depth)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, graph)
}

func (s *Server) handlePath(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	db := s.db(w, q.Get("project"))
	if db == nil {
		return
	}
	source, target := q.Get("source"), q.Get("target")
	if source == "" || target == "" {
		writeError(w, http.StatusBadRequest, "source and target required")
		return
	}
	path, err := engine.FindPath(db, source, target)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"path": path, "found": path != nil})
}
