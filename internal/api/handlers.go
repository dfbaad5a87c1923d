package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"symidx/internal/indexer"
	"symidx/internal/version"
)

// handleHealth handles GET /health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": version.Version,
		"index":   s.manager.State().String(),
	})
}

// handleStatus handles GET /api/v1/status. Responds in every lifecycle
// state, including before the first scan finishes.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	writeJSON(w, http.StatusOK, s.manager.Status())
}

// handleContext handles GET /api/v1/context?name=Symbol
func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	name := r.URL.Query().Get("name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAM", "Query parameter 'name' is required")
		return
	}

	ctx, err := s.manager.ContextForSymbol(name)
	if err != nil {
		if errors.Is(err, indexer.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "Index has not completed its first scan")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, ctx)
}

// handleSearch handles GET /api/v1/search?q=term&depth=1
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAM", "Query parameter 'q' is required")
		return
	}

	depth := 0
	if raw := r.URL.Query().Get("depth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "INVALID_PARAM", "Query parameter 'depth' must be a non-negative integer")
			return
		}
		depth = parsed
	}

	hits, err := s.manager.Search(query, depth)
	if err != nil {
		if errors.Is(err, indexer.ErrNotReady) {
			writeError(w, http.StatusServiceUnavailable, "NOT_READY", "Index has not completed its first scan")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":   query,
		"results": hits,
	})
}

// handleGraph handles GET /api/v1/graph?path=src/a.py, returning the
// file's import relationships
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	path := r.URL.Query().Get("path")
	if path == "" {
		writeError(w, http.StatusBadRequest, "MISSING_PARAM", "Query parameter 'path' is required")
		return
	}
	if !s.manager.Ready() {
		writeError(w, http.StatusServiceUnavailable, "NOT_READY", "Index has not completed its first scan")
		return
	}

	fg, ok := s.manager.Graph(path)
	if !ok {
		writeError(w, http.StatusNotFound, "NOT_FOUND", "File is not in the index")
		return
	}
	writeJSON(w, http.StatusOK, fg)
}

// handleRefresh handles POST /api/v1/refresh. The rescan runs in the
// background; the response only acknowledges scheduling.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	// The request context dies with the response; the rescan outlives it
	s.manager.ScheduleFullScan(context.Background())
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"status": "scheduled",
	})
}

// hookRequest is the payload tooling posts after changing files
type hookRequest struct {
	ChangedPaths []string `json:"changed_paths"`
}

// handleHook handles POST /api/v1/hook. The update is synchronous: when
// the response arrives the index already reflects the changed paths.
func (s *Server) handleHook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed")
		return
	}

	var req hookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Request body must be JSON with a changed_paths array")
		return
	}
	if len(req.ChangedPaths) == 0 {
		writeError(w, http.StatusBadRequest, "MISSING_PARAM", "changed_paths must not be empty")
		return
	}

	result, err := s.manager.UpdateFiles(r.Context(), req.ChangedPaths)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "UPDATE_FAILED", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"updated_files": result.UpdatedFiles,
		"failed_files":  result.FailedFiles,
		"removed_files": result.RemovedFiles,
		"skipped_files": result.SkippedFiles,
		"duration_ms":   result.Duration.Milliseconds(),
	})
}
