package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/nikbrunner/bmtag/internal/organize"
	"github.com/nikbrunner/bmtag/internal/search"
)

const defaultSearchLimit = 20

// OrganizeRequest is the body of POST /api/organize-bookmarks.
type OrganizeRequest struct {
	Bookmarks []model.BookmarkRecord `json:"bookmarks"`
}

// OrganizeResponse is the reply of POST /api/organize-bookmarks.
type OrganizeResponse struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Details organize.Report `json:"details"`
}

// ErrorResponse is returned for any failed request.
type ErrorResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// AnalyzeBookmarks collects every bookmark and enriches the newest ones.
func (s *Server) AnalyzeBookmarks(w http.ResponseWriter, r *http.Request) {
	analysis, err := s.analyzer.Analyze(r.Context())
	if err != nil {
		s.logger.Error("analyze bookmarks failed", "error", err)
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("analyze bookmarks: %v", err))
		return
	}

	writeJSON(w, http.StatusOK, analysis)
}

// OrganizeBookmarks moves tagged bookmarks into the organized folder of every
// writable browser store.
func (s *Server) OrganizeBookmarks(w http.ResponseWriter, r *http.Request) {
	var req OrganizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("organize bookmarks: invalid request body: %v", err))
		return
	}

	report := s.organizer.Organize(r.Context(), req.Bookmarks)

	writeJSON(w, http.StatusOK, OrganizeResponse{
		Status:  "success",
		Message: "Bookmarks organized. Restart your browser to see the changes.",
		Details: report,
	})
}

// Search fuzzy-matches collected bookmark titles against ?q=.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		writeError(w, http.StatusBadRequest, "missing query parameter q")
		return
	}

	limit := defaultSearchLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	records, _, err := s.analyzer.Collect(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("collect bookmarks: %v", err))
		return
	}

	results := search.FuzzySearchBookmarks(records, query)
	if len(results) > limit {
		results = results[:limit]
	}
	if results == nil {
		results = []search.SearchResult{}
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"query":   query,
		"results": results,
	})
}

// Health reports that the server is up.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, ErrorResponse{Status: "error", Message: message})
}
