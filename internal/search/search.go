package search

import (
	"github.com/nikbrunner/bmtag/internal/model"
	"github.com/sahilm/fuzzy"
)

// SearchResult represents a fuzzy search match.
type SearchResult struct {
	Bookmark       model.BookmarkRecord `json:"bookmark"`
	MatchedIndexes []int                `json:"matched_indexes"`
	Score          int                  `json:"score"`
}

// recordTitles implements fuzzy.Source for a record slice. Untitled records
// are matched on their URL.
type recordTitles []model.BookmarkRecord

func (rt recordTitles) String(i int) string {
	if rt[i].Title == "" {
		return rt[i].URL
	}
	return rt[i].Title
}

func (rt recordTitles) Len() int {
	return len(rt)
}

// FuzzySearchBookmarks searches records by title using fuzzy matching.
// Returns results sorted by match score (best first).
func FuzzySearchBookmarks(records []model.BookmarkRecord, query string) []SearchResult {
	if query == "" {
		return nil
	}

	source := recordTitles(records)
	matches := fuzzy.FindFrom(query, source)

	results := make([]SearchResult, len(matches))
	for i, m := range matches {
		results[i] = SearchResult{
			Bookmark:       source[m.Index],
			MatchedIndexes: m.MatchedIndexes,
			Score:          m.Score,
		}
	}

	return results
}
