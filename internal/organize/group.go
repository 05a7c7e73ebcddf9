package organize

import "github.com/nikbrunner/bmtag/internal/model"

// TagGroup is the set of records sharing one tag.
type TagGroup struct {
	Tag     string
	Records []model.BookmarkRecord
}

// URLSet is the set of bookmark URLs to relocate into the organized folder.
type URLSet map[string]struct{}

// Add inserts url into the set.
func (s URLSet) Add(url string) {
	s[url] = struct{}{}
}

// Has reports whether url is in the set.
func (s URLSet) Has(url string) bool {
	_, ok := s[url]
	return ok
}

// Group partitions records by tag, in first-seen tag order, and collects
// the URLs of every grouped record.
//
// Records without a usable tag (missing, empty or the "error" sentinel) and
// records without a URL are skipped. When a record carries several labels
// only the first one is used.
func Group(records []model.BookmarkRecord) ([]TagGroup, URLSet) {
	var groups []TagGroup
	index := make(map[string]int)
	urls := make(URLSet)

	for _, r := range records {
		if !r.Tags.Tagged() || r.URL == "" {
			continue
		}
		tag := r.Tags.First()

		i, ok := index[tag]
		if !ok {
			i = len(groups)
			index[tag] = i
			groups = append(groups, TagGroup{Tag: tag})
		}
		groups[i].Records = append(groups[i].Records, r)
		urls.Add(r.URL)
	}

	return groups, urls
}
