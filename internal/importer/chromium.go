package importer

import (
	"encoding/json"
	"io"

	"github.com/nikbrunner/bmtag/internal/model"
)

// ParseChromium reads a Chrome/Edge `Bookmarks` JSON document and returns a
// record for every url node under any root.
func ParseChromium(r io.Reader, browser model.Browser) ([]model.BookmarkRecord, error) {
	var file model.BookmarkFile
	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, err
	}

	var records []model.BookmarkRecord
	for _, tree := range file.Roots.Trees() {
		tree.Walk(func(n *model.Node) {
			if n.Kind != model.KindURL {
				return
			}
			records = append(records, model.BookmarkRecord{
				Title:     n.Name,
				URL:       n.URL,
				DateAdded: n.DateAdded.Time(),
				Browser:   browser,
			})
		})
	}
	return records, nil
}
