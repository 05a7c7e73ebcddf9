package importer

import (
	"io"
	"time"

	"github.com/nikbrunner/bmtag/internal/model"
	"howett.net/plist"
)

const safariLeaf = "WebBookmarkTypeLeaf"

// safariNode mirrors the parts of Safari's Bookmarks.plist bmtag reads.
type safariNode struct {
	Type          string            `plist:"WebBookmarkType"`
	Title         string            `plist:"Title"`
	URLString     string            `plist:"URLString"`
	URIDictionary map[string]string `plist:"URIDictionary"`
	DateAdded     *time.Time        `plist:"DateAdded"`
	Children      []safariNode      `plist:"Children"`
}

// ParseSafari reads Safari's Bookmarks.plist (binary or XML). Leaves without
// a DateAdded get now.
func ParseSafari(r io.ReadSeeker, now time.Time) ([]model.BookmarkRecord, error) {
	var root safariNode
	if err := plist.NewDecoder(r).Decode(&root); err != nil {
		return nil, err
	}

	var records []model.BookmarkRecord
	var walk func(n safariNode)
	walk = func(n safariNode) {
		if n.Type == safariLeaf && n.URLString != "" {
			title := n.URIDictionary["title"]
			if title == "" {
				title = n.Title
			}
			added := now
			if n.DateAdded != nil {
				added = *n.DateAdded
			}
			records = append(records, model.BookmarkRecord{
				Title:     title,
				URL:       n.URLString,
				DateAdded: added,
				Browser:   model.Safari,
			})
		}
		for _, child := range n.Children {
			walk(child)
		}
	}
	walk(root)

	return records, nil
}
