package importer

import (
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nikbrunner/bmtag/internal/model"
	"golang.org/x/net/html"
)

// ParseHTMLBookmarks parses a Netscape bookmark HTML export into records.
// Folder structure is flattened; every <A HREF> becomes one record.
func ParseHTMLBookmarks(r io.Reader) ([]model.BookmarkRecord, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}

	var records []model.BookmarkRecord

	var parse func(*html.Node)
	parse = func(n *html.Node) {
		if n.Type == html.ElementNode && strings.ToLower(n.Data) == "a" {
			href := getAttr(n, "href")
			if href == "" {
				// Skip bookmarks without URL
				return
			}

			title := getTextContent(n)
			if title == "" {
				title = href // fallback to URL as title
			}

			// Parse ADD_DATE timestamp (seconds since the Unix epoch)
			addedAt := time.Now()
			if addDate := getAttr(n, "add_date"); addDate != "" {
				if ts, err := strconv.ParseInt(addDate, 10, 64); err == nil {
					addedAt = time.Unix(ts, 0)
				}
			}

			records = append(records, model.BookmarkRecord{
				Title:     title,
				URL:       href,
				DateAdded: addedAt,
				Browser:   model.Imported,
			})
			return // Don't recurse into A
		}

		for c := n.FirstChild; c != nil; c = c.NextSibling {
			parse(c)
		}
	}

	parse(doc)
	return records, nil
}

// getTextContent returns the text content of a node.
func getTextContent(n *html.Node) string {
	var text strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			text.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(text.String())
}

// getAttr returns the value of an attribute, case-insensitive.
func getAttr(n *html.Node, key string) string {
	key = strings.ToLower(key)
	for _, attr := range n.Attr {
		if strings.ToLower(attr.Key) == key {
			return attr.Val
		}
	}
	return ""
}
