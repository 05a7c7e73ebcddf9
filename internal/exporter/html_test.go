package exporter

import (
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/bmtag/internal/importer"
	"github.com/nikbrunner/bmtag/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
	"gotest.tools/v3/golden"
)

var added = model.ChromeTimeFromTime(time.Unix(1700000000, 0))

func sampleFile() *model.BookmarkFile {
	return &model.BookmarkFile{
		Version: 1,
		Roots: model.Roots{
			BookmarkBar: &model.Node{
				Kind: model.KindFolder, ID: "1", Name: "Bookmarks bar", DateAdded: added,
				Children: []*model.Node{
					{Kind: model.KindURL, ID: "2", Name: "GitHub", URL: "https://github.com", DateAdded: added},
					{Kind: model.KindFolder, ID: "3", Name: "Dev <tools>", Children: []*model.Node{
						{Kind: model.KindURL, ID: "4", Name: "Search & more", URL: "https://example.com?a=1&b=2"},
					}},
				},
			},
			Other: &model.Node{Kind: model.KindFolder, ID: "5", Name: "Other bookmarks"},
		},
	}
}

func TestExportHTML_Golden(t *testing.T) {
	golden.Assert(t, ExportHTML(sampleFile()), "golden/bookmarks.golden")
}

func TestExportHTML_EmptyFile(t *testing.T) {
	html := ExportHTML(&model.BookmarkFile{})

	// Should have basic structure even when empty
	assert.Assert(t, is.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Assert(t, is.Contains(html, "<TITLE>Bookmarks</TITLE>"))
	assert.Assert(t, !strings.Contains(html, "<DT>"))
}

func TestExportHTML_ImportsBack(t *testing.T) {
	records, err := importer.ParseHTMLBookmarks(strings.NewReader(ExportHTML(sampleFile())))
	assert.NilError(t, err)

	assert.Assert(t, is.Len(records, 2))
	assert.Equal(t, records[0].Title, "GitHub")
	assert.Assert(t, records[0].DateAdded.Equal(time.Unix(1700000000, 0)))
	assert.Equal(t, records[1].Title, "Search & more")
	assert.Equal(t, records[1].URL, "https://example.com?a=1&b=2")
}
