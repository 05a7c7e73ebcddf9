package model_test

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/nikbrunner/bmtag/internal/model"
	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"
)

func TestLabels_Unmarshal(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		first  string
		tagged bool
	}{
		{name: "single string", input: `"读书"`, first: "读书", tagged: true},
		{name: "list uses first", input: `["旅游", "美食"]`, first: "旅游", tagged: true},
		{name: "sentinel string", input: `"error"`, first: "error", tagged: false},
		{name: "sentinel list", input: `["error"]`, first: "error", tagged: false},
		{name: "empty string", input: `""`, first: "", tagged: false},
		{name: "empty list", input: `[]`, first: "", tagged: false},
		{name: "null", input: `null`, first: "", tagged: false},
		{name: "number", input: `42`, first: "", tagged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.Labels
			assert.NilError(t, json.Unmarshal([]byte(tt.input), &got))
			assert.Equal(t, got.First(), tt.first)
			assert.Equal(t, got.Tagged(), tt.tagged)
		})
	}
}

func TestLabels_MarshalSingleAsString(t *testing.T) {
	data, err := json.Marshal(model.Labels{"读书"})
	assert.NilError(t, err)
	assert.Equal(t, string(data), `"读书"`)

	data, err = json.Marshal(model.Labels{"a", "b"})
	assert.NilError(t, err)
	assert.Equal(t, string(data), `["a","b"]`)
}

func TestBookmarkRecord_WireFormat(t *testing.T) {
	added := time.Date(2024, 3, 9, 14, 5, 6, 0, time.Local)
	r := model.BookmarkRecord{
		Title:       "Go",
		URL:         "https://go.dev",
		DateAdded:   added,
		Browser:     model.Chrome,
		PageContent: &model.PageContent{Content: "hello", Status: model.ContentSuccess},
		Tags:        model.Labels{"编程"},
	}

	data, err := json.Marshal(r)
	assert.NilError(t, err)

	var raw map[string]any
	assert.NilError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, raw["date_added"], "2024-03-09 14:05:06")
	assert.Equal(t, raw["browser"], "Chrome")
	assert.Equal(t, raw["ai_tags"], "编程")

	var back model.BookmarkRecord
	assert.NilError(t, json.Unmarshal(data, &back))
	assert.Assert(t, back.DateAdded.Equal(added))
	assert.Assert(t, back.PageContent.OK())
}

func TestBookmarkRecord_OmitsEnrichment(t *testing.T) {
	data, err := json.Marshal(model.BookmarkRecord{Title: "x", URL: "https://x.example"})
	assert.NilError(t, err)
	assert.Assert(t, !strings.Contains(string(data), "ai_tags"))
	assert.Assert(t, !strings.Contains(string(data), "page_content"))
}

func TestBookmarkRecord_UnmarshalOrganizeRequest(t *testing.T) {
	input := `{"url": "http://a", "title": "T1", "ai_tags": ["旅游", "美食"], "extra": 1, "date_added": "garbage"}`

	var r model.BookmarkRecord
	assert.NilError(t, json.Unmarshal([]byte(input), &r))
	assert.Equal(t, r.URL, "http://a")
	assert.Equal(t, r.Title, "T1")
	assert.Equal(t, r.Tags.First(), "旅游")
	assert.Assert(t, r.DateAdded.IsZero())
}

func TestChromeTime_Conversion(t *testing.T) {
	unixEpoch := time.Unix(0, 0)
	assert.Equal(t, model.ChromeTimeFromTime(unixEpoch), model.ChromeTime(11644473600000000))

	ts := time.Date(2024, 1, 2, 3, 4, 5, 6000, time.UTC)
	assert.Assert(t, model.ChromeTimeFromTime(ts).Time().Equal(ts))

	assert.Assert(t, model.ChromeTime(0).Time().IsZero())
}

func TestChromeTime_JSON(t *testing.T) {
	data, err := json.Marshal(model.ChromeTime(13350000000000000))
	assert.NilError(t, err)
	assert.Equal(t, string(data), `"13350000000000000"`)

	var c model.ChromeTime
	assert.NilError(t, json.Unmarshal([]byte(`"13350000000000001"`), &c))
	assert.Equal(t, c, model.ChromeTime(13350000000000001))

	assert.NilError(t, json.Unmarshal([]byte(`13350000000000002`), &c))
	assert.Equal(t, c, model.ChromeTime(13350000000000002))

	assert.Assert(t, json.Unmarshal([]byte(`"soon"`), &c) != nil)
}

func TestNode_JSONKeepsExtraAndShape(t *testing.T) {
	input := `{
		"type": "folder", "id": "1", "name": "Bar", "date_added": "1", "date_modified": "2",
		"custom": {"k": [1, 2]},
		"children": [
			{"type": "url", "id": "4", "name": "A & B", "url": "https://a.example/?x=<y>", "date_added": "3", "date_last_used": "9"}
		]
	}`

	var n model.Node
	assert.NilError(t, json.Unmarshal([]byte(input), &n))
	assert.Assert(t, n.IsFolder())
	assert.Equal(t, n.DateModified, model.ChromeTime(2))
	assert.Assert(t, is.Len(n.Children, 1))
	assert.Equal(t, n.Children[0].URL, "https://a.example/?x=<y>")
	assert.Assert(t, n.Children[0].Extra["date_last_used"] != nil)

	data, err := json.Marshal(&n)
	assert.NilError(t, err)

	var raw map[string]any
	assert.NilError(t, json.Unmarshal(data, &raw))
	assert.DeepEqual(t, raw["custom"], map[string]any{"k": []any{1.0, 2.0}})

	child := raw["children"].([]any)[0].(map[string]any)
	assert.Equal(t, child["date_last_used"], "9")
	_, hasChildren := child["children"]
	assert.Assert(t, !hasChildren, "url nodes must not carry children")
	_, hasModified := child["date_modified"]
	assert.Assert(t, !hasModified)
}

func TestNode_RejectsMalformedShape(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"null child", `{"type": "folder", "id": "1", "children": [null, {"type": "url", "id": "2", "url": "http://a"}]}`},
		{"nested null child", `{"type": "folder", "id": "1", "children": [{"type": "folder", "id": "2", "children": [null]}]}`},
		{"url with children", `{"type": "url", "id": "3", "url": "http://a", "children": []}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var n model.Node
			err := json.Unmarshal([]byte(tt.input), &n)
			assert.ErrorIs(t, err, model.ErrMalformedNode)
		})
	}
}

func TestNode_WalkSkipsNilChildren(t *testing.T) {
	root := &model.Node{Kind: model.KindFolder, ID: "1", Children: []*model.Node{nil, {Kind: model.KindURL, ID: "2", URL: "http://a"}}}

	var ids []string
	root.Walk(func(n *model.Node) { ids = append(ids, n.ID) })
	assert.DeepEqual(t, ids, []string{"1", "2"})
}

func TestNode_EmptyFolderWritesChildrenArray(t *testing.T) {
	n := &model.Node{Kind: model.KindFolder, ID: "9", Name: "empty"}

	data, err := json.Marshal(n)
	assert.NilError(t, err)
	assert.Assert(t, is.Contains(string(data), `"children":[]`))
}

func TestNode_IDAllocation(t *testing.T) {
	now := time.Now()
	bar := &model.Node{Kind: model.KindFolder, ID: "1", Children: []*model.Node{{Kind: model.KindURL, ID: "7"}}}

	organized := bar.AppendFolder(bar.NextTopLevelID(), "AI整理", now)
	assert.Equal(t, organized.ID, "2")
	assert.Assert(t, organized.GUID != "")

	tag := organized.AppendFolder(organized.NextChildID(), "读书", now)
	assert.Equal(t, tag.ID, "2-0")

	first := tag.AppendURL("T1", "http://a", now)
	second := tag.AppendURL("T2", "http://b", now)
	assert.Equal(t, first.ID, "2-0-0")
	assert.Equal(t, second.ID, "2-0-1")
	assert.Assert(t, first.GUID != second.GUID)
	assert.Equal(t, first.DateAdded, model.ChromeTimeFromTime(now))
}

func TestRoots_Trees(t *testing.T) {
	input := `{
		"bookmark_bar": {"type": "folder", "id": "1", "children": []},
		"other": {"type": "folder", "id": "2", "children": []},
		"sync_transaction_version": "12",
		"workspaces_v2": {"type": "folder", "id": "30", "children": []}
	}`

	var r model.Roots
	assert.NilError(t, json.Unmarshal([]byte(input), &r))
	assert.Equal(t, r.SyncTransactionVersion, "12")
	assert.Assert(t, r.Synced == nil)
	assert.Assert(t, is.Len(r.Trees(), 3))
}
