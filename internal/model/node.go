package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMalformedNode is returned when a bookmark node decodes but does not
// have the shape of a Chromium tree entry.
var ErrMalformedNode = errors.New("malformed bookmark node")

// Kind distinguishes folders from URL bookmarks in a Chromium tree.
type Kind string

const (
	KindFolder Kind = "folder"
	KindURL    Kind = "url"
)

// Node is one entry of a Chromium bookmark tree. Keys the codec does not
// model are kept in Extra and written back unchanged.
type Node struct {
	Kind         Kind
	ID           string
	GUID         string
	Name         string
	URL          string // url nodes only
	DateAdded    ChromeTime
	DateModified ChromeTime
	Children     []*Node // folder nodes only
	Extra        map[string]json.RawMessage
}

// IsFolder reports whether n can hold children.
func (n *Node) IsFolder() bool {
	return n != nil && n.Kind == KindFolder
}

// FindFolder returns the first direct child folder named name, or nil.
func (n *Node) FindFolder(name string) *Node {
	for _, child := range n.Children {
		if child.IsFolder() && child.Name == name {
			return child
		}
	}
	return nil
}

// Walk calls fn for n and every descendant in document order. Nil nodes
// are skipped.
func (n *Node) Walk(fn func(*Node)) {
	if n == nil {
		return
	}
	fn(n)
	for _, child := range n.Children {
		child.Walk(fn)
	}
}

var nodeKeys = []string{"type", "id", "guid", "name", "url", "date_added", "date_modified", "children"}

func (n *Node) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	fields := []struct {
		key string
		dst any
	}{
		{"type", &n.Kind},
		{"id", &n.ID},
		{"guid", &n.GUID},
		{"name", &n.Name},
		{"url", &n.URL},
		{"date_added", &n.DateAdded},
		{"date_modified", &n.DateModified},
		{"children", &n.Children},
	}
	for _, f := range fields {
		value, ok := raw[f.key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, f.dst); err != nil {
			return fmt.Errorf("bookmark node %q: field %s: %w", n.ID, f.key, err)
		}
	}

	if err := n.checkShape(); err != nil {
		return err
	}

	for _, key := range nodeKeys {
		delete(raw, key)
	}
	if len(raw) > 0 {
		n.Extra = raw
	}
	return nil
}

func (n *Node) checkShape() error {
	for i, child := range n.Children {
		if child == nil {
			return fmt.Errorf("bookmark node %q: child %d is null: %w", n.ID, i, ErrMalformedNode)
		}
	}
	if n.Kind == KindURL && n.Children != nil {
		return fmt.Errorf("bookmark node %q: url node has children: %w", n.ID, ErrMalformedNode)
	}
	return nil
}

func (n *Node) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(n.Extra)+8)
	for key, value := range n.Extra {
		out[key] = value
	}

	out["type"] = n.Kind
	out["id"] = n.ID
	out["name"] = n.Name
	out["date_added"] = n.DateAdded
	if n.GUID != "" {
		out["guid"] = n.GUID
	}

	switch n.Kind {
	case KindURL:
		out["url"] = n.URL
		if n.DateModified != 0 {
			out["date_modified"] = n.DateModified
		}
	default:
		out["date_modified"] = n.DateModified
		children := n.Children
		if children == nil {
			children = []*Node{}
		}
		out["children"] = children
	}

	return encodeNoEscape(out)
}

// encodeNoEscape marshals v without escaping <, > and &, so titles and
// URLs stay as the browser wrote them.
func encodeNoEscape(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
