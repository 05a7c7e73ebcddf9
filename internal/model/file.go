package model

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
)

// BookmarkFile is the whole Chromium `Bookmarks` document.
type BookmarkFile struct {
	Checksum string
	Roots    Roots
	Version  int
	Extra    map[string]json.RawMessage
}

// Roots holds the top-level bookmark trees of a Chromium profile.
type Roots struct {
	BookmarkBar            *Node
	Other                  *Node
	Synced                 *Node
	SyncTransactionVersion string
	Extra                  map[string]json.RawMessage
}

// Trees returns the non-nil root nodes in browser display order.
func (r *Roots) Trees() []*Node {
	var trees []*Node
	for _, n := range []*Node{r.BookmarkBar, r.Other, r.Synced} {
		if n != nil {
			trees = append(trees, n)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(r.Extra)) {
		// Vendor-specific roots (e.g. Edge's workspaces) are still trees.
		var n Node
		if err := json.Unmarshal(r.Extra[key], &n); err == nil && n.Kind != "" {
			trees = append(trees, &n)
		}
	}
	return trees
}

func (r *Roots) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	nodes := map[string]**Node{
		"bookmark_bar": &r.BookmarkBar,
		"other":        &r.Other,
		"synced":       &r.Synced,
	}
	for key, dst := range nodes {
		value, ok := raw[key]
		if !ok {
			continue
		}
		var n Node
		if err := json.Unmarshal(value, &n); err != nil {
			return fmt.Errorf("root %s: %w", key, err)
		}
		*dst = &n
		delete(raw, key)
	}

	if value, ok := raw["sync_transaction_version"]; ok {
		if err := json.Unmarshal(value, &r.SyncTransactionVersion); err != nil {
			return fmt.Errorf("root sync_transaction_version: %w", err)
		}
		delete(raw, "sync_transaction_version")
	}

	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

func (r *Roots) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Extra)+4)
	for key, value := range r.Extra {
		out[key] = value
	}
	if r.BookmarkBar != nil {
		out["bookmark_bar"] = r.BookmarkBar
	}
	if r.Other != nil {
		out["other"] = r.Other
	}
	if r.Synced != nil {
		out["synced"] = r.Synced
	}
	if r.SyncTransactionVersion != "" {
		out["sync_transaction_version"] = r.SyncTransactionVersion
	}
	return encodeNoEscape(out)
}

func (f *BookmarkFile) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	value, ok := raw["roots"]
	if !ok {
		return fmt.Errorf("bookmark file has no roots")
	}
	if err := json.Unmarshal(value, &f.Roots); err != nil {
		return err
	}
	if value, ok := raw["checksum"]; ok {
		if err := json.Unmarshal(value, &f.Checksum); err != nil {
			return fmt.Errorf("checksum: %w", err)
		}
	}
	if value, ok := raw["version"]; ok {
		if err := json.Unmarshal(value, &f.Version); err != nil {
			return fmt.Errorf("version: %w", err)
		}
	}

	delete(raw, "roots")
	delete(raw, "checksum")
	delete(raw, "version")
	if len(raw) > 0 {
		f.Extra = raw
	}
	return nil
}

func (f *BookmarkFile) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(f.Extra)+3)
	for key, value := range f.Extra {
		out[key] = value
	}
	out["roots"] = &f.Roots
	out["version"] = f.Version
	if f.Checksum != "" {
		out["checksum"] = f.Checksum
	}
	return encodeNoEscape(out)
}
