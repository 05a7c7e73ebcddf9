package organize

import (
	"errors"
	"fmt"
	"time"

	"github.com/nikbrunner/bmtag/internal/model"
)

// DefaultFolderName is the organized folder created under the bookmark bar.
const DefaultFolderName = "AI整理"

// ErrNotFolder is returned when a folder operation hits a non-folder node.
var ErrNotFolder = errors.New("bookmark node is not a folder")

// Reconcile moves every grouped bookmark into folderName/<tag> under root and
// removes the originals from the rest of the tree. It mutates and returns
// root.
//
// Running Reconcile again with the same input changes nothing: folders and
// URLs already present are reused, and the relocated URLs only exist inside
// the organized folder, which the removal pass never touches.
func Reconcile(root *model.Node, groups []TagGroup, urls URLSet, folderName string, now time.Time) (*model.Node, error) {
	if !root.IsFolder() {
		return nil, fmt.Errorf("reconcile root %q: %w", nodeID(root), ErrNotFolder)
	}

	organized := root.FindFolder(folderName)
	if organized == nil {
		organized = root.AppendFolder(root.NextTopLevelID(), folderName, now)
	}

	for _, g := range groups {
		tagFolder := organized.FindFolder(g.Tag)
		if tagFolder == nil {
			tagFolder = organized.AppendFolder(organized.NextChildID(), g.Tag, now)
		}
		insertMissing(tagFolder, g.Records, now)
	}

	if len(urls) > 0 {
		pruneRoot(root, urls, folderName)
	}

	root.DateModified = model.ChromeTimeFromTime(now)
	return root, nil
}

// insertMissing appends records whose URL is not yet a child of folder.
func insertMissing(folder *model.Node, records []model.BookmarkRecord, now time.Time) {
	existing := make(URLSet)
	for _, child := range folder.Children {
		if child.Kind == model.KindURL {
			existing.Add(child.URL)
		}
	}

	for _, r := range records {
		if existing.Has(r.URL) {
			continue
		}
		folder.AppendURL(r.Title, r.URL, now)
		existing.Add(r.URL)
	}
}

// pruneRoot runs the removal pass over the direct children of root. Only a
// top-level folder named folderName is protected.
func pruneRoot(root *model.Node, urls URLSet, folderName string) {
	kept := root.Children[:0]
	for _, child := range root.Children {
		if child == nil {
			continue
		}
		if child.IsFolder() && child.Name == folderName {
			kept = append(kept, child)
			continue
		}
		if pruned := prune(child, urls); pruned != nil {
			kept = append(kept, pruned)
		}
	}
	clearTail(root.Children, len(kept))
	root.Children = kept
}

// prune returns n with every url leaf matching urls removed from its subtree,
// or nil when n itself is such a leaf. Folders are always kept.
func prune(n *model.Node, urls URLSet) *model.Node {
	switch n.Kind {
	case model.KindURL:
		if urls.Has(n.URL) {
			return nil
		}
		return n
	case model.KindFolder:
		kept := n.Children[:0]
		for _, child := range n.Children {
			if child == nil {
				continue
			}
			if pruned := prune(child, urls); pruned != nil {
				kept = append(kept, pruned)
			}
		}
		clearTail(n.Children, len(kept))
		n.Children = kept
		return n
	default:
		return n
	}
}

// clearTail drops references past the compacted prefix so removed nodes
// can be collected.
func clearTail(children []*model.Node, keep int) {
	for i := keep; i < len(children); i++ {
		children[i] = nil
	}
}

func nodeID(n *model.Node) string {
	if n == nil {
		return "<nil>"
	}
	return n.ID
}
