package model

import (
	"strconv"
	"time"
)

// Ids for nodes created by bmtag are derived from the parent's id and its
// child count before the append. Children are only ever appended during a
// reconciliation pass, so the count grows monotonically and the derived id
// cannot repeat within one parent.

// NextChildID returns the id the next appended child of n receives.
func (n *Node) NextChildID() string {
	return n.ID + "-" + strconv.Itoa(len(n.Children))
}

// NextTopLevelID returns the id for a new folder directly under a root.
func (n *Node) NextTopLevelID() string {
	return strconv.Itoa(len(n.Children) + 1)
}

// AppendFolder creates an empty folder named name under n and returns it.
func (n *Node) AppendFolder(id, name string, now time.Time) *Node {
	stamp := ChromeTimeFromTime(now)
	folder := &Node{
		Kind:         KindFolder,
		ID:           id,
		GUID:         GenerateGUID(),
		Name:         name,
		DateAdded:    stamp,
		DateModified: stamp,
		Children:     []*Node{},
	}
	n.Children = append(n.Children, folder)
	return folder
}

// AppendURL appends a bookmark under n using the next child id.
func (n *Node) AppendURL(title, url string, now time.Time) *Node {
	bookmark := &Node{
		Kind:      KindURL,
		ID:        n.NextChildID(),
		GUID:      GenerateGUID(),
		Name:      title,
		URL:       url,
		DateAdded: ChromeTimeFromTime(now),
	}
	n.Children = append(n.Children, bookmark)
	return bookmark
}
