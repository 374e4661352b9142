package tree

import (
	"github.com/justyntemme/cryptum/internal/fs"
)

// NodeID addresses a node in the model's arena. IDs are never reused within
// one model, so a stale ID simply fails to resolve.
type NodeID int

// NoNode is returned where a node does not exist, e.g. the parent of the root.
const NoNode NodeID = -1

// State tracks whether a directory's children have been read.
type State int

const (
	Unmaterialized State = iota
	Materialized
)

func (s State) String() string {
	if s == Materialized {
		return "materialized"
	}
	return "unmaterialized"
}

// Item is the payload of a node: one of FileItem, DirectoryItem or OtherItem.
type Item interface {
	entry() fs.Entry
}

type FileItem struct{ fs.Entry }

type DirectoryItem struct{ fs.Entry }

// OtherItem covers sockets, devices and broken symlinks.
type OtherItem struct{ fs.Entry }

func (i FileItem) entry() fs.Entry      { return i.Entry }
func (i DirectoryItem) entry() fs.Entry { return i.Entry }
func (i OtherItem) entry() fs.Entry     { return i.Entry }

func itemFor(e fs.Entry) Item {
	switch e.Kind {
	case fs.KindDirectory:
		return DirectoryItem{e}
	case fs.KindFile:
		return FileItem{e}
	default:
		return OtherItem{e}
	}
}

// Node is a snapshot of one tree node as returned by Model queries.
type Node struct {
	ID       NodeID
	Item     Item
	Parent   NodeID
	Children []NodeID
	State    State
	Expanded bool
}

// Entry returns the filesystem entry the node wraps.
func (n Node) Entry() fs.Entry { return n.Item.entry() }

// Path is shorthand for Entry().Path.
func (n Node) Path() string { return n.Item.entry().Path }

// IsDir reports whether the node can have children.
func (n Node) IsDir() bool {
	_, ok := n.Item.(DirectoryItem)
	return ok
}

// Label is the sidebar text. Directories carry a trailing slash.
func (n Node) Label() string {
	if n.IsDir() {
		return n.Entry().Name + "/"
	}
	return n.Entry().Name
}

// Selection is what a select event resolves to.
type Selection struct {
	ID   NodeID
	Path string
	Kind fs.Kind
}

// Row is one visible line of the flattened tree.
type Row struct {
	ID       NodeID
	Depth    int
	Label    string
	Kind     fs.Kind
	Expanded bool
	Hidden   bool
}

type node struct {
	item     Item
	parent   NodeID
	children []NodeID
	state    State
	expanded bool
}

func (n *node) isDir() bool {
	_, ok := n.item.(DirectoryItem)
	return ok
}
