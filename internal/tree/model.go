// Package tree maps a filesystem subtree onto a lazily expanded tree. A
// directory node reads its children the first time it is expanded and keeps
// them until an explicit Refresh.
package tree

import (
	"errors"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/classify"
	"github.com/justyntemme/cryptum/internal/debug"
	"github.com/justyntemme/cryptum/internal/fs"
)

var (
	// ErrUnknownNode is returned for IDs that do not resolve, including IDs
	// from a tree that has since been replaced or refreshed.
	ErrUnknownNode = errors.New("unknown tree node")
	// ErrNotDirectory is returned when a directory operation targets a file.
	ErrNotDirectory = errors.New("node is not a directory")
	// ErrNoRoot is returned by operations that need an open folder.
	ErrNoRoot = errors.New("no folder open")
)

// Model is the lazy tree. All methods are safe for concurrent use; mutations
// are serialized so two expands of the same node never overlap.
type Model struct {
	mu sync.Mutex

	snap fs.Snapshotter
	opts fs.Options

	nodes  map[NodeID]*node
	byPath map[string]NodeID
	root   NodeID
	next   NodeID
}

// New creates an empty model that reads directories through snap.
func New(snap fs.Snapshotter) *Model {
	return &Model{
		snap:   snap,
		nodes:  make(map[NodeID]*node),
		byPath: make(map[string]NodeID),
		root:   NoNode,
	}
}

// SetOptions changes the read options. Already materialized nodes keep their
// children until refreshed.
func (m *Model) SetOptions(opts fs.Options) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opts = opts
}

func (m *Model) Options() fs.Options {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opts
}

// OpenRoot reads path with opts and only then replaces the tree with an
// expanded root for it. If the read fails the current tree, its options and
// its node IDs are left exactly as they were.
func (m *Model) OpenRoot(path string, opts fs.Options) (NodeID, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	entries, err := m.snap.ReadDirectory(path, opts)
	if err != nil {
		debug.Log(debug.TREE, "open root failed", zap.String("path", path), zap.Error(err))
		return NoNode, err
	}

	m.opts = opts
	m.resetRoot(path)
	n := m.nodes[m.root]
	m.attach(m.root, n, entries)
	n.expanded = true

	debug.Log(debug.TREE, "open root", zap.String("path", path), zap.Int("children", len(entries)))
	return m.root, nil
}

// resetRoot discards the whole tree and creates an unmaterialized root for
// path. The root is always a directory node so that a folder which vanished
// after opening still reports a read error on expand.
func (m *Model) resetRoot(path string) NodeID {
	m.nodes = make(map[NodeID]*node)
	m.byPath = make(map[string]NodeID)

	info := classify.Classify(path)
	entry := fs.Entry{Name: filepath.Base(path), Path: path, Kind: info.Kind, Hidden: info.Hidden}
	m.root = m.add(DirectoryItem{entry}, NoNode)
	return m.root
}

// Clear drops the tree entirely.
func (m *Model) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nodes = make(map[NodeID]*node)
	m.byPath = make(map[string]NodeID)
	m.root = NoNode
}

// Expand materializes the node if needed and marks it expanded. A failed read
// leaves the node as it was.
func (m *Model) Expand(id NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.expand(id)
}

// Collapse marks the node collapsed. Its children stay in memory.
func (m *Model) Collapse(id NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.dir(id)
	if err != nil {
		return err
	}
	n.expanded = false
	debug.Log(debug.TREE, "collapse", zap.String("path", n.item.entry().Path))
	return nil
}

// Toggle expands a collapsed directory or collapses an expanded one and
// reports the new expansion state.
func (m *Model) Toggle(id NodeID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.dir(id)
	if err != nil {
		return false, err
	}
	if n.expanded {
		n.expanded = false
		return false, nil
	}
	if err := m.expand(id); err != nil {
		return false, err
	}
	return true, nil
}

// Select resolves a node to its path and kind.
func (m *Model) Select(id NodeID) (Selection, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok {
		return Selection{}, ErrUnknownNode
	}
	e := n.item.entry()
	return Selection{ID: id, Path: e.Path, Kind: e.Kind}, nil
}

// Refresh rebuilds the subtree below a directory from disk. If the node was
// expanded it is read again immediately, and so is every descendant directory
// that was expanded before, matched by path. If the read of the node itself
// fails the old subtree is kept.
func (m *Model) Refresh(id NodeID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, err := m.dir(id)
	if err != nil {
		return err
	}
	path := n.item.entry().Path

	if !n.expanded {
		m.dropChildren(n)
		n.state = Unmaterialized
		debug.Log(debug.TREE, "refresh collapsed", zap.String("path", path))
		return nil
	}

	entries, err := m.snap.ReadDirectory(path, m.opts)
	if err != nil {
		debug.Log(debug.TREE, "refresh failed", zap.String("path", path), zap.Error(err))
		return err
	}

	expanded := make(map[string]bool)
	m.collectExpanded(n, expanded)

	m.dropChildren(n)
	n.state = Unmaterialized
	m.attach(id, n, entries)

	for _, child := range n.children {
		m.restore(child, expanded)
	}
	debug.Log(debug.TREE, "refresh", zap.String("path", path), zap.Int("children", len(n.children)))
	return nil
}

// Root returns the root ID, or NoNode when no folder is open.
func (m *Model) Root() NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.root
}

// Node returns a copy of the node.
func (m *Model) Node(id NodeID) (Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok {
		return Node{}, false
	}
	return m.snapshot(id, n), true
}

// Children returns the IDs of the node's children in snapshot order. Nil for
// files and unmaterialized directories.
func (m *Model) Children(id NodeID) []NodeID {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok || len(n.children) == 0 {
		return nil
	}
	out := make([]NodeID, len(n.children))
	copy(out, n.children)
	return out
}

// Parent returns the parent ID. The root has no parent.
func (m *Model) Parent(id NodeID) (NodeID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	n, ok := m.nodes[id]
	if !ok || n.parent == NoNode {
		return NoNode, false
	}
	return n.parent, true
}

// Lookup finds the node for an absolute path.
func (m *Model) Lookup(path string) (NodeID, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.byPath[filepath.Clean(path)]
	return id, ok
}

// Len returns the number of nodes in the arena.
func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.nodes)
}

// Rows flattens the expanded part of the tree depth-first, starting with the
// root's children at depth 0.
func (m *Model) Rows() []Row {
	m.mu.Lock()
	defer m.mu.Unlock()

	root, ok := m.nodes[m.root]
	if !ok || !root.expanded {
		return nil
	}
	var rows []Row
	var walk func(ids []NodeID, depth int)
	walk = func(ids []NodeID, depth int) {
		for _, id := range ids {
			n := m.nodes[id]
			snap := m.snapshot(id, n)
			e := snap.Entry()
			rows = append(rows, Row{
				ID:       id,
				Depth:    depth,
				Label:    snap.Label(),
				Kind:     e.Kind,
				Expanded: n.expanded,
				Hidden:   e.Hidden,
			})
			if n.expanded {
				walk(n.children, depth+1)
			}
		}
	}
	walk(root.children, 0)
	return rows
}

func (m *Model) add(item Item, parent NodeID) NodeID {
	id := m.next
	m.next++
	m.nodes[id] = &node{item: item, parent: parent}
	m.byPath[item.entry().Path] = id
	return id
}

func (m *Model) dir(id NodeID) (*node, error) {
	n, ok := m.nodes[id]
	if !ok {
		return nil, ErrUnknownNode
	}
	if !n.isDir() {
		return nil, ErrNotDirectory
	}
	return n, nil
}

func (m *Model) expand(id NodeID) error {
	n, err := m.dir(id)
	if err != nil {
		return err
	}
	if n.state == Unmaterialized {
		path := n.item.entry().Path
		entries, err := m.snap.ReadDirectory(path, m.opts)
		if err != nil {
			debug.Log(debug.TREE, "expand failed", zap.String("path", path), zap.Error(err))
			return err
		}
		m.attach(id, n, entries)
		debug.Log(debug.TREE, "materialized", zap.String("path", path), zap.Int("children", len(entries)))
	}
	n.expanded = true
	return nil
}

// attach builds child nodes for entries. Child directories start
// unmaterialized; nothing below them is read.
func (m *Model) attach(id NodeID, n *node, entries []fs.Entry) {
	n.children = make([]NodeID, 0, len(entries))
	for _, e := range entries {
		n.children = append(n.children, m.add(itemFor(e), id))
	}
	n.state = Materialized
}

func (m *Model) dropChildren(n *node) {
	for _, c := range n.children {
		if child, ok := m.nodes[c]; ok {
			m.dropChildren(child)
			delete(m.byPath, child.item.entry().Path)
			delete(m.nodes, c)
		}
	}
	n.children = nil
}

func (m *Model) collectExpanded(n *node, into map[string]bool) {
	for _, c := range n.children {
		child := m.nodes[c]
		if child.expanded {
			into[child.item.entry().Path] = true
			m.collectExpanded(child, into)
		}
	}
}

// restore re-expands id if its path was expanded before a refresh. A
// directory that can no longer be read stays collapsed.
func (m *Model) restore(id NodeID, expanded map[string]bool) {
	n := m.nodes[id]
	if !n.isDir() || !expanded[n.item.entry().Path] {
		return
	}
	if err := m.expand(id); err != nil {
		return
	}
	for _, c := range n.children {
		m.restore(c, expanded)
	}
}

func (m *Model) snapshot(id NodeID, n *node) Node {
	var children []NodeID
	if len(n.children) > 0 {
		children = make([]NodeID, len(n.children))
		copy(children, n.children)
	}
	return Node{
		ID:       id,
		Item:     n.item,
		Parent:   n.parent,
		Children: children,
		State:    n.state,
		Expanded: n.expanded,
	}
}
