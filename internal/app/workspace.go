package app

import (
	"path/filepath"

	"github.com/justyntemme/cryptum/internal/buffer"
	"github.com/justyntemme/cryptum/internal/classify"
	"github.com/justyntemme/cryptum/internal/finder"
	"github.com/justyntemme/cryptum/internal/tree"
)

// AppName is shown in the window title.
const AppName = "Cryptum Text"

// Workspace is what is open right now. Only the Coordinator mutates it; the
// accessors are for front ends and tests.
type Workspace struct {
	currentFile   string
	currentFolder string
	viewHidden    bool

	tree   *tree.Model
	buffer buffer.TextBuffer

	// selectedPath survives refreshes; selected is re-resolved from it.
	selected     tree.NodeID
	selectedPath string

	// saved fingerprints the buffer as last loaded or written.
	saved uint64

	// finder cache for quick open, dropped whenever the tree changes.
	files       finder.Files
	filesFolder string
}

// NewWorkspace starts with an empty, unsaved document and no folder.
func NewWorkspace(t *tree.Model, buf buffer.TextBuffer) *Workspace {
	return &Workspace{
		tree:     t,
		buffer:   buf,
		selected: tree.NoNode,
		saved:    buffer.Fingerprint(buf.Text()),
	}
}

func (w *Workspace) CurrentFile() string   { return w.currentFile }
func (w *Workspace) CurrentFolder() string { return w.currentFolder }
func (w *Workspace) ViewHidden() bool      { return w.viewHidden }
func (w *Workspace) Tree() *tree.Model     { return w.tree }
func (w *Workspace) Buffer() buffer.TextBuffer {
	return w.buffer
}

// Selected returns the selected node, re-resolving it by path if a refresh
// replaced the node.
func (w *Workspace) Selected() (tree.NodeID, bool) {
	if w.selectedPath == "" {
		return tree.NoNode, false
	}
	if n, ok := w.tree.Node(w.selected); ok && n.Path() == w.selectedPath {
		return w.selected, true
	}
	id, ok := w.tree.Lookup(w.selectedPath)
	if !ok {
		return tree.NoNode, false
	}
	w.selected = id
	return id, true
}

// SelectedPath returns the path of the selection, or "".
func (w *Workspace) SelectedPath() string {
	if _, ok := w.Selected(); !ok {
		return ""
	}
	return w.selectedPath
}

func (w *Workspace) setSelection(id tree.NodeID, path string) {
	w.selected = id
	w.selectedPath = path
}

func (w *Workspace) clearSelection() {
	w.selected = tree.NoNode
	w.selectedPath = ""
}

// Dirty reports whether the buffer differs from the last load or save.
func (w *Workspace) Dirty() bool {
	return buffer.Fingerprint(w.buffer.Text()) != w.saved
}

func (w *Workspace) markClean() {
	w.saved = buffer.Fingerprint(w.buffer.Text())
}

func (w *Workspace) invalidateFiles() {
	w.files = nil
	w.filesFolder = ""
}

// Title is the window title: the document name with a leading "*" when
// modified.
func (w *Workspace) Title() string {
	name := "Untitled"
	if w.currentFile != "" {
		name = filepath.Base(w.currentFile)
	}
	if w.Dirty() {
		name = "*" + name
	}
	return name + " - " + AppName
}

// Status is the status bar content.
type Status struct {
	FileType string
	Cursor   string
}

func (w *Workspace) Status() Status {
	label, _ := classify.LanguageLabel(w.currentFile)
	return Status{
		FileType: label,
		Cursor:   buffer.CursorLabel(w.buffer),
	}
}
