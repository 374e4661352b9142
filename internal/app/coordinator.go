package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/classify"
	"github.com/justyntemme/cryptum/internal/debug"
	"github.com/justyntemme/cryptum/internal/finder"
	"github.com/justyntemme/cryptum/internal/fs"
	"github.com/justyntemme/cryptum/internal/store"
	"github.com/justyntemme/cryptum/internal/tree"
)

// FilePermission is used for newly written documents.
const FilePermission = 0o644

// QuickOpenLimit caps the number of quick open results.
const QuickOpenLimit = 50

type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "info"
	}
}

// Notice is a transient message for the user.
type Notice struct {
	Severity Severity
	Text     string
	Err      error
}

// Change flags tell the front end what to redraw.
type Change uint8

const (
	ChangedTree Change = 1 << iota
	ChangedBuffer
	ChangedSettings
	ChangedTitle
)

func (c Change) Has(flag Change) bool { return c&flag != 0 }

// Dialog names a picker the front end should show.
type Dialog int

const (
	DialogNone Dialog = iota
	DialogOpenFile
	DialogOpenFolder
	DialogSaveAs
)

// Outcome is the result of one dispatch.
type Outcome struct {
	Notices  []Notice
	FollowUp []Intent
	Changed  Change
	Dialog   Dialog
	Matches  []finder.Match
}

func (o *Outcome) merge(other Outcome) {
	o.Notices = append(o.Notices, other.Notices...)
	o.FollowUp = append(o.FollowUp, other.FollowUp...)
	o.Changed |= other.Changed
	if other.Dialog != DialogNone {
		o.Dialog = other.Dialog
	}
	if other.Matches != nil {
		o.Matches = other.Matches
	}
}

func (o *Outcome) fail(err *AppError) {
	debug.Log(debug.APP, "intent failed", zap.Error(err))
	o.Notices = append(o.Notices, Notice{Severity: SeverityError, Text: noticeText(err), Err: err})
}

func (o *Outcome) warn(text string, err error) {
	o.Notices = append(o.Notices, Notice{Severity: SeverityWarning, Text: text, Err: err})
}

func (o *Outcome) info(text string) {
	o.Notices = append(o.Notices, Notice{Severity: SeverityInfo, Text: text})
}

func noticeText(err *AppError) string {
	if err.Path != "" {
		return fmt.Sprintf("%s %s: %s", err.Operation, err.Path, err.Message)
	}
	return fmt.Sprintf("%s: %s", err.Operation, err.Message)
}

// Coordinator is the single place where the Workspace changes. It holds no
// state of its own besides its collaborators.
type Coordinator struct {
	Trash     Trasher
	Launcher  Launcher
	Clipboard Clipboard
	Syntax    classify.SyntaxGuesser
	// Settings may be nil, in which case defaults apply and nothing is saved.
	Settings Settings
	// Recents may be nil.
	Recents Recents
}

// NewCoordinator wires the platform collaborators.
func NewCoordinator(settings Settings, recents Recents) *Coordinator {
	return &Coordinator{
		Trash:     SystemTrash,
		Launcher:  SystemLauncher,
		Clipboard: SystemClipboard,
		Syntax:    classify.ChromaGuesser{},
		Settings:  settings,
		Recents:   recents,
	}
}

// Dispatch applies intent to ws.
func (c *Coordinator) Dispatch(ws *Workspace, intent Intent) Outcome {
	debug.Log(debug.APP, "dispatch", zap.String("intent", IntentName(intent)))

	switch in := intent.(type) {
	case NewDocument:
		return c.newDocument(ws, true)
	case ClearEditor:
		return c.newDocument(ws, false)
	case OpenFolder:
		return c.openFolder(ws, in.Path)
	case FolderResponse:
		return c.openFolder(ws, in.Path)
	case OpenFile:
		return c.openFile(ws, in.Path)
	case OpenResponse:
		return c.openFile(ws, in.Path)
	case SaveFile:
		return c.saveFile(ws)
	case SaveAs:
		return c.saveAs(ws, in.Path)
	case SaveAsResponse:
		return c.saveAs(ws, in.Path)
	case SaveAsRequest:
		return Outcome{Dialog: DialogSaveAs}
	case OpenFileRequest:
		return Outcome{Dialog: DialogOpenFile}
	case OpenFolderRequest:
		return Outcome{Dialog: DialogOpenFolder}
	case DeleteSelection:
		return c.deleteSelection(ws)
	case NavigateUp:
		return c.navigateUp(ws)
	case RefreshFolder:
		return c.refresh(ws, in.Path)
	case ToggleHiddenFiles:
		return c.toggleHidden(ws)
	case OpenInExternalBrowser:
		return c.openExternal(ws)
	case Select:
		return c.selectNode(ws, in.Node)
	case Expand:
		return c.expand(ws, in.Node, true)
	case Collapse:
		return c.expand(ws, in.Node, false)
	case SetSetting:
		return c.setSetting(ws, in.Key, in.Value)
	case ToggleTheme:
		return c.toggleTheme()
	case CopyPath:
		return c.copyPath(ws)
	case QuickOpen:
		return c.quickOpen(ws, in.Query)
	case InsertText:
		return c.insert(ws, in.Text)
	case MoveCursor:
		ws.buffer.SetCursor(in.Offset)
		return Outcome{Changed: ChangedBuffer}
	default:
		// Unknown intents are a programming error, treated as no-ops.
		debug.Warn("unhandled intent", zap.String("intent", IntentName(intent)))
		return Outcome{}
	}
}

// treeOptions derives read options from the workspace and settings.
func (c *Coordinator) treeOptions(ws *Workspace) fs.Options {
	opts := fs.Options{ShowHidden: ws.viewHidden}
	if s := c.Settings; s != nil {
		opts.Exclude = s.Get().TreeExclude
	}
	return opts
}

func (c *Coordinator) record(path string, kind store.Kind) {
	if c.Recents == nil {
		return
	}
	if err := c.Recents.Record(path, kind); err != nil {
		debug.Warn("recent: record failed", zap.String("path", path), zap.Error(err))
	}
}

func (c *Coordinator) newDocument(ws *Workspace, forgetFile bool) Outcome {
	ws.buffer.SetText("")
	ws.buffer.SetSyntax("")
	if forgetFile {
		ws.currentFile = ""
		ws.markClean()
	}
	return Outcome{Changed: ChangedBuffer | ChangedTitle}
}

func (c *Coordinator) openFolder(ws *Workspace, path string) Outcome {
	var out Outcome
	if path == "" {
		return out
	}
	path = ExpandPath(path, ws.currentFolder)

	info, err := os.Stat(path)
	if err != nil {
		out.fail(NewIOError("open folder", path, err))
		return out
	}
	if !info.IsDir() {
		out.fail(NewPathResolutionError("open folder", path, "not a folder", fs.ErrNotDirectory))
		return out
	}

	if _, err := ws.tree.OpenRoot(path, c.treeOptions(ws)); err != nil {
		out.fail(fromTree("open folder", path, err))
		return out
	}

	ws.currentFolder = path
	ws.clearSelection()
	ws.invalidateFiles()
	c.record(path, store.KindFolder)
	debug.Log(debug.APP, "folder opened", zap.String("path", path))
	out.Changed |= ChangedTree | ChangedTitle
	return out
}

func (c *Coordinator) openFile(ws *Workspace, path string) Outcome {
	var out Outcome
	if path == "" {
		return out
	}
	path = ExpandPath(path, ws.currentFolder)

	data, err := os.ReadFile(path)
	if err != nil {
		out.fail(NewIOError("open file", path, err))
		return out
	}

	ws.buffer.SetText(string(data))
	ws.currentFile = path
	ws.markClean()
	c.guessSyntax(ws, path, data)
	c.record(path, store.KindFile)

	debug.Log(debug.APP, "file opened", zap.String("path", path), zap.Int("bytes", len(data)))
	out.Changed |= ChangedBuffer | ChangedTitle
	return out
}

func (c *Coordinator) guessSyntax(ws *Workspace, path string, data []byte) {
	if c.Syntax == nil {
		return
	}
	head := data
	if len(head) > classify.HeadSize {
		head = head[:classify.HeadSize]
	}
	id, _ := c.Syntax.Guess(path, head)
	ws.buffer.SetSyntax(id)
}

func (c *Coordinator) saveFile(ws *Workspace) Outcome {
	var out Outcome
	if ws.currentFile == "" {
		out.FollowUp = append(out.FollowUp, SaveAsRequest{})
		return out
	}
	path := ws.currentFile

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, FilePermission)
	if err != nil {
		// The document cannot be written where it came from; ask for a new
		// location instead of dropping the content.
		debug.Log(debug.APP, "save falls back to save as", zap.String("path", path), zap.Error(err))
		out.warn(fmt.Sprintf("cannot write %s, choose another location", path), err)
		out.FollowUp = append(out.FollowUp, SaveAsRequest{})
		return out
	}
	if err := writeAll(f, ws.buffer.Text()); err != nil {
		out.fail(NewIOError("save file", path, err))
		return out
	}

	ws.markClean()
	ws.invalidateFiles()
	out.Changed |= ChangedTitle
	return out
}

func writeAll(f *os.File, text string) error {
	_, err := io.WriteString(f, text)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return err
}

func (c *Coordinator) saveAs(ws *Workspace, path string) Outcome {
	var out Outcome
	if path == "" || ws.buffer == nil {
		return out
	}
	path = ExpandPath(path, ws.currentFolder)

	text := ws.buffer.Text()
	if err := os.WriteFile(path, []byte(text), FilePermission); err != nil {
		out.fail(NewIOError("save as", path, err))
		return out
	}

	ws.currentFile = path
	ws.markClean()
	ws.invalidateFiles()
	c.guessSyntax(ws, path, []byte(text))
	c.record(path, store.KindFile)
	out.Changed |= ChangedTitle | ChangedBuffer

	// Show the new file if its folder is visible in the sidebar.
	if id, ok := ws.tree.Lookup(filepath.Dir(path)); ok {
		if n, _ := ws.tree.Node(id); n.Expanded {
			if err := ws.tree.Refresh(id); err != nil {
				out.fail(fromTree("refresh folder", filepath.Dir(path), err))
			}
			out.Changed |= ChangedTree
		}
	}
	return out
}

func (c *Coordinator) deleteSelection(ws *Workspace) Outcome {
	var out Outcome
	id, ok := ws.Selected()
	if !ok {
		out.fail(NewPathResolutionError("delete", "", "nothing is selected", tree.ErrUnknownNode))
		return out
	}
	sel, err := ws.tree.Select(id)
	if err != nil {
		out.fail(fromTree("delete", ws.selectedPath, err))
		return out
	}
	parent, hasParent := ws.tree.Parent(id)

	if err := c.Trash.MoveToTrash(sel.Path); err != nil {
		out.fail(NewIOError("move to trash", sel.Path, err))
	} else {
		debug.Log(debug.APP, "trashed", zap.String("path", sel.Path))
		ws.clearSelection()
		if c.Recents != nil {
			if err := c.Recents.Forget(sel.Path); err != nil {
				debug.Warn("recent: forget failed", zap.Error(err))
			}
		}
		if within(ws.currentFile, sel.Path) {
			// The document stays in the buffer but no longer has a file.
			ws.currentFile = ""
			ws.saved = 0
			out.Changed |= ChangedTitle
		}
	}

	// Refresh even after a failure so the view matches the disk.
	if !hasParent {
		if _, err := os.Stat(sel.Path); err != nil {
			// The open folder itself is gone.
			ws.tree.Clear()
			ws.currentFolder = ""
		}
	} else if err := ws.tree.Refresh(parent); err != nil {
		out.fail(fromTree("refresh folder", filepath.Dir(sel.Path), err))
	}
	ws.invalidateFiles()
	out.Changed |= ChangedTree
	return out
}

func (c *Coordinator) navigateUp(ws *Workspace) Outcome {
	if ws.currentFolder == "" {
		return Outcome{}
	}
	parent := filepath.Dir(ws.currentFolder)
	if parent == ws.currentFolder {
		debug.Log(debug.APP, "already at filesystem root", zap.String("path", parent))
		return Outcome{}
	}
	return c.openFolder(ws, parent)
}

func (c *Coordinator) refresh(ws *Workspace, path string) Outcome {
	var out Outcome
	if ws.currentFolder == "" {
		return out
	}

	id := ws.tree.Root()
	if path != "" && filepath.Clean(path) != ws.currentFolder {
		var ok bool
		if id, ok = ws.tree.Lookup(path); !ok {
			// Not in the tree; nothing is showing it.
			return out
		}
		if n, _ := ws.tree.Node(id); !n.IsDir() {
			return out
		}
	} else {
		path = ws.currentFolder
	}

	if err := ws.tree.Refresh(id); err != nil {
		out.fail(fromTree("refresh folder", path, err))
		return out
	}
	ws.invalidateFiles()
	out.Changed |= ChangedTree
	return out
}

func (c *Coordinator) toggleHidden(ws *Workspace) Outcome {
	var out Outcome
	ws.viewHidden = !ws.viewHidden
	ws.tree.SetOptions(c.treeOptions(ws))
	out.merge(c.refresh(ws, ""))

	if s := c.Settings; s != nil {
		if err := s.SetHiddenFiles(ws.viewHidden); err != nil {
			out.warn("could not save settings", err)
		}
	}
	out.Changed |= ChangedTree | ChangedSettings
	return out
}

func (c *Coordinator) openExternal(ws *Workspace) Outcome {
	if ws.currentFolder == "" {
		return Outcome{}
	}
	if _, err := os.Stat(ws.currentFolder); err != nil {
		return Outcome{}
	}
	if err := c.Launcher.Open(ws.currentFolder); err != nil {
		debug.Log(debug.APP, "external browser failed", zap.String("path", ws.currentFolder), zap.Error(err))
	}
	return Outcome{}
}

func (c *Coordinator) selectNode(ws *Workspace, id tree.NodeID) Outcome {
	var out Outcome
	sel, err := ws.tree.Select(id)
	if err != nil {
		out.fail(fromTree("select", "", err))
		return out
	}
	ws.setSelection(id, sel.Path)
	out.Changed |= ChangedTree

	switch sel.Kind {
	case fs.KindFile:
		out.merge(c.openFile(ws, sel.Path))
	case fs.KindDirectory:
		if _, err := ws.tree.Toggle(id); err != nil {
			out.fail(fromTree("expand", sel.Path, err))
		}
	}
	return out
}

func (c *Coordinator) expand(ws *Workspace, id tree.NodeID, open bool) Outcome {
	var out Outcome
	var err error
	if open {
		err = ws.tree.Expand(id)
	} else {
		err = ws.tree.Collapse(id)
	}
	if err != nil {
		path := ""
		if n, ok := ws.tree.Node(id); ok {
			path = n.Path()
		}
		out.fail(fromTree("expand", path, err))
		return out
	}
	out.Changed |= ChangedTree
	return out
}

func (c *Coordinator) setSetting(ws *Workspace, key, value string) Outcome {
	var out Outcome
	s := c.Settings
	if s == nil {
		return out
	}
	if err := s.Set(key, value); err != nil {
		out.warn(fmt.Sprintf("setting %s: %v", key, err), err)
		return out
	}
	out.Changed |= ChangedSettings

	switch key {
	case "view_hidden_files":
		ws.viewHidden = s.Get().ViewHiddenFiles
		fallthrough
	case "tree_exclude":
		ws.tree.SetOptions(c.treeOptions(ws))
		out.merge(c.refresh(ws, ""))
	}
	return out
}

func (c *Coordinator) toggleTheme() Outcome {
	var out Outcome
	s := c.Settings
	if s == nil {
		return out
	}
	theme, err := s.ToggleTheme()
	if err != nil {
		out.warn("could not save settings", err)
	}
	debug.Log(debug.APP, "theme", zap.String("theme", theme))
	out.Changed |= ChangedSettings
	return out
}

func (c *Coordinator) copyPath(ws *Workspace) Outcome {
	var out Outcome
	path := ws.SelectedPath()
	if path == "" {
		path = ws.currentFile
	}
	if path == "" {
		out.fail(NewPathResolutionError("copy path", "", "nothing to copy", nil))
		return out
	}
	if err := c.Clipboard.WriteAll(path); err != nil {
		out.fail(NewIOError("copy path", path, err))
		return out
	}
	out.info("copied " + path)
	return out
}

func (c *Coordinator) insert(ws *Workspace, text string) Outcome {
	if ins, ok := ws.buffer.(interface{ Insert(string) }); ok {
		ins.Insert(text)
	} else {
		ws.buffer.SetText(ws.buffer.Text() + text)
	}
	return Outcome{Changed: ChangedBuffer | ChangedTitle}
}

func (c *Coordinator) quickOpen(ws *Workspace, query string) Outcome {
	var out Outcome
	if ws.currentFolder == "" {
		out.fail(NewPathResolutionError("quick open", "", "no folder is open", tree.ErrNoRoot))
		return out
	}
	if ws.files == nil || ws.filesFolder != ws.currentFolder {
		files, err := finder.Collect(context.Background(), ws.currentFolder, c.treeOptions(ws), 0)
		if err != nil && !errors.Is(err, context.Canceled) {
			out.fail(NewIOError("quick open", ws.currentFolder, err))
			return out
		}
		ws.files = files
		ws.filesFolder = ws.currentFolder
	}
	out.Matches = finder.Rank(query, ws.files, QuickOpenLimit)
	return out
}
