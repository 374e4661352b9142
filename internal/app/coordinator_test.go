package app

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/cryptum/internal/buffer"
	"github.com/justyntemme/cryptum/internal/config"
	"github.com/justyntemme/cryptum/internal/fs"
	"github.com/justyntemme/cryptum/internal/store"
	"github.com/justyntemme/cryptum/internal/tree"
)

type fakeTrash struct {
	moved []string
	err   error
}

func (f *fakeTrash) MoveToTrash(path string) error {
	if f.err != nil {
		return f.err
	}
	f.moved = append(f.moved, path)
	return os.RemoveAll(path)
}

type fakeClipboard struct{ text string }

func (f *fakeClipboard) WriteAll(text string) error {
	f.text = text
	return nil
}

type fakeRecents struct {
	recorded  []string
	forgotten []string
}

func (f *fakeRecents) Record(path string, kind store.Kind) error {
	f.recorded = append(f.recorded, string(kind)+":"+path)
	return nil
}

func (f *fakeRecents) Forget(path string) error {
	f.forgotten = append(f.forgotten, path)
	return nil
}

// failingSnapshotter reads through the real filesystem except for the paths
// in fail.
type failingSnapshotter struct {
	fs.Snapshotter
	fail map[string]error
}

func (f *failingSnapshotter) ReadDirectory(path string, opts fs.Options) ([]fs.Entry, error) {
	if err := f.fail[path]; err != nil {
		return nil, err
	}
	return f.Snapshotter.ReadDirectory(path, opts)
}

type env struct {
	root     string
	c        *Coordinator
	ws       *Workspace
	trash    *fakeTrash
	clip     *fakeClipboard
	recents  *fakeRecents
	settings *config.Store
	launched []string
}

// newEnv builds a coordinator over a temp folder:
//
//	root/
//	  .hidden
//	  a.txt
//	  x.txt
//	  sub/inner.go
func newEnv(t *testing.T) *env {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	for name, content := range map[string]string{
		".hidden":      "secret",
		"a.txt":        "alpha",
		"x.txt":        "delete me",
		"sub/inner.go": "package sub\n",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0o644))
	}

	settings := config.NewStore(filepath.Join(t.TempDir(), config.FileName))
	settings.Load()

	e := &env{
		root:     root,
		trash:    &fakeTrash{},
		clip:     &fakeClipboard{},
		recents:  &fakeRecents{},
		settings: settings,
	}
	e.c = NewCoordinator(settings, e.recents)
	e.c.Trash = e.trash
	e.c.Clipboard = e.clip
	e.c.Launcher = LauncherFunc(func(path string) error {
		e.launched = append(e.launched, path)
		return nil
	})
	e.ws = NewWorkspace(tree.New(fs.NewSystem()), buffer.NewMemory())
	return e
}

func (e *env) path(name string) string {
	return filepath.Join(e.root, filepath.FromSlash(name))
}

func (e *env) dispatch(t *testing.T, in Intent) Outcome {
	t.Helper()
	return e.c.Dispatch(e.ws, in)
}

// mustDispatch fails the test on any error notice.
func (e *env) mustDispatch(t *testing.T, in Intent) Outcome {
	t.Helper()
	out := e.dispatch(t, in)
	for _, n := range out.Notices {
		require.NotEqual(t, SeverityError, n.Severity, "%s: %s", IntentName(in), n.Text)
	}
	return out
}

func (e *env) labels() []string {
	var out []string
	for _, r := range e.ws.Tree().Rows() {
		out = append(out, r.Label)
	}
	return out
}

func (e *env) node(t *testing.T, name string) tree.NodeID {
	t.Helper()
	id, ok := e.ws.Tree().Lookup(e.path(name))
	require.True(t, ok, "node %s", name)
	return id
}

func appError(t *testing.T, out Outcome) *AppError {
	t.Helper()
	require.NotEmpty(t, out.Notices)
	var ae *AppError
	require.True(t, errors.As(out.Notices[0].Err, &ae), "notice %q carries no AppError", out.Notices[0].Text)
	return ae
}

func TestOpenFolder(t *testing.T) {
	e := newEnv(t)

	out := e.mustDispatch(t, OpenFolder{Path: e.root})
	assert.True(t, out.Changed.Has(ChangedTree))
	assert.Equal(t, e.root, e.ws.CurrentFolder())
	assert.Equal(t, []string{"sub/", "a.txt", "x.txt"}, e.labels())
	assert.Equal(t, []string{"folder:" + e.root}, e.recents.recorded)

	// Children of sub are not read until it is expanded.
	sub, ok := e.ws.Tree().Node(e.node(t, "sub"))
	require.True(t, ok)
	assert.Equal(t, tree.Unmaterialized, sub.State)
}

func TestOpenFolderErrors(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})

	out := e.dispatch(t, OpenFolder{Path: e.path("missing")})
	ae := appError(t, out)
	assert.Equal(t, ErrorTypeIO, ae.Type)
	assert.Equal(t, "not found", ae.Message)

	out = e.dispatch(t, OpenFolder{Path: e.path("a.txt")})
	ae = appError(t, out)
	assert.Equal(t, ErrorTypePathResolution, ae.Type)

	// The open folder is untouched.
	assert.Equal(t, e.root, e.ws.CurrentFolder())
	assert.Equal(t, []string{"sub/", "a.txt", "x.txt"}, e.labels())
}

func TestOpenFolderReadFailureKeepsTree(t *testing.T) {
	e := newEnv(t)
	snap := &failingSnapshotter{Snapshotter: fs.NewSystem(), fail: map[string]error{}}
	e.ws = NewWorkspace(tree.New(snap), buffer.NewMemory())

	e.mustDispatch(t, OpenFolder{Path: e.root})
	sub := e.node(t, "sub")
	e.mustDispatch(t, Expand{Node: sub})
	before := e.labels()
	require.Equal(t, []string{"sub/", "inner.go", "a.txt", "x.txt"}, before)

	other := t.TempDir()
	snap.fail[other] = errors.New("device not ready")
	out := e.dispatch(t, OpenFolder{Path: other})
	assert.Equal(t, ErrorTypeIO, appError(t, out).Type)

	assert.Equal(t, e.root, e.ws.CurrentFolder())
	assert.Equal(t, before, e.labels())
	assert.Equal(t, sub, e.node(t, "sub"))
	assert.Equal(t, []string{"folder:" + e.root}, e.recents.recorded)

	// Navigating up into an unreadable parent keeps the tree as well.
	e.mustDispatch(t, OpenFolder{Path: e.path("sub")})
	snap.fail[e.root] = errors.New("device not ready")
	out = e.dispatch(t, NavigateUp{})
	assert.Equal(t, ErrorTypeIO, appError(t, out).Type)
	assert.Equal(t, e.path("sub"), e.ws.CurrentFolder())
	assert.Equal(t, []string{"inner.go"}, e.labels())
}

func TestOpenFileAndSaveRoundTrip(t *testing.T) {
	e := newEnv(t)
	content := "héllo\r\nworld\tno newline"
	path := e.path("doc.txt")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	out := e.mustDispatch(t, OpenFile{Path: path})
	assert.True(t, out.Changed.Has(ChangedBuffer))
	assert.Equal(t, path, e.ws.CurrentFile())
	assert.Equal(t, content, e.ws.Buffer().Text())
	assert.False(t, e.ws.Dirty())
	assert.Equal(t, "doc.txt - Cryptum Text", e.ws.Title())

	e.mustDispatch(t, SaveFile{})
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
}

func TestOpenFileFailureKeepsBuffer(t *testing.T) {
	e := newEnv(t)
	e.ws.Buffer().SetText("keep me")

	out := e.dispatch(t, OpenFile{Path: e.path("nope.txt")})
	assert.Equal(t, ErrorTypeIO, appError(t, out).Type)
	assert.Equal(t, "keep me", e.ws.Buffer().Text())
	assert.Empty(t, e.ws.CurrentFile())
}

func TestOpenFileSetsSyntax(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFile{Path: e.path("sub/inner.go")})

	mem := e.ws.Buffer().(*buffer.Memory)
	assert.EqualValues(t, "Go", mem.Syntax())
	assert.Equal(t, "Go Source File", e.ws.Status().FileType)
	assert.Equal(t, "Ln 1, Col 1", e.ws.Status().Cursor)
}

func TestSaveWithoutFileAsksForLocation(t *testing.T) {
	e := newEnv(t)
	e.ws.Buffer().SetText("draft")

	out := e.mustDispatch(t, SaveFile{})
	assert.Equal(t, []Intent{SaveAsRequest{}}, out.FollowUp)
}

func TestSaveFallsBackToSaveAs(t *testing.T) {
	e := newEnv(t)
	e.ws.Buffer().SetText("content")
	// A directory can never be opened for writing, even by root.
	e.ws.currentFile = e.path("sub")

	out := e.dispatch(t, SaveFile{})
	assert.Contains(t, out.FollowUp, Intent(SaveAsRequest{}))
	assert.Equal(t, e.path("sub"), e.ws.CurrentFile())
	assert.True(t, e.ws.Dirty())
}

func TestSaveAsUpdatesCurrentFile(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})
	e.ws.Buffer().SetText("package main\n")

	target := e.path("main.go")
	out := e.mustDispatch(t, SaveAs{Path: target})
	assert.True(t, out.Changed.Has(ChangedTree))
	assert.Equal(t, target, e.ws.CurrentFile())
	assert.False(t, e.ws.Dirty())

	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "package main\n", string(data))
	assert.Contains(t, e.labels(), "main.go")
	assert.EqualValues(t, "Go", e.ws.Buffer().(*buffer.Memory).Syntax())

	// Subsequent saves go to the new file.
	e.ws.Buffer().SetText("package main\n\nfunc main() {}\n")
	assert.True(t, e.ws.Dirty())
	e.mustDispatch(t, SaveFile{})
	data, err = os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, "package main\n\nfunc main() {}\n", string(data))
}

func TestSaveAsFailure(t *testing.T) {
	e := newEnv(t)
	e.ws.Buffer().SetText("x")

	out := e.dispatch(t, SaveAs{Path: e.path("no/such/dir/f.txt")})
	assert.Equal(t, ErrorTypeIO, appError(t, out).Type)
	assert.Empty(t, e.ws.CurrentFile())
}

func TestDeleteSelection(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})
	e.mustDispatch(t, Select{Node: e.node(t, "x.txt")})
	require.Equal(t, e.path("x.txt"), e.ws.CurrentFile())

	e.mustDispatch(t, DeleteSelection{})
	assert.Equal(t, []string{e.path("x.txt")}, e.trash.moved)
	assert.NotContains(t, e.labels(), "x.txt")
	assert.Empty(t, e.ws.CurrentFile())
	assert.Empty(t, e.ws.SelectedPath())
	assert.Equal(t, []string{e.path("x.txt")}, e.recents.forgotten)

	e.mustDispatch(t, RefreshFolder{})
	assert.NotContains(t, e.labels(), "x.txt")
}

func TestDeleteNestedSelection(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})
	e.mustDispatch(t, Expand{Node: e.node(t, "sub")})
	e.mustDispatch(t, Select{Node: e.node(t, "sub/inner.go")})

	e.mustDispatch(t, DeleteSelection{})
	assert.Equal(t, []string{"sub/", "a.txt", "x.txt"}, e.labels())
}

func TestDeleteWithoutSelection(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})

	out := e.dispatch(t, DeleteSelection{})
	assert.Equal(t, ErrorTypePathResolution, appError(t, out).Type)
	assert.Empty(t, e.trash.moved)
}

func TestDeleteTrashFailure(t *testing.T) {
	e := newEnv(t)
	e.trash.err = errors.New("trash is full")
	e.mustDispatch(t, OpenFolder{Path: e.root})
	e.ws.setSelection(e.node(t, "a.txt"), e.path("a.txt"))

	out := e.dispatch(t, DeleteSelection{})
	ae := appError(t, out)
	assert.Equal(t, ErrorTypeIO, ae.Type)
	assert.Contains(t, e.labels(), "a.txt")
	assert.Equal(t, e.path("a.txt"), e.ws.SelectedPath())
}

func TestNavigateUp(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.path("sub")})

	e.mustDispatch(t, NavigateUp{})
	assert.Equal(t, e.root, e.ws.CurrentFolder())
	assert.Contains(t, e.labels(), "sub/")
}

func TestNavigateUpAtFilesystemRoot(t *testing.T) {
	e := newEnv(t)
	top := filepath.VolumeName(e.root) + string(filepath.Separator)
	e.ws.currentFolder = top

	out := e.dispatch(t, NavigateUp{})
	assert.Empty(t, out.Notices)
	assert.Zero(t, out.Changed)
	assert.Equal(t, top, e.ws.CurrentFolder())

	e.ws.currentFolder = ""
	assert.Zero(t, e.dispatch(t, NavigateUp{}).Changed)
}

func TestToggleHiddenFiles(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})
	assert.NotContains(t, e.labels(), ".hidden")

	out := e.mustDispatch(t, ToggleHiddenFiles{})
	assert.True(t, out.Changed.Has(ChangedSettings))
	assert.True(t, e.ws.ViewHidden())
	assert.Contains(t, e.labels(), ".hidden")
	assert.True(t, e.settings.Get().ViewHiddenFiles)

	// Persisted for the next session.
	reloaded := config.NewStore(e.settings.Path()).Load()
	assert.True(t, reloaded.ViewHiddenFiles)

	e.mustDispatch(t, ToggleHiddenFiles{})
	assert.NotContains(t, e.labels(), ".hidden")
}

func TestRefreshFolderPicksUpChanges(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})
	e.mustDispatch(t, Expand{Node: e.node(t, "sub")})

	require.NoError(t, os.WriteFile(e.path("sub/new.go"), nil, 0o644))
	e.mustDispatch(t, RefreshFolder{Path: e.path("sub")})
	assert.Equal(t, []string{"sub/", "inner.go", "new.go", "a.txt", "x.txt"}, e.labels())

	// Unknown paths are ignored.
	out := e.dispatch(t, RefreshFolder{Path: e.path("elsewhere")})
	assert.Empty(t, out.Notices)
}

func TestSelectDirectoryToggles(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})
	sub := e.node(t, "sub")

	e.mustDispatch(t, Select{Node: sub})
	assert.Equal(t, []string{"sub/", "inner.go", "a.txt", "x.txt"}, e.labels())
	assert.Equal(t, e.path("sub"), e.ws.SelectedPath())

	e.mustDispatch(t, Select{Node: sub})
	assert.Equal(t, []string{"sub/", "a.txt", "x.txt"}, e.labels())

	out := e.dispatch(t, Select{Node: tree.NodeID(9999)})
	assert.Equal(t, ErrorTypePathResolution, appError(t, out).Type)
}

func TestCollapse(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})
	sub := e.node(t, "sub")
	e.mustDispatch(t, Expand{Node: sub})
	e.mustDispatch(t, Collapse{Node: sub})
	assert.Equal(t, []string{"sub/", "a.txt", "x.txt"}, e.labels())

	out := e.dispatch(t, Expand{Node: e.node(t, "a.txt")})
	assert.Equal(t, ErrorTypePathResolution, appError(t, out).Type)
}

func TestNewDocumentAndClearEditor(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFile{Path: e.path("a.txt")})

	e.mustDispatch(t, ClearEditor{})
	assert.Empty(t, e.ws.Buffer().Text())
	assert.Equal(t, e.path("a.txt"), e.ws.CurrentFile())
	assert.Equal(t, "*a.txt - Cryptum Text", e.ws.Title())

	e.mustDispatch(t, NewDocument{})
	assert.Empty(t, e.ws.CurrentFile())
	assert.Equal(t, "Untitled - Cryptum Text", e.ws.Title())
}

func TestDialogIntents(t *testing.T) {
	e := newEnv(t)

	assert.Equal(t, DialogSaveAs, e.dispatch(t, SaveAsRequest{}).Dialog)
	assert.Equal(t, DialogOpenFile, e.dispatch(t, OpenFileRequest{}).Dialog)
	assert.Equal(t, DialogOpenFolder, e.dispatch(t, OpenFolderRequest{}).Dialog)

	e.mustDispatch(t, FolderResponse{Path: e.root})
	assert.Equal(t, e.root, e.ws.CurrentFolder())

	// Relative responses resolve against the open folder.
	e.mustDispatch(t, OpenResponse{Path: "a.txt"})
	assert.Equal(t, e.path("a.txt"), e.ws.CurrentFile())

	e.mustDispatch(t, SaveAsResponse{Path: "copy.txt"})
	assert.Equal(t, e.path("copy.txt"), e.ws.CurrentFile())
	data, err := os.ReadFile(e.path("copy.txt"))
	require.NoError(t, err)
	assert.Equal(t, "alpha", string(data))
}

func TestCopyPath(t *testing.T) {
	e := newEnv(t)

	out := e.dispatch(t, CopyPath{})
	assert.Equal(t, ErrorTypePathResolution, appError(t, out).Type)

	e.mustDispatch(t, OpenFile{Path: e.path("a.txt")})
	e.mustDispatch(t, CopyPath{})
	assert.Equal(t, e.path("a.txt"), e.clip.text)

	e.mustDispatch(t, OpenFolder{Path: e.root})
	e.ws.setSelection(e.node(t, "sub"), e.path("sub"))
	out = e.mustDispatch(t, CopyPath{})
	assert.Equal(t, e.path("sub"), e.clip.text)
	require.Len(t, out.Notices, 1)
	assert.Equal(t, SeverityInfo, out.Notices[0].Severity)
}

func TestOpenInExternalBrowser(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenInExternalBrowser{})
	assert.Empty(t, e.launched)

	e.mustDispatch(t, OpenFolder{Path: e.root})
	e.c.Launcher = LauncherFunc(func(path string) error {
		e.launched = append(e.launched, path)
		return errors.New("no browser")
	})
	out := e.dispatch(t, OpenInExternalBrowser{})
	assert.Empty(t, out.Notices)
	assert.Equal(t, []string{e.root}, e.launched)
}

func TestSetSetting(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFolder{Path: e.root})

	out := e.mustDispatch(t, SetSetting{Key: "view_hidden_files", Value: "true"})
	assert.True(t, out.Changed.Has(ChangedSettings))
	assert.True(t, e.ws.ViewHidden())
	assert.Contains(t, e.labels(), ".hidden")

	e.mustDispatch(t, SetSetting{Key: "tree_exclude", Value: "*.txt, .hidden"})
	assert.Equal(t, []string{"sub/"}, e.labels())

	e.mustDispatch(t, SetSetting{Key: "editor_tab_width", Value: "2"})
	assert.Equal(t, 2, e.settings.Get().EditorTabWidth)

	out = e.dispatch(t, SetSetting{Key: "bogus", Value: "1"})
	require.Len(t, out.Notices, 1)
	assert.Equal(t, SeverityWarning, out.Notices[0].Severity)
}

func TestToggleTheme(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, ToggleTheme{})
	assert.True(t, e.settings.Get().IsDark())
	e.mustDispatch(t, ToggleTheme{})
	assert.Equal(t, config.ThemeLight, e.settings.Get().EditorTheme)
}

func TestQuickOpen(t *testing.T) {
	e := newEnv(t)
	out := e.dispatch(t, QuickOpen{Query: "inner"})
	assert.Equal(t, ErrorTypePathResolution, appError(t, out).Type)

	e.mustDispatch(t, OpenFolder{Path: e.root})
	out = e.mustDispatch(t, QuickOpen{Query: "inner"})
	require.NotEmpty(t, out.Matches)
	assert.Equal(t, "sub/inner.go", out.Matches[0].Rel)
	assert.Equal(t, e.path("sub/inner.go"), out.Matches[0].Abs)

	// New files show up once the cache is invalidated by a save.
	e.ws.Buffer().SetText("")
	e.mustDispatch(t, SaveAs{Path: e.path("sub/interesting.md")})
	out = e.mustDispatch(t, QuickOpen{Query: "interesting"})
	require.NotEmpty(t, out.Matches)
	assert.Equal(t, "sub/interesting.md", out.Matches[0].Rel)
}

func TestNilSettings(t *testing.T) {
	e := newEnv(t)
	e.c.Settings = nil
	e.mustDispatch(t, OpenFolder{Path: e.root})

	assert.Zero(t, e.dispatch(t, ToggleTheme{}).Changed)
	assert.Zero(t, e.dispatch(t, SetSetting{Key: "view_sidebar", Value: "false"}).Changed)
	e.mustDispatch(t, ToggleHiddenFiles{})
	assert.Contains(t, e.labels(), ".hidden")
}

func TestIntentName(t *testing.T) {
	assert.Equal(t, "OpenFolder", IntentName(OpenFolder{}))
	assert.Equal(t, "QuickOpen", IntentName(QuickOpen{Query: "x"}))
}

func TestEditingIntents(t *testing.T) {
	e := newEnv(t)
	e.mustDispatch(t, OpenFile{Path: e.path("a.txt")})

	e.mustDispatch(t, MoveCursor{Offset: 5})
	out := e.mustDispatch(t, InsertText{Text: "\nbeta"})
	assert.True(t, out.Changed.Has(ChangedTitle))
	assert.Equal(t, "alpha\nbeta", e.ws.Buffer().Text())
	assert.Equal(t, "Ln 2, Col 5", e.ws.Status().Cursor)
	assert.True(t, e.ws.Dirty())
}
