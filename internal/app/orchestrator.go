package app

import (
	"context"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/buffer"
	"github.com/justyntemme/cryptum/internal/config"
	"github.com/justyntemme/cryptum/internal/debug"
	"github.com/justyntemme/cryptum/internal/fs"
	"github.com/justyntemme/cryptum/internal/store"
	"github.com/justyntemme/cryptum/internal/trash"
	"github.com/justyntemme/cryptum/internal/tree"
)

// maxFollowUps bounds the intents one request may chain.
const maxFollowUps = 8

// View is a snapshot of everything a front end draws.
type View struct {
	Title    string
	Folder   string
	File     string
	Dirty    bool
	Size     int
	Rows     []tree.Row
	Selected tree.NodeID
	Status   Status
	Settings config.Settings
	Recent   []store.Recent
}

// Event is sent after every request the loop handled. Intent is nil when the
// event was caused by a background update such as the recent list.
type Event struct {
	Intent  Intent
	Outcome Outcome
	View    View
}

// Options configures an Orchestrator. Empty paths select the defaults.
type Options struct {
	SettingsPath string
	DBPath       string
	// NoRecents skips the SQLite store.
	NoRecents bool
	// NoWatch disables the directory watcher.
	NoWatch  bool
	Debounce time.Duration
}

// Orchestrator owns the Workspace and serializes every change to it through
// one loop.
type Orchestrator struct {
	Requests chan Intent
	Events   chan Event

	ws       *Workspace
	coord    *Coordinator
	fs       *fs.System
	store    *store.DB
	settings *config.Store
	watcher  *DirectoryWatcher
	opts     Options
	recent   []store.Recent
}

// NewOrchestrator builds the workspace over a headless buffer. Call Run to
// start the loop.
func NewOrchestrator(opts Options) *Orchestrator {
	system := fs.NewSystem()
	settings := config.NewStore(opts.SettingsPath)
	return &Orchestrator{
		Requests: make(chan Intent, 16),
		Events:   make(chan Event, 16),
		ws:       NewWorkspace(tree.New(system), buffer.NewMemory()),
		coord:    NewCoordinator(settings, nil),
		fs:       system,
		store:    store.NewDB(),
		settings: settings,
		opts:     opts,
	}
}

// Workspace is exposed for front ends that edit the buffer directly.
func (o *Orchestrator) Workspace() *Workspace { return o.ws }

// Coordinator allows tests and front ends to swap collaborators before Run.
func (o *Orchestrator) Coordinator() *Coordinator { return o.coord }

// Start loads settings and opens the recent store and watcher. Failures of
// the optional parts are logged and the editor runs without them.
func (o *Orchestrator) Start() {
	s := o.settings.Load()
	if err := o.settings.ParseError(); err != nil {
		debug.Warn("settings", zap.Error(NewSettingsParseError(o.settings.Path(), err)))
	}
	o.ws.viewHidden = s.ViewHiddenFiles
	o.ws.tree.SetOptions(o.coord.treeOptions(o.ws))

	if !o.opts.NoRecents {
		path := o.opts.DBPath
		if path == "" {
			path = store.DefaultPath()
		}
		if err := o.store.Open(path); err != nil {
			debug.Warn("recent files unavailable", zap.String("path", path), zap.Error(err))
		} else {
			o.coord.Recents = o.store
			go o.store.Start()
			o.fetchRecent()
		}
	}

	if !trash.IsAvailable() {
		debug.Warn("trash unavailable, delete will fail", zap.String("trash", trash.DisplayName()))
	}

	if !o.opts.NoWatch {
		w, err := NewDirectoryWatcher(o.opts.Debounce)
		if err != nil {
			debug.Warn("directory watcher unavailable", zap.Error(err))
		} else {
			o.watcher = w
		}
	}
}

// Stop releases what Start acquired.
func (o *Orchestrator) Stop() {
	if o.watcher != nil {
		o.watcher.Close()
	}
	if o.coord.Recents != nil {
		o.coord.Recents = nil
		o.store.Stop()
	} else {
		o.store.Close()
	}
	debug.Sync()
}

// Run starts the orchestrator, opens startPath if given and handles requests
// until ctx is done.
func (o *Orchestrator) Run(ctx context.Context, startPath string) error {
	o.Start()
	defer o.Stop()

	if startPath != "" {
		o.handle(ctx, openIntent(startPath))
	} else {
		o.emit(ctx, Event{View: o.View()})
	}

	var notify <-chan string
	if o.watcher != nil {
		notify = o.watcher.Notify()
	}
	var responses <-chan store.Response
	if o.coord.Recents != nil {
		responses = o.store.ResponseChan
	}

	for {
		select {
		case <-ctx.Done():
			debug.Log(debug.APP, "orchestrator stopped")
			return nil
		case in, ok := <-o.Requests:
			if !ok {
				return nil
			}
			o.handle(ctx, in)
		case dir := <-notify:
			o.handle(ctx, RefreshFolder{Path: dir})
		case resp := <-responses:
			if resp.Err != nil {
				debug.Warn("recent files", zap.Error(resp.Err))
				continue
			}
			o.recent = resp.Recent
			o.emit(ctx, Event{View: o.View()})
		}
	}
}

// openIntent picks OpenFolder or OpenFile for a command line path.
func openIntent(path string) Intent {
	if info, err := os.Stat(path); err == nil && !info.IsDir() {
		return OpenFile{Path: path}
	}
	return OpenFolder{Path: path}
}

func (o *Orchestrator) handle(ctx context.Context, in Intent) {
	out := o.Dispatch(in)
	o.emit(ctx, Event{Intent: in, Outcome: out, View: o.View()})
}

func (o *Orchestrator) emit(ctx context.Context, ev Event) {
	select {
	case o.Events <- ev:
	case <-ctx.Done():
	}
}

// Dispatch runs one intent and the follow ups it produces, then brings the
// watcher and the recent list in line with the workspace.
func (o *Orchestrator) Dispatch(in Intent) Outcome {
	var out Outcome
	queue := []Intent{in}
	for n := 0; len(queue) > 0 && n < maxFollowUps; n++ {
		next := queue[0]
		queue = queue[1:]
		res := o.coord.Dispatch(o.ws, next)
		queue = append(queue, res.FollowUp...)
		res.FollowUp = nil
		out.merge(res)
	}
	if len(queue) > 0 {
		debug.Warn("dropping follow ups", zap.Int("count", len(queue)))
	}

	if out.Changed.Has(ChangedTree) {
		o.syncWatcher()
	}
	switch in.(type) {
	case OpenFile, OpenResponse, OpenFolder, FolderResponse, SaveAs, SaveAsResponse,
		DeleteSelection, NavigateUp, Select:
		o.fetchRecent()
	}
	return out
}

// syncWatcher watches the root and every expanded directory.
func (o *Orchestrator) syncWatcher() {
	if o.watcher == nil {
		return
	}
	o.watcher.Sync(o.ExpandedDirs())
}

// ExpandedDirs lists the directories whose contents are on screen.
func (o *Orchestrator) ExpandedDirs() []string {
	t := o.ws.tree
	root, ok := t.Node(t.Root())
	if !ok || !root.Expanded {
		return nil
	}
	dirs := []string{root.Path()}
	for _, row := range t.Rows() {
		if row.Kind != fs.KindDirectory || !row.Expanded {
			continue
		}
		if n, ok := t.Node(row.ID); ok {
			dirs = append(dirs, n.Path())
		}
	}
	return dirs
}

func (o *Orchestrator) fetchRecent() {
	if o.coord.Recents == nil {
		return
	}
	select {
	case o.store.RequestChan <- store.Request{Op: store.FetchRecent, Limit: 20}:
	default:
	}
}

// View snapshots the workspace.
func (o *Orchestrator) View() View {
	sel, _ := o.ws.Selected()
	return View{
		Title:    o.ws.Title(),
		Folder:   o.ws.CurrentFolder(),
		File:     o.ws.CurrentFile(),
		Dirty:    o.ws.Dirty(),
		Size:     len(o.ws.buffer.Text()),
		Rows:     o.ws.tree.Rows(),
		Selected: sel,
		Status:   o.ws.Status(),
		Settings: o.settings.Get(),
		Recent:   o.recent,
	}
}
