package app

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/debug"
)

// DefaultDebounce is how long a directory must be quiet before a change is
// reported.
const DefaultDebounce = 200 * time.Millisecond

// DirectoryWatcher reports directories whose listing changed on disk. Bursts
// of events for one directory collapse into a single notification.
type DirectoryWatcher struct {
	watcher  *fsnotify.Watcher
	mu       sync.Mutex
	watching map[string]bool
	notify   chan string
	done     chan struct{}
	debounce time.Duration
}

// NewDirectoryWatcher starts a watcher. A non-positive debounce selects
// DefaultDebounce.
func NewDirectoryWatcher(debounce time.Duration) (*DirectoryWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}

	dw := &DirectoryWatcher{
		watcher:  w,
		watching: make(map[string]bool),
		notify:   make(chan string, 16),
		done:     make(chan struct{}),
		debounce: debounce,
	}
	go dw.run()
	return dw, nil
}

func (dw *DirectoryWatcher) run() {
	lastEvent := make(map[string]time.Time)
	tick := dw.debounce / 2
	if tick <= 0 {
		tick = time.Millisecond
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-dw.done:
			return

		case event, ok := <-dw.watcher.Events:
			if !ok {
				return
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Remove) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Write) {
				continue
			}
			if dir, ok := dw.owner(event.Name); ok {
				lastEvent[dir] = time.Now()
				debug.Log(debug.WATCH, "event",
					zap.String("op", event.Op.String()),
					zap.String("path", event.Name),
					zap.String("dir", dir))
			}

		case err, ok := <-dw.watcher.Errors:
			if !ok {
				return
			}
			debug.Log(debug.WATCH, "watcher error", zap.Error(err))

		case now := <-ticker.C:
			for dir, at := range lastEvent {
				if now.Sub(at) < dw.debounce {
					continue
				}
				select {
				case dw.notify <- dir:
					debug.Log(debug.WATCH, "changed", zap.String("dir", dir))
				default:
					// Receiver is behind; a later event will report it again.
				}
				delete(lastEvent, dir)
			}
		}
	}
}

// owner returns the watched directory an event path belongs to.
func (dw *DirectoryWatcher) owner(path string) (string, bool) {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	if parent := filepath.Dir(path); dw.watching[parent] {
		return parent, true
	}
	if dw.watching[path] {
		return path, true
	}
	return "", false
}

func (dw *DirectoryWatcher) watchUnlocked(path string) error {
	if dw.watching[path] {
		return nil
	}
	if err := dw.watcher.Add(path); err != nil {
		return err
	}
	dw.watching[path] = true
	debug.Log(debug.WATCH, "watching", zap.String("path", path))
	return nil
}

func (dw *DirectoryWatcher) unwatchUnlocked(path string) {
	if !dw.watching[path] {
		return
	}
	// The directory may already be gone.
	if err := dw.watcher.Remove(path); err != nil {
		debug.Log(debug.WATCH, "unwatch", zap.String("path", path), zap.Error(err))
	}
	delete(dw.watching, path)
}

// Sync makes the watch list equal to paths. Paths that cannot be watched are
// skipped and logged.
func (dw *DirectoryWatcher) Sync(paths []string) {
	want := make(map[string]bool, len(paths))
	for _, p := range paths {
		want[p] = true
	}

	dw.mu.Lock()
	defer dw.mu.Unlock()
	for p := range dw.watching {
		if !want[p] {
			dw.unwatchUnlocked(p)
		}
	}
	for p := range want {
		if err := dw.watchUnlocked(p); err != nil {
			debug.Log(debug.WATCH, "cannot watch", zap.String("path", p), zap.Error(err))
		}
	}
}

// Watching reports whether path is on the watch list.
func (dw *DirectoryWatcher) Watching(path string) bool {
	dw.mu.Lock()
	defer dw.mu.Unlock()
	return dw.watching[path]
}

// Notify receives the directories that changed.
func (dw *DirectoryWatcher) Notify() <-chan string {
	return dw.notify
}

func (dw *DirectoryWatcher) Close() error {
	close(dw.done)
	return dw.watcher.Close()
}
