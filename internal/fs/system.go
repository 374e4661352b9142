package fs

import (
	"errors"
	"io"
	iofs "io/fs"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/justyntemme/cryptum/internal/debug"
)

// Snapshotter reads one directory level.
type Snapshotter interface {
	ReadDirectory(path string, opts Options) ([]Entry, error)
}

// System is the shared directory reader. Concurrent reads of the same path with
// the same options are collapsed into one filesystem walk.
type System struct {
	group singleflight.Group

	mu    sync.Mutex
	reads int64
}

func NewSystem() *System {
	return &System{}
}

// ReadDirectory returns the immediate children of path, directories first and
// then by name.
func (s *System) ReadDirectory(path string, opts Options) ([]Entry, error) {
	v, err, shared := s.group.Do(requestKey(path, opts), func() (interface{}, error) {
		s.mu.Lock()
		s.reads++
		s.mu.Unlock()
		return ReadDirectory(path, opts)
	})
	if err != nil {
		return nil, err
	}
	if shared {
		debug.Log(debug.FS, "shared directory read", zap.String("path", path))
	}
	entries := v.([]Entry)
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out, nil
}

// Reads returns how many filesystem reads the system has performed.
func (s *System) Reads() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reads
}

func requestKey(path string, opts Options) string {
	var b strings.Builder
	b.WriteString(path)
	b.WriteByte(0)
	b.WriteString(strconv.FormatBool(opts.ShowHidden))
	for _, p := range opts.Exclude {
		b.WriteByte(0)
		b.WriteString(p)
	}
	return b.String()
}

// ReadDirectory reads path without request sharing.
func ReadDirectory(path string, opts Options) ([]Entry, error) {
	path = filepath.Clean(path)
	debug.Log(debug.FS, "read directory", zap.String("path", path), zap.Bool("hidden", opts.ShowHidden))

	info, err := os.Stat(path)
	if err != nil {
		return nil, &ReadError{Op: "read directory", Path: path, Err: err}
	}
	if !info.IsDir() {
		return nil, &ReadError{Op: "read directory", Path: path, Err: ErrNotDirectory}
	}
	// fastwalk reports unreadable roots through the callback; check up front so
	// the caller gets a typed error instead of an empty listing.
	f, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Op: "read directory", Path: path, Err: err}
	}
	if _, err := f.Readdirnames(1); err != nil && !errors.Is(err, io.EOF) {
		f.Close()
		return nil, &ReadError{Op: "read directory", Path: path, Err: err}
	}
	f.Close()

	var result []Entry
	var mu sync.Mutex

	conf := &fastwalk.Config{
		Follow: true, // Follow symlinks to get target info
	}

	pathLen := len(path)

	err = fastwalk.Walk(conf, path, func(fullPath string, d iofs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FS_ENTRY, "walk error", zap.String("path", fullPath), zap.Error(err))
			return nil
		}

		if fullPath == path {
			return nil
		}

		// Only direct children. fullPath starts with path, so any separator in
		// the remainder means a nested entry.
		relStart := pathLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		rel := fullPath[relStart:]
		if strings.ContainsAny(rel, "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		name := d.Name()
		hidden := IsHidden(name, fullPath)
		if hidden && !opts.ShowHidden {
			return skipEntry(d)
		}
		if excluded(name, opts.Exclude) {
			return skipEntry(d)
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Broken symlinks still show up, as Other.
			info, err = os.Lstat(fullPath)
			if err != nil {
				debug.Log(debug.FS_ENTRY, "skipping entry", zap.String("name", name), zap.Error(err))
				return nil
			}
		}

		mu.Lock()
		result = append(result, Entry{
			Name:    name,
			Path:    fullPath,
			Kind:    KindOf(info.Mode()),
			Hidden:  hidden,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
		mu.Unlock()

		return skipEntry(d)
	})
	if err != nil {
		return nil, &ReadError{Op: "read directory", Path: path, Err: err}
	}

	SortEntries(result)
	debug.Log(debug.FS, "read directory done", zap.String("path", path), zap.Int("entries", len(result)))
	return result, nil
}

// skipEntry keeps fastwalk from descending below the first level.
func skipEntry(d iofs.DirEntry) error {
	if d.IsDir() {
		return fastwalk.SkipDir
	}
	return nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		ok, err := doublestar.Match(p, name)
		if err != nil {
			debug.Log(debug.FS, "bad exclude pattern", zap.String("pattern", p), zap.Error(err))
			continue
		}
		if ok {
			return true
		}
	}
	return false
}

// SortEntries orders directories first, then by name in byte order.
func SortEntries(entries []Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		di, dj := entries[i].IsDir(), entries[j].IsDir()
		if di != dj {
			return di
		}
		return entries[i].Name < entries[j].Name
	})
}
