// Package finder implements quick open: it collects the files below the open
// folder and ranks them against a fuzzy query.
package finder

import (
	"context"
	"errors"
	iofs "io/fs"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/charlievieth/fastwalk"
	"github.com/sahilm/fuzzy"
	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/debug"
	"github.com/justyntemme/cryptum/internal/fs"
)

// DefaultLimit caps how many files Collect gathers.
const DefaultLimit = 20000

var errLimit = errors.New("file limit reached")

// File is one candidate for quick open.
type File struct {
	Rel string // Slash separated, relative to the root
	Abs string
}

// Files implements fuzzy.Source over the relative paths.
type Files []File

func (f Files) String(i int) string { return f[i].Rel }
func (f Files) Len() int            { return len(f) }

// Match is a ranked result.
type Match struct {
	File
	Score   int
	Indexes []int // Matched rune positions in Rel, for highlighting
}

func skipDir(name string) bool {
	switch name {
	case ".git", "node_modules", "vendor":
		return true
	default:
		return false
	}
}

// Collect walks root and returns every regular file, honoring the hidden and
// exclude options of the sidebar. It stops after limit files (DefaultLimit
// when limit <= 0) or when ctx is done.
func Collect(ctx context.Context, root string, opts fs.Options, limit int) (Files, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	clean := filepath.Clean(root)

	var (
		mu  sync.Mutex
		out Files
	)
	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, clean, func(path string, d iofs.DirEntry, err error) error {
		if err != nil {
			debug.Log(debug.FS_ENTRY, "finder walk error", zap.String("path", path), zap.Error(err))
			return nil
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if path == clean {
			return nil
		}

		name := d.Name()
		if d.IsDir() && skipDir(name) {
			return fastwalk.SkipDir
		}
		if (!opts.ShowHidden && fs.IsHidden(name, path)) || excluded(name, opts.Exclude) {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(clean, path)
		if err != nil {
			rel = path
		}

		mu.Lock()
		defer mu.Unlock()
		if len(out) >= limit {
			return errLimit
		}
		out = append(out, File{Rel: filepath.ToSlash(rel), Abs: path})
		return nil
	})
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	if err != nil && !errors.Is(err, errLimit) {
		return nil, err
	}

	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].Rel) < strings.ToLower(out[j].Rel)
	})
	debug.Log(debug.FS, "finder collected", zap.String("root", clean), zap.Int("files", len(out)))
	return out, nil
}

func excluded(name string, patterns []string) bool {
	for _, p := range patterns {
		if ok, err := doublestar.Match(p, name); err == nil && ok {
			return true
		}
	}
	return false
}

// Rank returns the files matching query, best first, at most limit of them.
// An empty query returns the first files in path order.
func Rank(query string, files Files, limit int) []Match {
	query = strings.TrimSpace(query)
	if query == "" {
		n := len(files)
		if limit > 0 && n > limit {
			n = limit
		}
		out := make([]Match, 0, n)
		for _, f := range files[:n] {
			out = append(out, Match{File: f})
		}
		return out
	}

	found := fuzzy.FindFrom(query, files)
	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]Match, 0, len(found))
	for _, m := range found {
		out = append(out, Match{File: files[m.Index], Score: m.Score, Indexes: m.MatchedIndexes})
	}
	return out
}
