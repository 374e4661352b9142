package fs

import (
	iofs "io/fs"
	"time"
)

// Kind classifies a filesystem entry.
type Kind int

const (
	KindOther Kind = iota
	KindFile
	KindDirectory
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDirectory:
		return "directory"
	default:
		return "other"
	}
}

// KindOf maps a file mode to a Kind. Symlinks must already be resolved by the caller.
func KindOf(mode iofs.FileMode) Kind {
	switch {
	case mode.IsDir():
		return KindDirectory
	case mode.IsRegular():
		return KindFile
	default:
		return KindOther
	}
}

// Entry is one child of a directory as seen at read time. Entries are never
// mutated after a read; the next read produces fresh values.
type Entry struct {
	Name    string
	Path    string
	Kind    Kind
	Hidden  bool
	Size    int64
	ModTime time.Time
}

// IsDir reports whether the entry is a directory.
func (e Entry) IsDir() bool { return e.Kind == KindDirectory }

// Options controls which children a directory read returns.
type Options struct {
	ShowHidden bool
	// Exclude holds doublestar patterns matched against entry names.
	Exclude []string
}
