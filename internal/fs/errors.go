package fs

import (
	"errors"
	"fmt"
	iofs "io/fs"
)

// ErrNotDirectory is wrapped by a ReadError when the path names a non-directory.
var ErrNotDirectory = errors.New("not a directory")

// ReadErrorKind groups directory read failures for user-facing messages.
type ReadErrorKind int

const (
	ReadErrorOther ReadErrorKind = iota
	ReadErrorNotFound
	ReadErrorPermission
	ReadErrorNotDirectory
)

func (k ReadErrorKind) String() string {
	switch k {
	case ReadErrorNotFound:
		return "not found"
	case ReadErrorPermission:
		return "permission denied"
	case ReadErrorNotDirectory:
		return "not a directory"
	default:
		return "i/o error"
	}
}

// ReadError reports a failed directory snapshot.
type ReadError struct {
	Op   string
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *ReadError) Unwrap() error {
	return e.Err
}

// Kind classifies the underlying cause.
func (e *ReadError) Kind() ReadErrorKind {
	switch {
	case errors.Is(e.Err, ErrNotDirectory):
		return ReadErrorNotDirectory
	case errors.Is(e.Err, iofs.ErrNotExist):
		return ReadErrorNotFound
	case errors.Is(e.Err, iofs.ErrPermission):
		return ReadErrorPermission
	default:
		return ReadErrorOther
	}
}
