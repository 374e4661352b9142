package app

import (
	"errors"
	"fmt"
	iofs "io/fs"

	"github.com/justyntemme/cryptum/internal/fs"
	"github.com/justyntemme/cryptum/internal/tree"
)

// ErrorType classifies coordinator failures. None of them is fatal.
type ErrorType int

const (
	// ErrorTypeIO covers unreadable directories, unreadable or unwritable
	// files and failed trash operations.
	ErrorTypeIO ErrorType = iota
	// ErrorTypePathResolution covers selections and paths that do not map
	// to something usable on disk.
	ErrorTypePathResolution
	// ErrorTypeSettingsParse is recovered by using defaults and only logged.
	ErrorTypeSettingsParse
)

func (et ErrorType) String() string {
	switch et {
	case ErrorTypeIO:
		return "io"
	case ErrorTypePathResolution:
		return "path"
	case ErrorTypeSettingsParse:
		return "settings"
	default:
		return "unknown"
	}
}

// AppError is a structured coordinator error.
type AppError struct {
	Type      ErrorType
	Operation string
	Path      string
	Message   string
	Err       error
}

func (e *AppError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s error in %s [%s]: %s", e.Type, e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("%s error in %s: %s", e.Type, e.Operation, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewIOError wraps a filesystem failure. The message is derived from err.
func NewIOError(operation, path string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeIO,
		Operation: operation,
		Path:      path,
		Message:   describe(err),
		Err:       err,
	}
}

func NewPathResolutionError(operation, path, message string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypePathResolution,
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

func NewSettingsParseError(path string, err error) *AppError {
	return &AppError{
		Type:      ErrorTypeSettingsParse,
		Operation: "load settings",
		Path:      path,
		Message:   "settings file is not valid, defaults are in use",
		Err:       err,
	}
}

// fromTree maps tree errors onto the taxonomy.
func fromTree(operation, path string, err error) *AppError {
	switch {
	case errors.Is(err, tree.ErrUnknownNode):
		return NewPathResolutionError(operation, path, "the item is no longer in the tree", err)
	case errors.Is(err, tree.ErrNotDirectory):
		return NewPathResolutionError(operation, path, "not a folder", err)
	case errors.Is(err, tree.ErrNoRoot):
		return NewPathResolutionError(operation, path, "no folder is open", err)
	default:
		return NewIOError(operation, path, err)
	}
}

func describe(err error) string {
	var readErr *fs.ReadError
	if errors.As(err, &readErr) {
		return readErr.Kind().String()
	}
	switch {
	case errors.Is(err, fs.ErrNotDirectory):
		return "not a directory"
	case errors.Is(err, iofs.ErrNotExist):
		return "not found"
	case errors.Is(err, iofs.ErrPermission):
		return "permission denied"
	case err == nil:
		return ""
	default:
		return err.Error()
	}
}
