// Package trash moves files to the platform trash instead of deleting them.
// Linux follows the freedesktop.org trash specification, macOS uses ~/.Trash
// and Windows hands the path to the Recycle Bin through the shell.
package trash

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/debug"
)

// ErrUnavailable is returned when the platform has no usable trash.
var ErrUnavailable = errors.New("trash is not available")

// MoveToTrash moves a file or directory to the trash. The path must exist;
// nothing is ever removed permanently.
func MoveToTrash(path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(abs); err != nil {
		return err
	}
	if err := moveToTrash(abs); err != nil {
		debug.Warn("trash: move failed", zap.String("path", abs), zap.Error(err))
		return err
	}
	debug.Log(debug.FS, "moved to trash", zap.String("path", abs))
	return nil
}

// IsAvailable reports whether MoveToTrash can work on this system.
func IsAvailable() bool {
	return isAvailable()
}

// DisplayName returns "Trash", or "Recycle Bin" on Windows.
func DisplayName() string {
	return displayName()
}

// VerbPhrase returns the menu wording for a delete.
func VerbPhrase() string {
	return "Move to " + DisplayName()
}

// uniqueName returns a name not present in dir, appending a counter before
// the extension when needed.
func uniqueName(dir, base string, taken func(string) bool) string {
	name := base
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	for i := 1; taken(filepath.Join(dir, name)); i++ {
		name = fmt.Sprintf("%s.%d%s", stem, i, ext)
	}
	return name
}

func exists(path string) bool {
	_, err := os.Lstat(path)
	return err == nil
}
