//go:build linux

package trash

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sys/unix"
)

// Freedesktop layout: <trash>/files holds the entries and <trash>/info holds
// one .trashinfo per entry:
//
//	[Trash Info]
//	Path=/original/path/to/file
//	DeletionDate=2024-01-15T10:30:45
const infoDateLayout = "2006-01-02T15:04:05"

func getPath() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		dataHome = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataHome, "Trash")
}

func isAvailable() bool {
	root := getPath()
	if root == "" {
		return false
	}
	return ensureDirs(root) == nil
}

func ensureDirs(root string) error {
	for _, sub := range []string{"files", "info"} {
		if err := os.MkdirAll(filepath.Join(root, sub), 0o700); err != nil {
			return fmt.Errorf("create trash %s directory: %w", sub, err)
		}
	}
	return nil
}

func moveToTrash(path string) error {
	home := getPath()
	if home == "" {
		return ErrUnavailable
	}

	err := trashInto(home, path, path)
	if !errors.Is(err, unix.EXDEV) {
		return err
	}

	// The file lives on another mount; use that mount's own trash.
	top, err := mountTop(path)
	if err != nil {
		return err
	}
	root := filepath.Join(top, ".Trash-"+strconv.Itoa(os.Getuid()))
	rel, err := filepath.Rel(top, path)
	if err != nil {
		return err
	}
	return trashInto(root, path, rel)
}

// trashInto moves path into the trash at root. recorded is the Path value
// written to the .trashinfo file.
func trashInto(root, path, recorded string) error {
	if err := ensureDirs(root); err != nil {
		return err
	}
	filesDir := filepath.Join(root, "files")
	infoDir := filepath.Join(root, "info")

	name := uniqueName(filesDir, filepath.Base(path), func(p string) bool {
		return exists(p) || exists(filepath.Join(infoDir, filepath.Base(p)+".trashinfo"))
	})

	info := fmt.Sprintf("[Trash Info]\nPath=%s\nDeletionDate=%s\n",
		escapePath(recorded), time.Now().Format(infoDateLayout))
	infoPath := filepath.Join(infoDir, name+".trashinfo")

	f, err := os.OpenFile(infoPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return fmt.Errorf("create trashinfo: %w", err)
	}
	_, werr := f.WriteString(info)
	cerr := f.Close()
	if werr != nil || cerr != nil {
		os.Remove(infoPath)
		return fmt.Errorf("write trashinfo: %w", errors.Join(werr, cerr))
	}

	if err := os.Rename(path, filepath.Join(filesDir, name)); err != nil {
		os.Remove(infoPath)
		var linkErr *os.LinkError
		if errors.As(err, &linkErr) && errors.Is(linkErr.Err, unix.EXDEV) {
			return unix.EXDEV
		}
		return fmt.Errorf("move to trash: %w", err)
	}
	return nil
}

// escapePath percent-encodes a path the way trash specification readers
// expect, keeping the slashes.
func escapePath(p string) string {
	return (&url.URL{Path: p}).EscapedPath()
}

// mountTop walks up from path to the topmost directory on the same device.
func mountTop(path string) (string, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return "", err
	}
	dev := st.Dev

	dir := filepath.Dir(path)
	for {
		parent := filepath.Dir(dir)
		if parent == dir {
			return dir, nil
		}
		if err := unix.Stat(parent, &st); err != nil || st.Dev != dev {
			return dir, nil
		}
		dir = parent
	}
}

func displayName() string {
	return "Trash"
}
