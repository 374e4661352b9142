//go:build windows

package fs

import (
	"strings"

	"golang.org/x/sys/windows"
)

// IsHidden reports whether name is a dot file or carries the hidden
// attribute.
func IsHidden(name, path string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return false
	}
	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return false
	}
	return attrs&windows.FILE_ATTRIBUTE_HIDDEN != 0
}
