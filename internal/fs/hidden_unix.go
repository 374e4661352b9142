//go:build !windows

package fs

import "strings"

// IsHidden reports whether name follows the dot-file convention.
func IsHidden(name, path string) bool {
	return strings.HasPrefix(name, ".")
}
