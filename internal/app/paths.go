package app

import (
	"os"
	"path/filepath"
	"strings"
)

// ExpandPath turns typed input into an absolute, clean path. It handles a
// leading "~" and resolves relative input against base.
func ExpandPath(input, base string) string {
	input = strings.TrimSpace(input)
	if input == "" {
		return base
	}

	if input == "~" || strings.HasPrefix(input, "~/") || strings.HasPrefix(input, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			if input == "~" {
				return home
			}
			return filepath.Clean(filepath.Join(home, input[2:]))
		}
	}

	if filepath.IsAbs(input) {
		return filepath.Clean(input)
	}
	if base == "" {
		if abs, err := filepath.Abs(input); err == nil {
			return abs
		}
	}
	return filepath.Clean(filepath.Join(base, input))
}

// within reports whether path is dir or lies below it.
func within(path, dir string) bool {
	if path == "" || dir == "" {
		return false
	}
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
