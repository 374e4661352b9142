//go:build darwin

package app

import "os/exec"

// platformOpen opens path with the macOS 'open' command, which shows folders
// in Finder.
func platformOpen(path string) error {
	return exec.Command("open", path).Start()
}
