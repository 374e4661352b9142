//go:build windows

package app

import "os/exec"

// platformOpen shows path in Explorer.
func platformOpen(path string) error {
	return exec.Command("explorer", path).Start()
}
