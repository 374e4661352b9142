//go:build linux

package app

import "os/exec"

// platformOpen hands path to the desktop's default handler.
func platformOpen(path string) error {
	return exec.Command("xdg-open", path).Start()
}
