package app

import (
	"github.com/atotto/clipboard"

	"github.com/justyntemme/cryptum/internal/config"
	"github.com/justyntemme/cryptum/internal/store"
	"github.com/justyntemme/cryptum/internal/trash"
)

// Trasher moves a path to the platform trash.
type Trasher interface {
	MoveToTrash(path string) error
}

// TrasherFunc adapts a function to Trasher.
type TrasherFunc func(path string) error

func (f TrasherFunc) MoveToTrash(path string) error { return f(path) }

// SystemTrash is the platform trash.
var SystemTrash Trasher = TrasherFunc(trash.MoveToTrash)

// Launcher opens a path in an external program.
type Launcher interface {
	Open(path string) error
}

type LauncherFunc func(path string) error

func (f LauncherFunc) Open(path string) error { return f(path) }

// SystemLauncher uses xdg-open, open or explorer depending on the platform.
var SystemLauncher Launcher = LauncherFunc(platformOpen)

// Clipboard receives copied text.
type Clipboard interface {
	WriteAll(text string) error
}

type systemClipboard struct{}

func (systemClipboard) WriteAll(text string) error { return clipboard.WriteAll(text) }

// SystemClipboard is the OS clipboard.
var SystemClipboard Clipboard = systemClipboard{}

// Recents remembers opened files and folders.
type Recents interface {
	Record(path string, kind store.Kind) error
	Forget(path string) error
}

// Settings is the part of the settings store the coordinator uses.
type Settings interface {
	Get() config.Settings
	Set(key, value string) error
	SetHiddenFiles(on bool) error
	ToggleTheme() (string, error)
}

var (
	_ Recents  = (*store.DB)(nil)
	_ Settings = (*config.Store)(nil)
)
