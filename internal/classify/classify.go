// Package classify answers the cheap questions the editor asks about a path:
// what kind of entry it is, whether it is hidden and which language label the
// status bar should show for it.
package classify

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/justyntemme/cryptum/internal/fs"
)

// Info is the result of Classify.
type Info struct {
	Kind   fs.Kind
	Hidden bool
}

// Classify stats path and reports its kind and hidden flag. Unreadable
// metadata yields Kind Other and Hidden false.
func Classify(path string) Info {
	info, err := os.Lstat(path)
	if err != nil {
		return Info{Kind: fs.KindOther}
	}
	if info.Mode()&os.ModeSymlink != 0 {
		target, err := os.Stat(path)
		if err != nil {
			return Info{Kind: fs.KindOther}
		}
		info = target
	}
	return Info{
		Kind:   fs.KindOf(info.Mode()),
		Hidden: fs.IsHidden(filepath.Base(path), path),
	}
}

var labels = map[string]string{
	"txt":   "Text File",
	"md":    "Markdown File",
	"html":  "HTML File",
	"css":   "CSS File",
	"hbs":   "Handlebars File",
	"hxml":  "Haxe Build File",
	"xml":   "XML File",
	"xaml":  "XAML File",
	"axaml": "AXAML File",
	"org":   "Org Mode File",
	"norg":  "Neorg File",
	"ini":   "INI File",
	"toml":  "TOML File",
	"json":  "JSON File",
	"jsonc": "JSONC File",
	"base":  "Obsidian Base File",
	"sh":    "Shell Script",
	"ps1":   "PowerShell Script",
	"fish":  "Fish Script",
	"rs":    "Rust Source File",
	"cr":    "Crystal Source File",
	"elm":   "Elm Source File",
	"ex":    "Elixir Source File",
	"exs":   "Elixir Script File",
	"gd":    "GDScript Source File",
	"rb":    "Ruby Source File",
	"py":    "Python Source File",
	"lua":   "Lua Source File",
	"c":     "C Source File",
	"h":     "Header File",
	"ml":    "OCaml Source File",
	"cs":    "C# Source File",
	"php":   "PHP Source File",
	"ts":    "TypeScript Source File",
	"js":    "JavaScript Source File",
	"jl":    "Julia Source File",
	"lisp":  "Common Lisp Source File",
	"el":    "ELisp Source File",
	"erl":   "Erlang Source File",
	"hrl":   "Erlang Header File",
	"hx":    "Haxe Source File",
	"v":     "V Source File",
	"vim":   "Vimscript File",
	"vimrc": "Vimscript File",
	"vala":  "Vala Source File",
	"zig":   "Zig Source File",
	"go":    "Go Source File",
}

// LanguageLabel maps the extension of path to a display label. The lookup is
// exact and case sensitive.
func LanguageLabel(path string) (string, bool) {
	ext := Extension(path)
	if ext == "" {
		return "", false
	}
	label, ok := labels[ext]
	return label, ok
}

// Extension returns the extension of path without the leading dot. The
// leading dot of a dot file is part of its name, so ".vimrc" has no
// extension while ".config.toml" has "toml".
func Extension(path string) string {
	name := strings.TrimPrefix(filepath.Base(path), ".")
	return strings.TrimPrefix(filepath.Ext(name), ".")
}
