package ui

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/justyntemme/cryptum/internal/app"
	"github.com/justyntemme/cryptum/internal/trash"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrQuit           = errors.New("quit")
	ErrHelp           = errors.New("help")
)

type command struct {
	usage string
	help  string
	build func(arg string, v app.View) (app.Intent, error)
}

func fixed(in app.Intent) func(string, app.View) (app.Intent, error) {
	return func(string, app.View) (app.Intent, error) { return in, nil }
}

// pathOr opens a dialog when no path is given.
func pathOr(dialog app.Intent, with func(string) app.Intent) func(string, app.View) (app.Intent, error) {
	return func(arg string, _ app.View) (app.Intent, error) {
		if arg == "" {
			return dialog, nil
		}
		return with(arg), nil
	}
}

func onRow(with func(row int, v app.View) app.Intent) func(string, app.View) (app.Intent, error) {
	return func(arg string, v app.View) (app.Intent, error) {
		n, err := strconv.Atoi(arg)
		if err != nil || n < 1 || n > len(v.Rows) {
			return nil, fmt.Errorf("no row %q", arg)
		}
		return with(n-1, v), nil
	}
}

var unescape = strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`)

var commands = map[string]command{
	"new":   {"new", "start an empty document", fixed(app.NewDocument{})},
	"clear": {"clear", "clear the editor, keep the file", fixed(app.ClearEditor{})},
	"open": {"open [path]", "open a file", pathOr(app.OpenFileRequest{}, func(p string) app.Intent {
		return app.OpenFile{Path: p}
	})},
	"folder": {"folder [path]", "open a folder in the sidebar", pathOr(app.OpenFolderRequest{}, func(p string) app.Intent {
		return app.OpenFolder{Path: p}
	})},
	"save": {"save", "save the document", fixed(app.SaveFile{})},
	"saveas": {"saveas [path]", "save under a new name", pathOr(app.SaveAsRequest{}, func(p string) app.Intent {
		return app.SaveAs{Path: p}
	})},
	"delete":  {"delete", strings.ToLower(trash.VerbPhrase()), fixed(app.DeleteSelection{})},
	"up":      {"up", "open the parent folder", fixed(app.NavigateUp{})},
	"hidden":  {"hidden", "show or hide hidden files", fixed(app.ToggleHiddenFiles{})},
	"browse":  {"browse", "open the folder in the file manager", fixed(app.OpenInExternalBrowser{})},
	"theme":   {"theme", "switch between light and dark", fixed(app.ToggleTheme{})},
	"copy":    {"copy", "copy the selected path", fixed(app.CopyPath{})},
	"refresh": {"refresh [path]", "re-read a folder", func(arg string, _ app.View) (app.Intent, error) {
		return app.RefreshFolder{Path: arg}, nil
	}},
	"select": {"select <row>", "select a row; opens files, toggles folders", onRow(func(i int, v app.View) app.Intent {
		return app.Select{Node: v.Rows[i].ID}
	})},
	"expand": {"expand <row>", "expand a folder", onRow(func(i int, v app.View) app.Intent {
		return app.Expand{Node: v.Rows[i].ID}
	})},
	"collapse": {"collapse <row>", "collapse a folder", onRow(func(i int, v app.View) app.Intent {
		return app.Collapse{Node: v.Rows[i].ID}
	})},
	"set": {"set <key> <value>", "change a setting", func(arg string, _ app.View) (app.Intent, error) {
		key, value, ok := strings.Cut(arg, " ")
		if !ok || key == "" {
			return nil, errors.New("usage: set <key> <value>")
		}
		return app.SetSetting{Key: key, Value: strings.TrimSpace(value)}, nil
	}},
	"find": {"find <query>", "fuzzy find files in the folder", func(arg string, _ app.View) (app.Intent, error) {
		return app.QuickOpen{Query: arg}, nil
	}},
	"insert": {"insert <text>", `insert text at the cursor (\n for newline)`, func(arg string, _ app.View) (app.Intent, error) {
		return app.InsertText{Text: unescape.Replace(arg)}, nil
	}},
	"goto": {"goto <offset>", "move the cursor to a character offset", func(arg string, _ app.View) (app.Intent, error) {
		n, err := strconv.Atoi(arg)
		if err != nil {
			return nil, fmt.Errorf("goto: %w", err)
		}
		return app.MoveCursor{Offset: n}, nil
	}},
}

// Parse turns one input line into an intent. Row numbers refer to v.Rows.
func Parse(line string, v app.View) (app.Intent, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, nil
	}
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "quit", "exit", "q":
		return nil, ErrQuit
	case "help", "?":
		return nil, ErrHelp
	}
	cmd, ok := commands[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCommand, name)
	}
	return cmd.build(arg, v)
}

// Help lists the commands.
func Help() string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		c := commands[name]
		fmt.Fprintf(&sb, "  %-20s %s\n", c.usage, c.help)
	}
	fmt.Fprintf(&sb, "  %-20s %s\n", "quit", "leave the editor")
	return sb.String()
}
