package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/app"
	"github.com/justyntemme/cryptum/internal/debug"
	"github.com/justyntemme/cryptum/internal/ui"
)

func main() {
	verbose := flag.Bool("debug", false, "Enable verbose debug logging")
	settings := flag.String("settings", "", "Settings file (default: user config directory)")
	noWatch := flag.Bool("no-watch", false, "Do not watch open folders for changes")
	noRecents := flag.Bool("no-recents", false, "Do not remember recent files and folders")
	width := flag.Int("width", 80, "Screen width until the terminal reports its size")
	flag.Parse()

	if err := debug.Init(*verbose); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer debug.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	o := app.NewOrchestrator(app.Options{
		SettingsPath: *settings,
		NoWatch:      *noWatch,
		NoRecents:    *noRecents,
	})
	c := ui.NewConsole(o, os.Stdin, os.Stdout, tea.WithAltScreen())
	c.Width = *width

	debug.Info("starting", zap.String("app", app.AppName), zap.Bool("debug", *verbose))
	if err := c.Run(ctx, flag.Arg(0)); err != nil {
		debug.Error("exited", zap.Error(err))
		os.Exit(1)
	}
}
