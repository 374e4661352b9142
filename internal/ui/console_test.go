package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justyntemme/cryptum/internal/app"
)

type session struct {
	t    *testing.T
	o    *app.Orchestrator
	m    Model
	root string
}

func newSession(t *testing.T) *session {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "pkg"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "main.go"), []byte("package main\n"), 0o644))

	o := app.NewOrchestrator(app.Options{
		SettingsPath: filepath.Join(t.TempDir(), "settings.json"),
		NoRecents:    true,
		NoWatch:      true,
	})
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go o.Run(ctx, "")

	s := &session{t: t, o: o, m: NewModel(ctx, o), root: root}
	assert.Equal(t, "loading...\n", s.m.View())
	s.next()
	require.True(t, s.m.ready)
	return s
}

// next feeds the next orchestrator event to the model.
func (s *session) next() {
	s.t.Helper()
	select {
	case ev := <-s.o.Events:
		updated, cmd := s.m.Update(EventMsg{Event: ev})
		s.m = updated.(Model)
		assert.NotNil(s.t, cmd)
	case <-time.After(5 * time.Second):
		s.t.Fatal("timed out waiting for event")
	}
}

// enter types line and presses enter.
func (s *session) enter(line string) tea.Cmd {
	s.t.Helper()
	s.m.input.SetValue(line)
	updated, cmd := s.m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	s.m = updated.(Model)
	return cmd
}

// run enters line, delivers the intent and waits for its event.
func (s *session) run(line string) {
	s.t.Helper()
	cmd := s.enter(line)
	if cmd == nil {
		return
	}
	assert.Nil(s.t, cmd())
	for s.m.sent != nil {
		s.next()
	}
}

func TestConsoleSession(t *testing.T) {
	s := newSession(t)
	mainGo := filepath.Join(s.root, "main.go")

	s.run("folder " + s.root)
	assert.Equal(t, s.root, s.m.last.View.Folder)
	assert.Contains(t, s.m.View(), "main.go")

	s.run("select 2")
	view := s.m.View()
	assert.Contains(t, view, "main.go - Cryptum Text")
	assert.Contains(t, view, "Go Source File")

	s.run(`insert // hi\n`)
	s.run("save")
	data, err := os.ReadFile(mainGo)
	require.NoError(t, err)
	assert.Equal(t, "// hi\npackage main\n", string(data))

	s.run("new")
	s.run("insert draft")
	s.run("save")
	assert.Equal(t, app.DialogSaveAs, s.m.dialog)
	assert.Contains(t, s.m.View(), "Save as: ")

	s.run("notes.txt")
	assert.Equal(t, app.DialogNone, s.m.dialog)
	data, err = os.ReadFile(filepath.Join(s.root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "draft", string(data))

	s.run("bogus")
	assert.Contains(t, s.m.View(), "unknown command: bogus")

	s.run("help")
	assert.Contains(t, s.m.View(), "leave the editor")

	cmd := s.enter("quit")
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsoleWaitsForPendingIntent(t *testing.T) {
	s := newSession(t)

	cmd := s.enter("folder " + s.root)
	require.NotNil(t, cmd)
	assert.NotNil(t, s.m.sent)

	// Enter is ignored until the orchestrator answers.
	assert.Nil(t, s.enter("up"))
	assert.Equal(t, "up", s.m.input.Value())

	assert.Nil(t, cmd())
	s.next()
	assert.Nil(t, s.m.sent)
}

func TestConsoleDialogCancel(t *testing.T) {
	s := newSession(t)

	s.run("open")
	assert.Equal(t, app.DialogOpenFile, s.m.dialog)
	assert.Equal(t, "Open file: ", s.m.input.Prompt)

	// An empty answer closes the prompt without sending anything.
	assert.Nil(t, s.enter(""))
	assert.Equal(t, app.DialogNone, s.m.dialog)
	assert.Equal(t, "> ", s.m.input.Prompt)
	assert.Nil(t, s.m.sent)
}

func TestConsoleKeysAndResize(t *testing.T) {
	s := newSession(t)

	updated, _ := s.m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("up")})
	s.m = updated.(Model)
	assert.Equal(t, "up", s.m.input.Value())

	updated, _ = s.m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	s.m = updated.(Model)
	assert.Equal(t, 120, s.m.r.Width)

	_, cmd := s.m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())

	_, cmd = s.m.Update(EventsClosedMsg{})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}

func TestConsoleRunStopsWithContext(t *testing.T) {
	o := app.NewOrchestrator(app.Options{
		SettingsPath: filepath.Join(t.TempDir(), "settings.json"),
		NoRecents:    true,
		NoWatch:      true,
	})
	in, w := io.Pipe()
	defer w.Close()

	c := NewConsole(o, in, io.Discard)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- c.Run(ctx, t.TempDir()) }()

	time.Sleep(100 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("console did not stop")
	}
}

func TestDialogResponse(t *testing.T) {
	assert.Equal(t, app.OpenResponse{Path: "a"}, response(app.DialogOpenFile, " a "))
	assert.Equal(t, app.FolderResponse{Path: "b"}, response(app.DialogOpenFolder, "b"))
	assert.Equal(t, app.SaveAsResponse{Path: "c"}, response(app.DialogSaveAs, "c"))
	assert.Nil(t, response(app.DialogSaveAs, "  "))
	assert.Equal(t, "> ", prompt(app.DialogNone))
}
