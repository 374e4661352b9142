package ui

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/justyntemme/cryptum/internal/app"
	"github.com/justyntemme/cryptum/internal/debug"
)

// EventMsg carries one orchestrator event into the program.
type EventMsg struct {
	Event app.Event
}

// EventsClosedMsg is sent when the orchestrator stops publishing.
type EventsClosedMsg struct{}

// Model is the bubbletea front end. Typed lines become intents that are sent
// to the orchestrator; every event it publishes redraws the screen. A new line
// is accepted only after the event for the previous intent arrived.
type Model struct {
	ctx  context.Context
	orch *app.Orchestrator
	r    *Renderer

	input  textinput.Model
	last   app.Event
	ready  bool
	dialog app.Dialog
	sent   app.Intent
	// output holds help text or a parse error until the next command.
	output string
}

// NewModel builds the front end for o. ctx bounds the commands that talk to
// the orchestrator.
func NewModel(ctx context.Context, o *app.Orchestrator) Model {
	ti := textinput.New()
	ti.Prompt = prompt(app.DialogNone)
	ti.Placeholder = "help"
	ti.Focus()
	return Model{ctx: ctx, orch: o, r: NewRenderer(), input: ti}
}

func prompt(d app.Dialog) string {
	switch d {
	case app.DialogOpenFile:
		return "Open file: "
	case app.DialogOpenFolder:
		return "Open folder: "
	case app.DialogSaveAs:
		return "Save as: "
	default:
		return "> "
	}
}

// response maps a dialog answer to its intent. An empty answer cancels.
func response(d app.Dialog, line string) app.Intent {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}
	switch d {
	case app.DialogOpenFile:
		return app.OpenResponse{Path: line}
	case app.DialogOpenFolder:
		return app.FolderResponse{Path: line}
	case app.DialogSaveAs:
		return app.SaveAsResponse{Path: line}
	}
	return nil
}

// listenForEvents waits for the next orchestrator event.
func listenForEvents(ctx context.Context, ch <-chan app.Event) tea.Cmd {
	return func() tea.Msg {
		select {
		case ev, ok := <-ch:
			if !ok {
				return EventsClosedMsg{}
			}
			return EventMsg{Event: ev}
		case <-ctx.Done():
			return EventsClosedMsg{}
		}
	}
}

// sendIntent hands in to the orchestrator loop.
func sendIntent(ctx context.Context, requests chan<- app.Intent, in app.Intent) tea.Cmd {
	return func() tea.Msg {
		select {
		case requests <- in:
		case <-ctx.Done():
		}
		return nil
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(listenForEvents(m.ctx, m.orch.Events), textinput.Blink)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.r.Width = msg.Width
		if w := msg.Width - len(m.input.Prompt) - 1; w > 0 {
			m.input.Width = w
		}
		return m, nil

	case EventMsg:
		ev := msg.Event
		m.last = ev
		m.ready = true
		if ev.Outcome.Dialog != app.DialogNone {
			m.dialog = ev.Outcome.Dialog
			m.input.Prompt = prompt(m.dialog)
		}
		if m.sent != nil && ev.Intent == m.sent {
			m.sent = nil
		}
		return m, listenForEvents(m.ctx, m.orch.Events)

	case EventsClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyCtrlD:
			return m, tea.Quit
		case tea.KeyEnter:
			if !m.ready || m.sent != nil {
				return m, nil
			}
			line := m.input.Value()
			m.input.Reset()
			return m.submit(line)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit turns one line into an intent, or answers the open dialog.
func (m Model) submit(line string) (tea.Model, tea.Cmd) {
	m.output = ""

	var in app.Intent
	if m.dialog != app.DialogNone {
		in = response(m.dialog, line)
		m.dialog = app.DialogNone
		m.input.Prompt = prompt(m.dialog)
	} else {
		var err error
		in, err = Parse(line, m.last.View)
		switch {
		case errors.Is(err, ErrQuit):
			return m, tea.Quit
		case errors.Is(err, ErrHelp):
			m.output = Help()
		case err != nil:
			m.output = m.r.styles.Error.Render(err.Error()) + "\n"
		}
	}
	if in == nil {
		return m, nil
	}

	debug.Log(debug.UI, "command", zap.String("intent", app.IntentName(in)))
	m.sent = in
	return m, sendIntent(m.ctx, m.orch.Requests, in)
}

func (m Model) View() string {
	if !m.ready {
		return "loading...\n"
	}
	var sb strings.Builder
	sb.WriteString(m.r.Render(m.last))
	sb.WriteString(m.output)
	sb.WriteString(m.r.styles.Prompt.Render(m.input.View()))
	sb.WriteByte('\n')
	return sb.String()
}

// Console runs the orchestrator loop and the bubbletea program side by side.
type Console struct {
	orch *app.Orchestrator
	in   io.Reader
	out  io.Writer
	// Width is used until the terminal reports its size.
	Width   int
	options []tea.ProgramOption
}

func NewConsole(o *app.Orchestrator, in io.Reader, out io.Writer, opts ...tea.ProgramOption) *Console {
	return &Console{orch: o, in: in, out: out, Width: 80, options: opts}
}

// Run starts the orchestrator with startPath and blocks until the user quits
// or ctx is done.
func (c *Console) Run(ctx context.Context, startPath string) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	runErr := make(chan error, 1)
	go func() { runErr <- c.orch.Run(ctx, startPath) }()

	m := NewModel(ctx, c.orch)
	m.r.Width = c.Width

	opts := append([]tea.ProgramOption{
		tea.WithContext(ctx),
		tea.WithInput(c.in),
		tea.WithOutput(c.out),
	}, c.options...)
	_, err := tea.NewProgram(m, opts...).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		// Interrupted from outside; not a failure of the program.
		err = nil
	}

	cancel()
	if orchErr := <-runErr; err == nil {
		err = orchErr
	}
	return err
}
