// Package ui is the terminal front end. It renders orchestrator views as text
// and turns typed commands into intents.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/justyntemme/cryptum/internal/app"
	"github.com/justyntemme/cryptum/internal/finder"
)

// Renderer draws views. It is not safe for concurrent use.
type Renderer struct {
	Width  int
	dark   bool
	styles Styles
}

func NewRenderer() *Renderer {
	return &Renderer{Width: 80, styles: NewStyles(false)}
}

// SetDark switches the color scheme.
func (r *Renderer) SetDark(dark bool) {
	if r.dark == dark {
		return
	}
	r.dark = dark
	r.styles = NewStyles(dark)
}

// Render draws the whole screen for an event.
func (r *Renderer) Render(ev app.Event) string {
	v := ev.View
	r.SetDark(v.Settings.IsDark())

	var sb strings.Builder
	sb.WriteString(r.renderHeader(v))
	sb.WriteByte('\n')

	if v.Settings.ViewSidebar {
		if v.Folder == "" {
			sb.WriteString(r.renderRecent(v))
		} else {
			sb.WriteString(r.renderRows(v))
		}
	}
	if ev.Outcome.Matches != nil {
		sb.WriteString(r.renderMatches(ev.Outcome.Matches))
	}
	sb.WriteString(r.renderNotices(ev.Outcome.Notices))
	sb.WriteString(r.renderStatus(v))
	sb.WriteByte('\n')
	return sb.String()
}

func (r *Renderer) renderHeader(v app.View) string {
	header := r.styles.Title.Render(v.Title)
	if v.Folder != "" {
		header = lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", r.styles.Folder.Render(v.Folder))
	}
	return header
}

// renderStatus is the bar at the bottom: file type, cursor and document size
// on the left, editor preferences on the right.
func (r *Renderer) renderStatus(v app.View) string {
	fileType := v.Status.FileType
	if fileType == "" {
		fileType = "Plain Text"
	}
	left := strings.Join([]string{fileType, v.Status.Cursor, humanize.Bytes(uint64(v.Size))}, "  ")

	indent := fmt.Sprintf("Tab Width: %d", v.Settings.EditorTabWidth)
	if v.Settings.EditorUseSpacesForTabs {
		indent = fmt.Sprintf("Spaces: %d", v.Settings.EditorTabWidth)
	}
	right := indent + "  " + v.Settings.EditorTheme

	gap := r.Width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if gap < 2 {
		gap = 2
	}
	return r.styles.Status.Render(left + strings.Repeat(" ", gap) + right)
}

func (r *Renderer) renderRecent(v app.View) string {
	if len(v.Recent) == 0 {
		return r.styles.Folder.Render("No folder open. Type \"help\" for commands.") + "\n"
	}
	var sb strings.Builder
	sb.WriteString(r.styles.Folder.Render("Recent:") + "\n")
	for _, rec := range v.Recent {
		sb.WriteString(fmt.Sprintf("  %-7s %s  %s\n", rec.Kind, rec.Path,
			r.styles.Folder.Render(humanize.Time(rec.OpenedAt))))
	}
	return sb.String()
}

func (r *Renderer) renderMatches(matches []finder.Match) string {
	if len(matches) == 0 {
		return r.styles.Folder.Render("No matching files.") + "\n"
	}
	var sb strings.Builder
	for i, m := range matches {
		sb.WriteString(r.styles.Index.Render(fmt.Sprintf("%d", i+1)))
		sb.WriteString(" ")
		sb.WriteString(r.highlight(m.Rel, m.Indexes))
		sb.WriteByte('\n')
	}
	return sb.String()
}

// highlight styles the matched positions of s.
func (r *Renderer) highlight(s string, indexes []int) string {
	if len(indexes) == 0 {
		return s
	}
	hit := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		hit[i] = true
	}
	var sb strings.Builder
	for i, ch := range s {
		if hit[i] {
			sb.WriteString(r.styles.Match.Render(string(ch)))
		} else {
			sb.WriteRune(ch)
		}
	}
	return sb.String()
}
