package ui

import "github.com/charmbracelet/lipgloss"

// Palette is one color scheme. Light and dark match the two editor themes.
type Palette struct {
	Text      lipgloss.Color
	Muted     lipgloss.Color
	Directory lipgloss.Color
	Hidden    lipgloss.Color
	Selected  lipgloss.Color
	Accent    lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color
	Danger    lipgloss.Color
	StatusBg  lipgloss.Color
	StatusFg  lipgloss.Color
}

var (
	lightPalette = Palette{
		Text:      lipgloss.Color("#000000"),
		Muted:     lipgloss.Color("#646464"),
		Directory: lipgloss.Color("#000080"),
		Hidden:    lipgloss.Color("#969696"),
		Selected:  lipgloss.Color("#C8DCFF"),
		Accent:    lipgloss.Color("#4285F4"),
		Success:   lipgloss.Color("#28A745"),
		Warning:   lipgloss.Color("#8B4500"),
		Danger:    lipgloss.Color("#DC3545"),
		StatusBg:  lipgloss.Color("#F5F5F5"),
		StatusFg:  lipgloss.Color("#333333"),
	}
	darkPalette = Palette{
		Text:      lipgloss.Color("#E6E6E6"),
		Muted:     lipgloss.Color("#9A9A9A"),
		Directory: lipgloss.Color("#8AB4F8"),
		Hidden:    lipgloss.Color("#6E6E6E"),
		Selected:  lipgloss.Color("#264F78"),
		Accent:    lipgloss.Color("#8AB4F8"),
		Success:   lipgloss.Color("#81C995"),
		Warning:   lipgloss.Color("#FDD663"),
		Danger:    lipgloss.Color("#F28B82"),
		StatusBg:  lipgloss.Color("#2D2D2D"),
		StatusFg:  lipgloss.Color("#CCCCCC"),
	}
)

// Styles are the rendered forms of a Palette.
type Styles struct {
	Title     lipgloss.Style
	Folder    lipgloss.Style
	File      lipgloss.Style
	Directory lipgloss.Style
	Hidden    lipgloss.Style
	Selected  lipgloss.Style
	Index     lipgloss.Style
	Status    lipgloss.Style
	Info      lipgloss.Style
	Warning   lipgloss.Style
	Error     lipgloss.Style
	Match     lipgloss.Style
	Prompt    lipgloss.Style
}

// NewStyles builds the styles for the light or dark scheme.
func NewStyles(dark bool) Styles {
	p := lightPalette
	if dark {
		p = darkPalette
	}
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(p.Text),
		Folder:    lipgloss.NewStyle().Foreground(p.Muted),
		File:      lipgloss.NewStyle().Foreground(p.Text),
		Directory: lipgloss.NewStyle().Bold(true).Foreground(p.Directory),
		Hidden:    lipgloss.NewStyle().Foreground(p.Hidden),
		Selected:  lipgloss.NewStyle().Background(p.Selected),
		Index:     lipgloss.NewStyle().Foreground(p.Muted).Width(4).Align(lipgloss.Right),
		Status:    lipgloss.NewStyle().Foreground(p.StatusFg).Background(p.StatusBg).Padding(0, 1),
		Info:      lipgloss.NewStyle().Foreground(p.Success),
		Warning:   lipgloss.NewStyle().Foreground(p.Warning),
		Error:     lipgloss.NewStyle().Bold(true).Foreground(p.Danger),
		Match:     lipgloss.NewStyle().Underline(true).Foreground(p.Accent),
		Prompt:    lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
	}
}
