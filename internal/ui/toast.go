package ui

import (
	"strings"

	"github.com/justyntemme/cryptum/internal/app"
)

// renderNotices prints one line per notice, prefixed by its severity.
func (r *Renderer) renderNotices(notices []app.Notice) string {
	if len(notices) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, n := range notices {
		style := r.styles.Info
		switch n.Severity {
		case app.SeverityWarning:
			style = r.styles.Warning
		case app.SeverityError:
			style = r.styles.Error
		}
		sb.WriteString(style.Render(n.Severity.String() + ": " + n.Text))
		sb.WriteByte('\n')
	}
	return sb.String()
}
