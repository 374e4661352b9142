package ui

import (
	"fmt"
	"strings"

	"github.com/justyntemme/cryptum/internal/app"
	"github.com/justyntemme/cryptum/internal/fs"
	"github.com/justyntemme/cryptum/internal/tree"
)

// renderRows draws the sidebar tree. Rows are numbered from 1; commands
// refer to them by that number.
func (r *Renderer) renderRows(v app.View) string {
	if len(v.Rows) == 0 {
		return r.styles.Folder.Render("(empty)") + "\n"
	}
	var sb strings.Builder
	for i, row := range v.Rows {
		sb.WriteString(r.renderRow(i+1, row, row.ID == v.Selected))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (r *Renderer) renderRow(n int, row tree.Row, selected bool) string {
	marker := "  "
	if row.Kind == fs.KindDirectory {
		marker = "▸ "
		if row.Expanded {
			marker = "▾ "
		}
	}

	style := r.styles.File
	switch {
	case row.Hidden:
		style = r.styles.Hidden
	case row.Kind == fs.KindDirectory:
		style = r.styles.Directory
	}
	if selected {
		style = style.Inherit(r.styles.Selected)
	}

	return r.styles.Index.Render(fmt.Sprintf("%d", n)) + " " +
		strings.Repeat("  ", row.Depth) + marker + style.Render(row.Label)
}
