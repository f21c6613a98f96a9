package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/mattn/go-runewidth"

	"github.com/dm/statusbadge/internal/engine"
	"github.com/dm/statusbadge/internal/format"
)

// maxNameWidth caps the service column; badge names can be arbitrarily long.
const maxNameWidth = 40

// RenderSummary renders a table of generated badges: one row per result,
// the status in its badge color, failed writes flagged.
func RenderSummary(results []engine.Result, dir string) string {
	written := 0
	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(StyleDim).
		Headers("SERVICE", "STATUS", "FILE", "SIZE").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return StyleTableHeader
			}
			return StyleTableCell
		})

	for _, r := range results {
		name := runewidth.Truncate(r.Entry.Name, maxNameWidth, "…")
		status := StatusStyle(r.Entry.Color).Render("● " + r.Entry.Status)
		if r.Err != nil {
			t.Row(name, status, StyleError.Render("write failed"), "---")
			continue
		}
		written++
		t.Row(name, status, filepath.Base(r.Path), format.FormatBytes(int64(r.Size)))
	}

	var b strings.Builder
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%d of %d badges written to %s", written, len(results), dir)))
	b.WriteString("\n")
	b.WriteString(t.Render())
	b.WriteString("\n")
	return b.String()
}
