package formatter

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// RenderTable renders an aligned table with a header separator line.
// Column widths follow the widest visible cell; ANSI sequences are measured
// with lipgloss.Width so colored cells align correctly.
func RenderTable(headers []string, rows [][]string) string {
	if len(headers) == 0 {
		return ""
	}

	cols := len(headers)
	widths := make([]int, cols)
	for i, h := range headers {
		if w := lipgloss.Width(h); w > widths[i] {
			widths[i] = w
		}
	}
	for _, row := range rows {
		for i := 0; i < cols && i < len(row); i++ {
			if w := lipgloss.Width(row[i]); w > widths[i] {
				widths[i] = w
			}
		}
	}

	const colGap = 2
	var b strings.Builder

	for i, h := range headers {
		b.WriteString(StyleHeader.Render(h))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", widths[i]-lipgloss.Width(h)+colGap))
		}
	}
	b.WriteByte('\n')

	for i, w := range widths {
		b.WriteString(StyleDim.Render(strings.Repeat("─", w)))
		if i < cols-1 {
			b.WriteString(strings.Repeat(" ", colGap))
		}
	}
	b.WriteByte('\n')

	for _, row := range rows {
		for i := 0; i < cols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			pad := widths[i] - lipgloss.Width(cell)
			if pad < 0 {
				pad = 0
			}
			b.WriteString(cell)
			if i < cols-1 {
				b.WriteString(strings.Repeat(" ", pad+colGap))
			}
		}
		b.WriteByte('\n')
	}

	return b.String()
}

// RenderSkeleton renders a placeholder table body shown while a list is
// loading: the real headers over dim blocks, so the layout doesn't jump
// when data arrives.
func RenderSkeleton(headers []string, lines int) string {
	if lines <= 0 {
		lines = 3
	}
	rows := make([][]string, lines)
	for i := range rows {
		row := make([]string, len(headers))
		for j, h := range headers {
			n := lipgloss.Width(h)
			if n < 6 {
				n = 6
			}
			row[j] = StyleDim.Render(strings.Repeat("░", n))
		}
		rows[i] = row
	}
	return RenderTable(headers, rows)
}
