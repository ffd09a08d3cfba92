package tui

import (
	"strings"

	"github.com/charmbracelet/x/ansi"

	"github.com/runlens/runlens/internal/parser"
)

// RenderSectionText renders a section as plain text. Tables get padded
// columns with a header rule, key-value sections aligned labels, and text
// blocks come back verbatim. The output carries no styling, so it serves
// both the viewport content and the parse subcommand.
func RenderSectionText(sec parser.Section) string {
	switch sec.Kind {
	case parser.KindTextBlock:
		return sec.Text()
	case parser.KindKeyValue:
		return renderKeyValueText(sec)
	default:
		return renderTableText(sec)
	}
}

func renderKeyValueText(sec parser.Section) string {
	labelWidth := 0
	for _, row := range sec.Rows {
		if len(row.Cells) > 0 {
			labelWidth = max(labelWidth, ansi.StringWidth(row.Cells[0]))
		}
	}

	lines := make([]string, 0, len(sec.Rows))
	for _, row := range sec.Rows {
		var label, value string
		if len(row.Cells) > 0 {
			label = row.Cells[0]
		}
		if len(row.Cells) > 1 {
			value = strings.Join(row.Cells[1:], "  ")
		}
		line := padRight(label, labelWidth) + "  " + value
		lines = append(lines, strings.TrimRight(line, " "))
	}
	return strings.Join(lines, "\n")
}

func renderTableText(sec parser.Section) string {
	widths := columnWidths(sec)
	ruleWidth := 0
	for _, w := range widths {
		ruleWidth += w
	}
	if len(widths) > 1 {
		ruleWidth += 2 * (len(widths) - 1)
	}

	var lines []string
	if len(sec.Columns) > 0 {
		lines = append(lines, joinCells(sec.Columns, widths))
		lines = append(lines, strings.Repeat("-", ruleWidth))
	}
	for _, row := range sec.Rows {
		if row.Total {
			lines = append(lines, strings.Repeat("-", ruleWidth))
		}
		lines = append(lines, joinCells(row.Cells, widths))
	}
	return strings.Join(lines, "\n")
}

// columnWidths computes per-column widths over the header and every row.
func columnWidths(sec parser.Section) []int {
	widths := make([]int, 0, len(sec.Columns))
	for _, col := range sec.Columns {
		widths = append(widths, ansi.StringWidth(col))
	}
	for _, row := range sec.Rows {
		for i, cell := range row.Cells {
			w := ansi.StringWidth(cell)
			if i >= len(widths) {
				widths = append(widths, w)
			} else if w > widths[i] {
				widths[i] = w
			}
		}
	}
	return widths
}

// joinCells pads each cell to its column width with a two-space gutter.
// The last cell stays unpadded so lines carry no trailing spaces.
func joinCells(cells []string, widths []int) string {
	parts := make([]string, len(cells))
	for i, cell := range cells {
		if i == len(cells)-1 {
			parts[i] = cell
			continue
		}
		w := 0
		if i < len(widths) {
			w = widths[i]
		}
		parts[i] = padRight(cell, w)
	}
	return strings.TrimRight(strings.Join(parts, "  "), " ")
}

func padRight(s string, width int) string {
	if gap := width - ansi.StringWidth(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
