package stats

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

// alignTable lays out a header and rows as space-separated columns sized to
// their widest cell. Columns listed in numeric are right-aligned. Trailing
// blanks are trimmed from every line.
func alignTable(header []string, rows [][]string, numeric map[int]bool) []string {
	widths := columnWidths(header, rows)
	if len(widths) == 0 {
		return nil
	}
	lines := make([]string, 0, len(rows)+1)
	if len(header) > 0 {
		lines = append(lines, joinCells(header, widths, numeric))
	}
	for _, row := range rows {
		lines = append(lines, joinCells(row, widths, numeric))
	}
	return lines
}

// columnWidths returns the display width of the widest cell per column.
// Short rows count as empty cells.
func columnWidths(header []string, rows [][]string) []int {
	var widths []int
	grow := func(cells []string) {
		for i, cell := range cells {
			if i == len(widths) {
				widths = append(widths, 0)
			}
			widths[i] = max(widths[i], cellWidth(cell))
		}
	}
	grow(header)
	for _, row := range rows {
		grow(row)
	}
	return widths
}

func joinCells(cells []string, widths []int, numeric map[int]bool) string {
	parts := make([]string, len(widths))
	for i, width := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		parts[i] = padTo(cell, width, numeric[i])
	}
	return strings.TrimRight(strings.Join(parts, " "), " ")
}

func padTo(cell string, width int, right bool) string {
	gap := strings.Repeat(" ", max(width-cellWidth(cell), 0))
	if right {
		return gap + cell
	}
	return cell + gap
}

// cellWidth counts terminal cells so CJK dictionary names line up.
func cellWidth(s string) int {
	return runewidth.StringWidth(s)
}
