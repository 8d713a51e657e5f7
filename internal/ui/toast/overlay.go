package toast

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

// overlay draws top over the bottom-right corner of base, cell by cell,
// keeping the styled text of base on either side of it
func overlay(base, top string, width, height int) string {
	lines := strings.Split(base, "\n")
	for len(lines) < height {
		lines = append(lines, "")
	}

	topLines := strings.Split(top, "\n")
	topWidth := lipgloss.Width(top)
	col := max(width-topWidth, 0)
	row := max(height-len(topLines), 0)

	for i, tl := range topLines {
		y := row + i
		if y >= len(lines) {
			break
		}
		line := lines[y]
		left := ansi.Truncate(line, col, "")
		if pad := col - ansi.StringWidth(left); pad > 0 {
			left += strings.Repeat(" ", pad)
		}
		right := ansi.TruncateLeft(line, col+ansi.StringWidth(tl), "")
		lines[y] = left + tl + right
	}

	return strings.Join(lines, "\n")
}
