package board

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/ui/styles"
)

// renderNotes renders a note's free-text notes, newest last, clipped to
// the box height
func renderNotes(note domain.StickyNote, md *Markdown, s *styles.Styles, width, height int) string {
	inner := width - 4
	rows := height - 3

	lines := []string{s.Titles.Render("Notes")}

	if len(note.Notes) == 0 {
		lines = append(lines, s.Empty.Render("no notes"))
	}

	var body []string
	for _, text := range note.Notes {
		var rendered string
		if md != nil {
			rendered = md.Render(text, inner)
		} else {
			rendered = s.Normal.Width(inner).Render(text)
		}
		body = append(body, strings.Split(rendered, "\n")...)
	}

	// Keep the most recent notes visible
	if len(body) > rows && rows > 0 {
		body = body[len(body)-rows:]
	}
	for _, line := range body {
		lines = append(lines, ansi.Truncate(line, inner, ""))
	}

	return s.Box.
		Width(width - 2).
		Height(height - 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
