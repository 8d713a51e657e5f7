package board

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/ui/styles"
)

// commandMarker follows todos that run a command on Enter
const commandMarker = "⏎"

// renderList renders a note's todo items in a bordered box. The selected
// item is prefixed with the highlight symbol and kept in view.
func renderList(note domain.StickyNote, selected int, highlight string, s *styles.Styles, width, height int) string {
	inner := width - 4
	rows := height - 3 // border + title line

	lines := []string{ansi.Truncate(s.Titles.Render(note.Title), inner, "…")}

	if len(note.Items) == 0 {
		lines = append(lines, s.Empty.Render("nothing to do"))
	}

	offset := 0
	if selected >= rows && rows > 0 {
		offset = selected - rows + 1
	}

	blank := strings.Repeat(" ", ansi.StringWidth(highlight))
	for i := offset; i < len(note.Items) && i-offset < rows; i++ {
		lines = append(lines, renderItem(note.Items[i], i == selected, highlight, blank, s, inner))
	}

	return s.BoxActive.
		Width(width - 2).
		Height(height - 2).
		Render(strings.Join(lines, "\n"))
}

func renderItem(item domain.TodoItem, selected bool, highlight, blank string, s *styles.Styles, width int) string {
	style := s.Text
	if selected {
		style = s.Highlight
	}
	if item.Done {
		style = style.Inherit(s.Done).Strikethrough(true).Italic(false)
	}

	prefix := blank
	if selected {
		prefix = highlight
	}

	text := item.Text
	marker := ""
	if item.HasCommand() {
		marker = " " + s.Command.Render(commandMarker)
	}

	avail := width - ansi.StringWidth(prefix) - 1 - ansi.StringWidth(marker)
	if avail < 1 {
		avail = 1
	}
	text = ansi.Truncate(text, avail, "…")

	return style.Render(prefix+" "+text) + marker
}
