// Package board renders the sticky-note board: a header with the app
// title and one tab per note, the current note's todo list and its free
// notes side by side.
package board

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/ui/styles"
)

// Options are the display settings that do not change between frames
type Options struct {
	Title     string
	Highlight string    // symbol in front of the selected todo
	Markdown  *Markdown // nil renders free notes as plain text
}

// headerHeight is the bordered title + tab bar block
const headerHeight = 4

// minSplitWidth is the narrowest frame that still shows the notes panel
const minSplitWidth = 48

// Render renders the whole board into width x height cells
func Render(b *domain.Board, opts Options, s *styles.Styles, width, height int) string {
	if width <= 4 || height <= headerHeight {
		return ""
	}

	header := renderHeader(b, opts.Title, s, width)
	bodyHeight := height - lipgloss.Height(header)
	if bodyHeight < 3 {
		return header
	}

	note, ok := b.Current()
	if !ok {
		empty := s.Box.
			Width(width - 2).
			Height(bodyHeight - 2).
			Render(s.Empty.Render("No sticky notes yet."))
		return lipgloss.JoinVertical(lipgloss.Left, header, empty)
	}

	if width < minSplitWidth {
		list := renderList(note, b.Selection.Item, opts.Highlight, s, width, bodyHeight)
		return lipgloss.JoinVertical(lipgloss.Left, header, list)
	}

	listWidth := width * 3 / 5
	notesWidth := width - listWidth
	list := renderList(note, b.Selection.Item, opts.Highlight, s, listWidth, bodyHeight)
	notes := renderNotes(note, opts.Markdown, s, notesWidth, bodyHeight)

	body := lipgloss.JoinHorizontal(lipgloss.Top, list, notes)
	return lipgloss.JoinVertical(lipgloss.Left, header, body)
}
