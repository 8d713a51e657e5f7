package board

import (
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/ui/styles"
)

// renderHeader renders the title and tab bar in a bordered block
func renderHeader(b *domain.Board, title string, s *styles.Styles, width int) string {
	inner := width - 4 // border + padding

	titleLine := ansi.Truncate(s.Titles.Render(title), inner, "…")

	var tabs []string
	for i, n := range b.Notes {
		label := n.Title
		if label == "" {
			label = "untitled"
		}
		if i == b.Selection.Note {
			tabs = append(tabs, s.TabActive.Render(label))
		} else {
			tabs = append(tabs, s.Tabs.Render(label))
		}
	}

	tabLine := s.Empty.Render("press the new-sticky key to add a note")
	if len(tabs) > 0 {
		tabLine = strings.Join(tabs, s.TabSep.Render(" │ "))
	}
	tabLine = ansi.Truncate(tabLine, inner, "…")

	return s.Box.Width(width - 2).Render(titleLine + "\n" + tabLine)
}
