package statusbar

import (
	"strings"

	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/types"
)

// GetHints returns the keybinding hints for the given mode. In navigate
// mode the hints come from the configured keymap.
func GetHints(mode types.Mode, hints []keymap.Hint) string {
	switch mode {
	case types.ModeNavigating:
		parts := make([]string, 0, len(hints)+1)
		for _, h := range hints {
			parts = append(parts, h.Key+": "+h.Desc)
		}
		parts = append(parts, "enter: run")
		return strings.Join(parts, "  ")
	case types.ModeEditing:
		return "enter: submit  esc: cancel"
	case types.ModeConfirmDelete:
		return "y/enter: confirm  n/esc: cancel"
	default:
		return ""
	}
}
