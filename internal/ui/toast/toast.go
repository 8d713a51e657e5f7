package toast

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/forget/internal/types"
	"github.com/riordanpawley/forget/internal/ui/styles"
)

// maxToastWidth caps the width of a single toast box
const maxToastWidth = 40

// ToastRenderer handles rendering of toast notifications
type ToastRenderer struct {
	styles *styles.Styles
}

// New creates a new ToastRenderer with the given styles
func New(styles *styles.Styles) *ToastRenderer {
	return &ToastRenderer{
		styles: styles,
	}
}

// Render renders a stack of toasts, newest last, right-aligned.
// Returns empty string if no toasts to display.
func (r *ToastRenderer) Render(toasts []types.Toast, width int) string {
	if len(toasts) == 0 || width < 8 {
		return ""
	}

	toastWidth := min(max(width/3, 20), maxToastWidth, width-2)

	rendered := make([]string, 0, len(toasts))
	for _, t := range toasts {
		style := r.styleForLevel(t.Level)
		rendered = append(rendered, style.Width(toastWidth).Render(icon(t.Level)+t.Message))
	}

	return lipgloss.JoinVertical(lipgloss.Right, rendered...)
}

// Overlay places the toast stack over the bottom-right corner of a frame
// of the given size. The frame is returned unchanged when there is
// nothing to show.
func (r *ToastRenderer) Overlay(frame string, toasts []types.Toast, width, height int) string {
	stack := r.Render(toasts, width)
	if stack == "" {
		return frame
	}
	return overlay(frame, stack, width, height)
}

// icon prefixes messages that are not plain information
func icon(level types.ToastLevel) string {
	switch level {
	case types.ToastSuccess:
		return "✓ "
	case types.ToastWarning:
		return "! "
	case types.ToastError:
		return "✗ "
	default:
		return ""
	}
}

// styleForLevel returns the appropriate style for a toast level
func (r *ToastRenderer) styleForLevel(level types.ToastLevel) lipgloss.Style {
	switch level {
	case types.ToastSuccess:
		return r.styles.ToastSuccess
	case types.ToastWarning:
		return r.styles.ToastWarning
	case types.ToastError:
		return r.styles.ToastError
	default:
		return r.styles.ToastInfo
	}
}
