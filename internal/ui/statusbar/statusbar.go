package statusbar

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/types"
	"github.com/riordanpawley/forget/internal/ui/styles"
)

// frames is the activity indicator shown while commands run
var frames = spinner.Dot.Frames

// State is everything the status bar shows for one frame
type State struct {
	Mode    types.Mode
	Hints   []keymap.Hint // navigation hints, from the keymap
	Running int           // commands still running
	Tick    uint64        // frame counter, drives the spinner
	Prompt  string        // edit prompt ("New todo", ...)
	Buffer  string        // text typed so far
	Cursor  int           // cursor position in Buffer, in runes
	Confirm string        // confirmation question
}

// StatusBar represents the status bar at the bottom of the TUI
type StatusBar struct {
	state  State
	width  int
	styles *styles.Styles
}

// New creates a new StatusBar with the given state, width, and styles
func New(state State, width int, styles *styles.Styles) StatusBar {
	return StatusBar{
		state:  state,
		width:  width,
		styles: styles,
	}
}

// Height is the number of lines Render produces
const Height = 1

// Render renders the status bar as a single line
func (sb StatusBar) Render() string {
	s := sb.styles
	mode := sb.state.Mode.String()
	badge := s.ModeBadge(mode).Render(mode)

	right := sb.activity()

	avail := sb.width - 2 - lipgloss.Width(badge) - lipgloss.Width(right) - 1
	var body string
	switch sb.state.Mode {
	case types.ModeEditing:
		body = sb.editLine(avail)
	case types.ModeConfirmDelete:
		body = s.Prompt.Render(sb.state.Confirm) + " " + s.StatusHint.Render(GetHints(sb.state.Mode, nil))
	default:
		body = s.StatusHint.Render(GetHints(sb.state.Mode, sb.state.Hints))
	}
	if avail > 0 {
		body = ansi.Truncate(body, avail, "…")
	} else {
		body = ""
	}

	left := badge + " " + body
	gap := sb.width - 2 - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 0 {
		gap = 0
	}
	content := left + strings.Repeat(" ", gap) + right

	return s.StatusBar.Width(sb.width).MaxHeight(Height).Render(content)
}

// editLine renders the prompt and buffer with a block cursor. Long input
// scrolls so the cursor stays visible.
func (sb StatusBar) editLine(avail int) string {
	s := sb.styles
	prompt := s.Prompt.Render(sb.state.Prompt + ": ")
	room := avail - lipgloss.Width(prompt)

	runes := []rune(sb.state.Buffer)
	cur := min(max(sb.state.Cursor, 0), len(runes))

	start := 0
	if room > 0 && cur >= room {
		start = cur - room + 1
	}

	at, after := " ", ""
	if cur < len(runes) {
		at = string(runes[cur])
		after = string(runes[cur+1:])
	}

	return prompt +
		s.Input.Render(string(runes[start:cur])) +
		s.Cursor.Render(at) +
		s.Input.Render(after)
}

// activity renders the spinner and running-command count
func (sb StatusBar) activity() string {
	if sb.state.Running <= 0 {
		return ""
	}
	frame := strings.TrimSpace(frames[int(sb.state.Tick%uint64(len(frames)))])
	return sb.styles.Spinner.Render(frame) + " " +
		sb.styles.StatusInfo.Render(strconv.Itoa(sb.state.Running)+" running")
}
