package styles

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Chrome palette (Catppuccin Macchiato) for the parts of the frame the
// user cannot recolour: status bar, toasts, prompt
var (
	Base     = lipgloss.Color("#24273a")
	Surface0 = lipgloss.Color("#363a4f")
	Surface1 = lipgloss.Color("#494d64")
	Overlay0 = lipgloss.Color("#6e738d")
	Overlay1 = lipgloss.Color("#8087a2")
	Subtext0 = lipgloss.Color("#a5adcb")
	Text     = lipgloss.Color("#cad3f5")

	Mauve  = lipgloss.Color("#c6a0f6")
	Red    = lipgloss.Color("#ed8796")
	Peach  = lipgloss.Color("#f5a97f")
	Yellow = lipgloss.Color("#eed49f")
	Green  = lipgloss.Color("#a6da95")
	Blue   = lipgloss.Color("#8aadf4")
)

// ModeColors maps the status-bar mode badge to its background
var ModeColors = map[string]lipgloss.Color{
	"NAVIGATE": Blue,
	"EDIT":     Green,
	"CONFIRM":  Red,
}

// ApplyColorProfile picks the lipgloss colour profile for the terminal.
// NO_COLOR disables colour; otherwise TERM/COLORTERM may upgrade what
// termenv detected, since some terminals under-report.
func ApplyColorProfile() termenv.Profile {
	if strings.TrimSpace(os.Getenv("NO_COLOR")) != "" {
		lipgloss.SetColorProfile(termenv.Ascii)
		return termenv.Ascii
	}

	profile := termenv.ColorProfile()

	term := strings.ToLower(strings.TrimSpace(os.Getenv("TERM")))
	colorterm := strings.ToLower(strings.TrimSpace(os.Getenv("COLORTERM")))
	if strings.Contains(colorterm, "truecolor") || strings.Contains(colorterm, "24bit") {
		if profile != termenv.Ascii {
			profile = termenv.TrueColor
		}
	} else if strings.Contains(term, "256color") {
		if profile == termenv.Ascii || profile == termenv.ANSI {
			profile = termenv.ANSI256
		}
	}

	lipgloss.SetColorProfile(profile)
	return profile
}
