package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/forget/internal/config"
)

// Styles holds all the UI styles
type Styles struct {
	// User palette (config colour slots)
	Normal    lipgloss.Style
	Highlight lipgloss.Style
	Tabs      lipgloss.Style
	Titles    lipgloss.Style
	Text      lipgloss.Style

	// Board
	TabActive lipgloss.Style
	TabSep    lipgloss.Style
	Box       lipgloss.Style
	BoxActive lipgloss.Style
	Done      lipgloss.Style
	Command   lipgloss.Style
	Empty     lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusMode lipgloss.Style
	StatusHint lipgloss.Style
	StatusKey  lipgloss.Style
	StatusInfo lipgloss.Style
	Spinner    lipgloss.Style

	// Prompt line
	Prompt lipgloss.Style
	Input  lipgloss.Style
	Cursor lipgloss.Style

	// Toasts
	ToastInfo    lipgloss.Style
	ToastSuccess lipgloss.Style
	ToastWarning lipgloss.Style
	ToastError   lipgloss.Style
}

// New builds the styles from the configured colour slots. Slots are
// validated with the config, so an error here means an invalid document.
func New(colors config.ColorConfig) (*Styles, error) {
	normal, err := FromConfig(colors.Normal)
	if err != nil {
		return nil, err
	}
	highlight, err := FromConfig(colors.Highlight)
	if err != nil {
		return nil, err
	}
	tabs, err := FromConfig(colors.Tabs)
	if err != nil {
		return nil, err
	}
	titles, err := FromConfig(colors.Titles)
	if err != nil {
		return nil, err
	}
	text, err := FromConfig(colors.Text)
	if err != nil {
		return nil, err
	}

	return &Styles{
		Normal:    normal,
		Highlight: highlight,
		Tabs:      tabs,
		Titles:    titles,
		Text:      text,

		TabActive: highlight.
			Underline(true),

		TabSep: lipgloss.NewStyle().
			Foreground(Surface1),

		Box: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Surface1).
			Padding(0, 1),

		BoxActive: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Mauve).
			Padding(0, 1),

		Done: lipgloss.NewStyle().
			Strikethrough(true).
			Faint(true),

		Command: lipgloss.NewStyle().
			Foreground(Peach),

		Empty: lipgloss.NewStyle().
			Foreground(Overlay0).
			Italic(true),

		StatusBar: lipgloss.NewStyle().
			Background(Surface0).
			Foreground(Subtext0).
			Padding(0, 1),

		StatusMode: lipgloss.NewStyle().
			Background(Blue).
			Foreground(Base).
			Bold(true).
			Padding(0, 1),

		StatusHint: lipgloss.NewStyle().
			Foreground(Overlay1),

		StatusKey: lipgloss.NewStyle().
			Foreground(Yellow).
			Bold(true),

		StatusInfo: lipgloss.NewStyle().
			Foreground(Subtext0),

		Spinner: lipgloss.NewStyle().
			Foreground(Mauve),

		Prompt: lipgloss.NewStyle().
			Foreground(Mauve).
			Bold(true),

		Input: lipgloss.NewStyle().
			Foreground(Text),

		Cursor: lipgloss.NewStyle().
			Reverse(true),

		ToastInfo: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Blue).
			Foreground(Blue).
			Padding(0, 1),

		ToastSuccess: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Green).
			Foreground(Green).
			Padding(0, 1),

		ToastWarning: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Yellow).
			Foreground(Yellow).
			Padding(0, 1),

		ToastError: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(Red).
			Foreground(Red).
			Padding(0, 1),
	}, nil
}

// Default returns the styles for the stock palette
func Default() *Styles {
	s, err := New(config.DefaultConfig().Colors)
	if err != nil {
		panic("default palette is invalid: " + err.Error())
	}
	return s
}

// FromConfig converts one colour slot into a lipgloss style
func FromConfig(sc config.StyleConfig) (lipgloss.Style, error) {
	style := lipgloss.NewStyle()

	fg, err := config.ParseColor(sc.Fg)
	if err != nil {
		return style, err
	}
	if fg != "" {
		style = style.Foreground(lipgloss.Color(fg))
	}

	bg, err := config.ParseColor(sc.Bg)
	if err != nil {
		return style, err
	}
	if bg != "" {
		style = style.Background(lipgloss.Color(bg))
	}

	mods, err := config.ParseModifiers(sc.Modifier)
	if err != nil {
		return style, err
	}
	if mods.Has(config.ModBold) {
		style = style.Bold(true)
	}
	if mods.Has(config.ModDim) {
		style = style.Faint(true)
	}
	if mods.Has(config.ModItalic) {
		style = style.Italic(true)
	}
	if mods.Has(config.ModUnderlined) {
		style = style.Underline(true)
	}
	if mods.Has(config.ModSlowBlink) || mods.Has(config.ModRapidBlink) {
		style = style.Blink(true)
	}
	if mods.Has(config.ModReversed) {
		style = style.Reverse(true)
	}
	if mods.Has(config.ModHidden) {
		// lipgloss has no conceal attribute; match the background instead
		if bg != "" {
			style = style.Foreground(lipgloss.Color(bg))
		}
	}
	if mods.Has(config.ModCrossedOut) {
		style = style.Strikethrough(true)
	}

	return style, nil
}

// ModeBadge returns the status-bar badge style for a mode name
func (s *Styles) ModeBadge(mode string) lipgloss.Style {
	if c, ok := ModeColors[mode]; ok {
		return s.StatusMode.Background(c)
	}
	return s.StatusMode
}
