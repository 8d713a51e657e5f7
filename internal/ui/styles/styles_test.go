package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/riordanpawley/forget/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	s := Default()
	if s == nil {
		t.Fatal("Default() returned nil")
	}
}

func TestNew_InvalidSlot(t *testing.T) {
	colors := config.DefaultConfig().Colors
	colors.Titles.Fg = "Chartreuse"

	_, err := New(colors)
	assert.Error(t, err)
}

func TestFromConfig(t *testing.T) {
	tests := []struct {
		name  string
		slot  config.StyleConfig
		check func(t *testing.T, s lipgloss.Style)
	}{
		{
			name: "named colours",
			slot: config.StyleConfig{Fg: "Yellow", Bg: "Black", Modifier: "BOLD"},
			check: func(t *testing.T, s lipgloss.Style) {
				assert.Equal(t, lipgloss.Color("3"), s.GetForeground())
				assert.Equal(t, lipgloss.Color("0"), s.GetBackground())
				assert.True(t, s.GetBold())
			},
		},
		{
			name: "reset leaves colours unset",
			slot: config.StyleConfig{Fg: "Reset", Bg: "Reset", Modifier: "RESET"},
			check: func(t *testing.T, s lipgloss.Style) {
				assert.Equal(t, lipgloss.NoColor{}, s.GetForeground())
				assert.Equal(t, lipgloss.NoColor{}, s.GetBackground())
				assert.False(t, s.GetBold())
			},
		},
		{
			name: "hex and several modifiers",
			slot: config.StyleConfig{Fg: "#ff8800", Modifier: "ITALIC|CROSSED_OUT|UNDERLINED"},
			check: func(t *testing.T, s lipgloss.Style) {
				assert.Equal(t, lipgloss.Color("#ff8800"), s.GetForeground())
				assert.True(t, s.GetItalic())
				assert.True(t, s.GetStrikethrough())
				assert.True(t, s.GetUnderline())
			},
		},
		{
			name: "dim and reversed",
			slot: config.StyleConfig{Fg: "White", Modifier: "DIM, REVERSED"},
			check: func(t *testing.T, s lipgloss.Style) {
				assert.True(t, s.GetFaint())
				assert.True(t, s.GetReverse())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := FromConfig(tt.slot)
			require.NoError(t, err)
			tt.check(t, s)
		})
	}
}

func TestModeBadge(t *testing.T) {
	s := Default()

	assert.Equal(t, Green, s.ModeBadge("EDIT").GetBackground())
	assert.Equal(t, Red, s.ModeBadge("CONFIRM").GetBackground())
	assert.Equal(t, Blue, s.ModeBadge("SOMETHING").GetBackground())
}

func TestThemeColors(t *testing.T) {
	colors := []struct {
		name  string
		color string
	}{
		{"Base", string(Base)},
		{"Blue", string(Blue)},
		{"Red", string(Red)},
		{"Green", string(Green)},
		{"Yellow", string(Yellow)},
	}

	for _, c := range colors {
		t.Run(c.name, func(t *testing.T) {
			if c.color == "" {
				t.Errorf("%s color is empty", c.name)
			}
			if c.color[0] != '#' {
				t.Errorf("%s color doesn't start with #: %s", c.name, c.color)
			}
		})
	}
}
