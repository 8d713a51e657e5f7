package config

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// namedColors maps colour names to ANSI palette indices
var namedColors = map[string]int{
	"black":        0,
	"red":          1,
	"green":        2,
	"yellow":       3,
	"blue":         4,
	"magenta":      5,
	"cyan":         6,
	"gray":         7,
	"darkgray":     8,
	"lightred":     9,
	"lightgreen":   10,
	"lightyellow":  11,
	"lightblue":    12,
	"lightmagenta": 13,
	"lightcyan":    14,
	"white":        15,
}

var (
	hexColor = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)
	rgbColor = regexp.MustCompile(`^rgb\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})\s*\)$`)
)

// ParseColor converts a config colour to a terminal colour spec: an ANSI
// index ("3"), a hex triplet ("#ff8800") or "" for the terminal default.
// Accepted forms are names ("Yellow", "LightBlue", "Reset"), indices
// ("0"-"255"), "#rrggbb" and "rgb(r,g,b)".
func ParseColor(s string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	name = strings.NewReplacer("_", "", "-", "", " ", "").Replace(name)

	if name == "" || name == "reset" {
		return "", nil
	}
	if n, ok := namedColors[name]; ok {
		return strconv.Itoa(n), nil
	}
	if name == "grey" {
		return "7", nil
	}
	if name == "darkgrey" {
		return "8", nil
	}

	if n, err := strconv.Atoi(name); err == nil {
		if n < 0 || n > 255 {
			return "", fmt.Errorf("colour index %d out of range 0-255", n)
		}
		return strconv.Itoa(n), nil
	}

	if hexColor.MatchString(name) {
		return name, nil
	}

	if m := rgbColor.FindStringSubmatch(name); m != nil {
		var rgb [3]int
		for i := range rgb {
			v, _ := strconv.Atoi(m[i+1])
			if v > 255 {
				return "", fmt.Errorf("rgb component %d out of range 0-255", v)
			}
			rgb[i] = v
		}
		return fmt.Sprintf("#%02x%02x%02x", rgb[0], rgb[1], rgb[2]), nil
	}

	return "", fmt.Errorf("unknown colour %q", s)
}

// Modifier is a set of text attributes
type Modifier uint16

const (
	ModBold Modifier = 1 << iota
	ModDim
	ModItalic
	ModUnderlined
	ModSlowBlink
	ModRapidBlink
	ModReversed
	ModHidden
	ModCrossedOut
)

var modifierNames = map[string]Modifier{
	"BOLD":        ModBold,
	"DIM":         ModDim,
	"ITALIC":      ModItalic,
	"UNDERLINED":  ModUnderlined,
	"SLOW_BLINK":  ModSlowBlink,
	"RAPID_BLINK": ModRapidBlink,
	"REVERSED":    ModReversed,
	"HIDDEN":      ModHidden,
	"CROSSED_OUT": ModCrossedOut,
}

// Has reports whether all bits of m2 are set
func (m Modifier) Has(m2 Modifier) bool {
	return m&m2 == m2
}

// ParseModifiers parses "BOLD", "BOLD|ITALIC" or "bold, underlined".
// "RESET" and the empty string mean no attributes.
func ParseModifiers(s string) (Modifier, error) {
	var mods Modifier
	for _, part := range strings.FieldsFunc(s, func(r rune) bool { return r == '|' || r == ',' }) {
		name := strings.ToUpper(strings.TrimSpace(part))
		if name == "" || name == "RESET" {
			continue
		}
		m, ok := modifierNames[name]
		if !ok {
			return 0, fmt.Errorf("unknown modifier %q", part)
		}
		mods |= m
	}
	return mods, nil
}
