// Package keymap translates raw key events into semantic commands.
//
// The binding table is built once from configuration, validated eagerly
// (collisions and reserved keys are configuration errors) and then only
// read. Resolve is pure: it knows nothing about UI modes.
package keymap

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Key identifies a physical key
type Key int

const (
	KeyChar Key = iota // Printable character (see KeyEvent.Rune)
	KeyBackspace
	KeyDelete
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyBackTab
	KeyInsert
	KeyF // Function key (see KeyEvent.F)
	KeyNull
	KeyEscape
	KeyEnter
	KeyTab
)

// keyToName maps non-character keys to their config names
var keyToName = map[Key]string{
	KeyBackspace: "backspace",
	KeyDelete:    "delete",
	KeyUp:        "up",
	KeyDown:      "down",
	KeyLeft:      "left",
	KeyRight:     "right",
	KeyHome:      "home",
	KeyEnd:       "end",
	KeyPageUp:    "page_up",
	KeyPageDown:  "page_down",
	KeyBackTab:   "backtab",
	KeyInsert:    "insert",
	KeyNull:      "null",
	KeyEscape:    "escape",
	KeyEnter:     "enter",
	KeyTab:       "tab",
}

// nameToKey is the reverse lookup, built from keyToName
var nameToKey map[string]Key

// runeAliases name characters that are awkward to write in a config file
var runeAliases = map[string]rune{
	"space":     ' ',
	"backslash": '\\',
}

// maxFunctionKey is the highest F-key the terminal host reports
const maxFunctionKey = 20

func init() {
	nameToKey = make(map[string]Key, len(keyToName)+4)
	for k, v := range keyToName {
		nameToKey[v] = k
	}
	// Aliases
	nameToKey["esc"] = KeyEscape
	nameToKey["shift_tab"] = KeyBackTab
	nameToKey["pgup"] = KeyPageUp
	nameToKey["pgdown"] = KeyPageDown
}

// Modifier is the modifier held with a key
type Modifier int

const (
	ModNone Modifier = iota
	ModCtrl
	ModAlt
)

// KeyEvent is one decoded key press. It doubles as a binding pattern.
type KeyEvent struct {
	Mod  Modifier
	Key  Key
	Rune rune // only for KeyChar
	F    int  // only for KeyF
}

// Char returns an unmodified character event
func Char(r rune) KeyEvent {
	return KeyEvent{Key: KeyChar, Rune: r}
}

// Ctrl returns a control-character event. Letters are case-folded since
// terminals cannot distinguish ctrl+A from ctrl+a.
func Ctrl(r rune) KeyEvent {
	return KeyEvent{Mod: ModCtrl, Key: KeyChar, Rune: unicode.ToLower(r)}
}

// Alt returns an alt-modified character event
func Alt(r rune) KeyEvent {
	return KeyEvent{Mod: ModAlt, Key: KeyChar, Rune: r}
}

// Special returns an unmodified non-character key event
func Special(k Key) KeyEvent {
	return KeyEvent{Key: k}
}

// Fn returns a function-key event
func Fn(n int) KeyEvent {
	return KeyEvent{Key: KeyF, F: n}
}

// IsText reports whether the event should be inserted into a text buffer
func (e KeyEvent) IsText() bool {
	return e.Mod == ModNone && e.Key == KeyChar && unicode.IsPrint(e.Rune)
}

// normalize folds equivalent spellings into one map key
func (e KeyEvent) normalize() KeyEvent {
	if e.Key != KeyChar {
		e.Rune = 0
	}
	if e.Key != KeyF {
		e.F = 0
	}
	if e.Mod == ModCtrl && e.Key == KeyChar {
		e.Rune = unicode.ToLower(e.Rune)
	}
	return e
}

// String renders the event in config notation (e.g. "ctrl+h", "page_up")
func (e KeyEvent) String() string {
	var prefix string
	switch e.Mod {
	case ModCtrl:
		prefix = "ctrl+"
	case ModAlt:
		prefix = "alt+"
	}

	switch e.Key {
	case KeyChar:
		for name, r := range runeAliases {
			if r == e.Rune {
				return prefix + name
			}
		}
		return prefix + string(e.Rune)
	case KeyF:
		return prefix + "f" + strconv.Itoa(e.F)
	default:
		if name, ok := keyToName[e.Key]; ok {
			return prefix + name
		}
		return prefix + "unknown"
	}
}

// ParseBinding parses config notation: a single character ("x"), a key
// name ("backspace", "f5"), optionally prefixed by "ctrl+" or "alt+".
func ParseBinding(s string) (KeyEvent, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return KeyEvent{}, fmt.Errorf("empty key binding")
	}

	mod := ModNone
	lower := strings.ToLower(raw)
	for _, p := range []struct {
		prefix string
		mod    Modifier
	}{
		{"ctrl+", ModCtrl}, {"ctrl-", ModCtrl}, {"c-", ModCtrl},
		{"alt+", ModAlt}, {"alt-", ModAlt}, {"m-", ModAlt},
	} {
		if len(raw) > len(p.prefix) && strings.HasPrefix(lower, p.prefix) {
			mod = p.mod
			raw = raw[len(p.prefix):]
			lower = lower[len(p.prefix):]
			break
		}
	}

	if utf8.RuneCountInString(raw) == 1 {
		r, _ := utf8.DecodeRuneInString(raw)
		if !unicode.IsPrint(r) {
			return KeyEvent{}, fmt.Errorf("key %q is not printable", s)
		}
		return KeyEvent{Mod: mod, Key: KeyChar, Rune: r}.normalize(), nil
	}

	if r, ok := runeAliases[lower]; ok {
		return KeyEvent{Mod: mod, Key: KeyChar, Rune: r}.normalize(), nil
	}
	if k, ok := nameToKey[lower]; ok {
		return KeyEvent{Mod: mod, Key: k}, nil
	}
	if strings.HasPrefix(lower, "f") {
		if n, err := strconv.Atoi(lower[1:]); err == nil {
			if n < 1 || n > maxFunctionKey {
				return KeyEvent{}, fmt.Errorf("function key %q out of range f1-f%d", s, maxFunctionKey)
			}
			return KeyEvent{Mod: mod, Key: KeyF, F: n}, nil
		}
	}

	return KeyEvent{}, fmt.Errorf("unknown key %q", s)
}
