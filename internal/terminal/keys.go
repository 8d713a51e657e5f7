package terminal

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/riordanpawley/forget/internal/keymap"
)

// specialKeys maps bubbletea's named keys onto keymap keys
var specialKeys = map[tea.KeyType]keymap.Key{
	tea.KeyUp:       keymap.KeyUp,
	tea.KeyDown:     keymap.KeyDown,
	tea.KeyLeft:     keymap.KeyLeft,
	tea.KeyRight:    keymap.KeyRight,
	tea.KeyHome:     keymap.KeyHome,
	tea.KeyEnd:      keymap.KeyEnd,
	tea.KeyPgUp:     keymap.KeyPageUp,
	tea.KeyPgDown:   keymap.KeyPageDown,
	tea.KeyShiftTab: keymap.KeyBackTab,
	tea.KeyDelete:   keymap.KeyDelete,
	tea.KeyInsert:   keymap.KeyInsert,
}

// ctrlSpecialKeys are the named keys bubbletea reports with ctrl held
var ctrlSpecialKeys = map[tea.KeyType]keymap.Key{
	tea.KeyCtrlUp:     keymap.KeyUp,
	tea.KeyCtrlDown:   keymap.KeyDown,
	tea.KeyCtrlLeft:   keymap.KeyLeft,
	tea.KeyCtrlRight:  keymap.KeyRight,
	tea.KeyCtrlHome:   keymap.KeyHome,
	tea.KeyCtrlEnd:    keymap.KeyEnd,
	tea.KeyCtrlPgUp:   keymap.KeyPageUp,
	tea.KeyCtrlPgDown: keymap.KeyPageDown,
}

// ctrlPunct covers the control codes outside ctrl+a..ctrl+z
var ctrlPunct = map[tea.KeyType]rune{
	tea.KeyCtrlBackslash:    '\\',
	tea.KeyCtrlCloseBracket: ']',
	tea.KeyCtrlCaret:        '^',
	tea.KeyCtrlUnderscore:   '_',
}

// Translate converts a bubbletea key message into key events. Pasted
// text yields one event per rune; keys with no equivalent yield none.
func Translate(msg tea.KeyMsg) []keymap.KeyEvent {
	wrap := func(ev keymap.KeyEvent) []keymap.KeyEvent {
		if msg.Alt && ev.Mod == keymap.ModNone {
			ev.Mod = keymap.ModAlt
		}
		return []keymap.KeyEvent{ev}
	}

	// Tab, Enter, Backspace and Escape share codes with ctrl+i, ctrl+m,
	// ctrl+? and ctrl+[ and must be matched first
	switch msg.Type {
	case tea.KeyRunes:
		evs := make([]keymap.KeyEvent, 0, len(msg.Runes))
		for _, r := range msg.Runes {
			if msg.Alt {
				evs = append(evs, keymap.Alt(r))
			} else {
				evs = append(evs, keymap.Char(r))
			}
		}
		return evs
	case tea.KeySpace:
		return wrap(keymap.Char(' '))
	case tea.KeyTab:
		return wrap(keymap.Special(keymap.KeyTab))
	case tea.KeyEnter:
		return wrap(keymap.Special(keymap.KeyEnter))
	case tea.KeyBackspace:
		return wrap(keymap.Special(keymap.KeyBackspace))
	case tea.KeyEsc:
		return wrap(keymap.Special(keymap.KeyEscape))
	case tea.KeyNull:
		return wrap(keymap.Special(keymap.KeyNull))
	}

	if k, ok := specialKeys[msg.Type]; ok {
		return wrap(keymap.Special(k))
	}
	if k, ok := ctrlSpecialKeys[msg.Type]; ok {
		return wrap(keymap.KeyEvent{Mod: keymap.ModCtrl, Key: k})
	}
	// bubbletea numbers its named keys downwards from -1
	if msg.Type <= tea.KeyF1 && msg.Type >= tea.KeyF20 {
		return wrap(keymap.Fn(int(tea.KeyF1-msg.Type) + 1))
	}
	if msg.Type >= tea.KeyCtrlA && msg.Type <= tea.KeyCtrlZ {
		return wrap(keymap.Ctrl('a' + rune(msg.Type-tea.KeyCtrlA)))
	}
	if r, ok := ctrlPunct[msg.Type]; ok {
		return wrap(keymap.Ctrl(r))
	}
	return nil
}
