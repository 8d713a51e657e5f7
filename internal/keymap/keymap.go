package keymap

import (
	"fmt"
	"strings"

	"github.com/riordanpawley/forget/internal/domain"
)

// reserved keys can never be bound. Control codes the terminal or shell
// intercepts (or that alias structural keys) would silently never fire.
var reserved = map[KeyEvent]string{
	Ctrl('c'):          "reserved by the terminal (interrupt)",
	Ctrl('z'):          "reserved by the terminal (suspend)",
	Ctrl('\\'):         "reserved by the terminal (quit signal)",
	Ctrl('i'):          "indistinguishable from tab",
	Ctrl('m'):          "indistinguishable from enter",
	Ctrl('j'):          "indistinguishable from enter (line feed)",
	Ctrl('['):          "indistinguishable from escape",
	Special(KeyEnter):  "reserved for running items and submitting text",
	Special(KeyEscape): "reserved for cancelling and exiting",
}

// ctrlKeys are the non-character keys terminals report with ctrl held
var ctrlKeys = map[Key]bool{
	KeyUp:       true,
	KeyDown:     true,
	KeyLeft:     true,
	KeyRight:    true,
	KeyHome:     true,
	KeyEnd:      true,
	KeyPageUp:   true,
	KeyPageDown: true,
}

// ctrlPunct are the punctuation keys that have a control code of their own
const ctrlPunct = `\]^_`

// Undeliverable reports why a terminal can never send ev. Ctrl only
// produces a distinct code for letters, a few punctuation keys and the
// navigation keys; ctrl+space and ctrl+@ arrive as null.
func Undeliverable(ev KeyEvent) (string, bool) {
	ev = ev.normalize()
	if ev.Mod != ModCtrl {
		return "", false
	}
	if ev.Key == KeyChar {
		if (ev.Rune >= 'a' && ev.Rune <= 'z') || strings.ContainsRune(ctrlPunct, ev.Rune) {
			return "", false
		}
		return "terminals cannot send ctrl with this character (use a-z, \\, ], ^ or _)", true
	}
	if ctrlKeys[ev.Key] {
		return "", false
	}
	return "terminals cannot send ctrl with this key", true
}

// ReservedReason reports why a key cannot be bound
func ReservedReason(ev KeyEvent) (string, bool) {
	reason, ok := reserved[ev.normalize()]
	return reason, ok
}

// Keymap is a validated, total mapping between bindable commands and keys
type Keymap struct {
	byKey     map[KeyEvent]Command
	byCommand map[Command]KeyEvent
}

// Hint is a key/description pair for the status bar
type Hint struct {
	Key  string
	Desc string
}

// New validates bindings and builds the lookup tables. Every bindable
// command must be bound, no two commands may share a key, and no key may
// be reserved or impossible for a terminal to send.
func New(bindings map[Command]KeyEvent) (*Keymap, error) {
	km := &Keymap{
		byKey:     make(map[KeyEvent]Command, len(Bindable)),
		byCommand: make(map[Command]KeyEvent, len(Bindable)),
	}

	for cmd := range bindings {
		if !cmd.IsBindable() {
			return nil, &domain.ConfigError{
				Field:  "keys." + cmd.String(),
				Reason: "command cannot be rebound",
			}
		}
	}

	for _, cmd := range Bindable {
		ev, ok := bindings[cmd]
		field := "keys." + cmd.String()
		if !ok {
			return nil, &domain.ConfigError{Field: field, Reason: "no key bound"}
		}
		ev = ev.normalize()

		if reason, isReserved := reserved[ev]; isReserved {
			return nil, &domain.ConfigError{Field: field, Value: ev.String(), Reason: reason}
		}
		if reason, never := Undeliverable(ev); never {
			return nil, &domain.ConfigError{Field: field, Value: ev.String(), Reason: reason}
		}
		if other, taken := km.byKey[ev]; taken {
			return nil, &domain.ConfigError{
				Field:  field,
				Value:  ev.String(),
				Reason: fmt.Sprintf("already bound to %s", other),
			}
		}

		km.byKey[ev] = cmd
		km.byCommand[cmd] = ev
	}

	return km, nil
}

// Resolve maps a key event to its command, or None
func (k *Keymap) Resolve(ev KeyEvent) Command {
	if cmd, ok := k.byKey[ev.normalize()]; ok {
		return cmd
	}
	return None
}

// Binding returns the key bound to cmd
func (k *Keymap) Binding(cmd Command) (KeyEvent, bool) {
	ev, ok := k.byCommand[cmd]
	return ev, ok
}

// Hints returns key hints for every bindable command in display order
func (k *Keymap) Hints() []Hint {
	hints := make([]Hint, 0, len(Bindable))
	for _, cmd := range Bindable {
		hints = append(hints, Hint{Key: k.byCommand[cmd].String(), Desc: cmd.Help()})
	}
	return hints
}
