package app

import (
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/types"
)

// Request carries one command from the input loop to the controller
type Request struct {
	Cmd  keymap.Command
	Text string // edit buffer, for Submit

	ack chan Ack
}

// Ack is the controller's answer to a Request. The input loop adopts
// Mode before reading the next key.
type Ack struct {
	Mode types.Mode

	// NewEdit starts a fresh edit buffer holding Prefill for edit
	// number EditGen
	NewEdit bool
	Prefill string
	EditGen uint64

	// Exit tells the input loop to stop
	Exit bool
}

func newRequest(cmd keymap.Command, text string) Request {
	return Request{Cmd: cmd, Text: text, ack: make(chan Ack, 1)}
}

// Purpose is what a text edit is for
type Purpose int

const (
	PurposeNone Purpose = iota
	PurposeNewStickyNote
	PurposeNewTodoText
	PurposeNewTodoCommand
	PurposeNewNote
	PurposeEditItem
)

// Prompt returns the status-bar prompt shown while editing
func (p Purpose) Prompt() string {
	switch p {
	case PurposeNewStickyNote:
		return "New sticky note"
	case PurposeNewTodoText:
		return "New todo"
	case PurposeNewTodoCommand:
		return "Command (enter to skip)"
	case PurposeNewNote:
		return "New note"
	case PurposeEditItem:
		return "Edit todo"
	default:
		return ""
	}
}
