package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrNotFound        = errors.New("not found")
	ErrIndexOutOfRange = errors.New("index out of range")
	ErrNoSelection     = errors.New("nothing selected")
)

// BoardError represents a rejected board mutation. It never indicates a
// corrupted board: the operation was simply not applied.
type BoardError struct {
	Op     string // Operation: "remove_item", "toggle_done", etc.
	NoteID NoteID // Optional: the note addressed
	Index  int    // Item index, -1 when not applicable
	Err    error  // Underlying sentinel
}

func (e *BoardError) Error() string {
	if e.NoteID != "" && e.Index >= 0 {
		return fmt.Sprintf("board %s [%s #%d]: %v", e.Op, e.NoteID.Short(), e.Index, e.Err)
	}
	if e.NoteID != "" {
		return fmt.Sprintf("board %s [%s]: %v", e.Op, e.NoteID.Short(), e.Err)
	}
	return fmt.Sprintf("board %s: %v", e.Op, e.Err)
}

func (e *BoardError) Unwrap() error {
	return e.Err
}

// PersistenceError represents a failed load or save of the board document
type PersistenceError struct {
	Op   string // "load" or "save"
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// SpawnError represents an external command that could not be started or
// that exited with a nonzero status.
type SpawnError struct {
	Command  string
	ExitCode int // -1 when the process never started
	Err      error
}

func (e *SpawnError) Error() string {
	if e.ExitCode > 0 {
		return fmt.Sprintf("command %q exited with status %d", e.Command, e.ExitCode)
	}
	if e.Err != nil {
		return fmt.Sprintf("command %q: %v", e.Command, e.Err)
	}
	return fmt.Sprintf("command %q failed", e.Command)
}

func (e *SpawnError) Unwrap() error {
	return e.Err
}

// ConfigError represents an invalid configuration document. It is the only
// error that prevents the application from starting.
type ConfigError struct {
	Field  string // e.g. "keys.saveState"
	Value  string // Offending value, if any
	Reason string // Human-readable context
	Err    error
}

func (e *ConfigError) Error() string {
	msg := e.Reason
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if e.Value != "" {
		return fmt.Sprintf("config %s = %q: %s", e.Field, e.Value, msg)
	}
	if e.Field != "" {
		return fmt.Sprintf("config %s: %s", e.Field, msg)
	}
	return fmt.Sprintf("config: %s", msg)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}
