package app

import (
	"context"

	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/services/runner"
)

// KeySource is a blocking source of decoded key events. Next returns
// io.EOF once the terminal has gone away.
type KeySource interface {
	Next(ctx context.Context) (keymap.KeyEvent, error)
}

// Screen shows rendered frames. Draw must not block on terminal output.
type Screen interface {
	Size() (width, height int)
	Draw(frame string)
}

// Launcher runs item commands in the background
type Launcher interface {
	Launch(command string) (runner.Handle, error)
	Events() <-chan runner.Event
	Running() int
	Shutdown(ctx context.Context) error
}
