package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/types"
)

// ErrInputClosed is returned by the input loop when the key source ends
var ErrInputClosed = errors.New("input closed")

// Input reads keys, runs the mode state machine and forwards commands to
// the controller. Text keys in edit mode go to the edit buffer instead.
type Input struct {
	src      KeySource
	keys     *keymap.Keymap
	requests chan<- Request
	logger   *slog.Logger

	// mode mirrors the controller's mode as of the last ack; it is only
	// touched by the goroutine running Run
	mode types.Mode

	mu     sync.Mutex
	buf    []rune
	cursor int
	gen    uint64 // edit the buffer belongs to
}

// NewInput creates an input loop sending on requests
func NewInput(src KeySource, keys *keymap.Keymap, requests chan<- Request, logger *slog.Logger) *Input {
	return &Input{
		src:      src,
		keys:     keys,
		requests: requests,
		logger:   logger,
		mode:     types.ModeNavigating,
	}
}

// Buffer returns the pending edit text and cursor position
func (in *Input) Buffer() (string, int) {
	text, cursor, _ := in.edit()
	return text, cursor
}

// edit returns the buffer together with the edit it belongs to
func (in *Input) edit() (string, int, uint64) {
	in.mu.Lock()
	defer in.mu.Unlock()
	return string(in.buf), in.cursor, in.gen
}

// Run reads keys until an Exit ack, ctx is done or the source fails.
// A closed source is reported as ErrInputClosed.
func (in *Input) Run(ctx context.Context) error {
	for {
		ev, err := in.src.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, io.EOF) {
				return ErrInputClosed
			}
			return fmt.Errorf("read key: %w", err)
		}

		req, ok := in.dispatch(ev)
		if !ok {
			continue
		}

		ack, err := in.send(ctx, req)
		if err != nil {
			return nil
		}
		in.adopt(ack)
		if ack.Exit {
			return nil
		}
	}
}

// send forwards req and waits for the controller's answer
func (in *Input) send(ctx context.Context, req Request) (Ack, error) {
	select {
	case in.requests <- req:
	case <-ctx.Done():
		return Ack{}, ctx.Err()
	}
	select {
	case ack := <-req.ack:
		return ack, nil
	case <-ctx.Done():
		return Ack{}, ctx.Err()
	}
}

func (in *Input) adopt(ack Ack) {
	in.mode = ack.Mode
	if ack.NewEdit {
		in.mu.Lock()
		in.buf = []rune(ack.Prefill)
		in.cursor = len(in.buf)
		in.gen = ack.EditGen
		in.mu.Unlock()
	}
}

// dispatch turns a key into a request for the current mode. Keys that
// only edit the buffer, or mean nothing, produce no request.
func (in *Input) dispatch(ev keymap.KeyEvent) (Request, bool) {
	switch in.mode {
	case types.ModeEditing:
		return in.dispatchEditing(ev)
	case types.ModeConfirmDelete:
		if ev == keymap.Char('y') || ev == keymap.Char('Y') || ev == keymap.Special(keymap.KeyEnter) {
			return newRequest(keymap.Confirm, ""), true
		}
		return newRequest(keymap.Cancel, ""), true
	default:
		switch ev {
		case keymap.Special(keymap.KeyEnter):
			return newRequest(keymap.Activate, ""), true
		case keymap.Special(keymap.KeyEscape):
			return newRequest(keymap.Exit, ""), true
		}
		cmd := in.keys.Resolve(ev)
		if cmd == keymap.None {
			in.logger.Debug("unbound key", "key", ev.String())
			return Request{}, false
		}
		return newRequest(cmd, ""), true
	}
}

func (in *Input) dispatchEditing(ev keymap.KeyEvent) (Request, bool) {
	if ev.IsText() {
		in.editBuf(func() {
			in.buf = slices.Insert(in.buf, in.cursor, ev.Rune)
			in.cursor++
		})
		return Request{}, false
	}

	if ev.Mod == keymap.ModNone {
		switch ev.Key {
		case keymap.KeyEnter:
			text, _ := in.Buffer()
			return newRequest(keymap.Submit, text), true
		case keymap.KeyEscape:
			return newRequest(keymap.Cancel, ""), true
		case keymap.KeyBackspace:
			in.editBuf(func() {
				if in.cursor > 0 {
					in.buf = slices.Delete(in.buf, in.cursor-1, in.cursor)
					in.cursor--
				}
			})
			return Request{}, false
		case keymap.KeyDelete:
			in.editBuf(func() {
				if in.cursor < len(in.buf) {
					in.buf = slices.Delete(in.buf, in.cursor, in.cursor+1)
				}
			})
			return Request{}, false
		case keymap.KeyLeft:
			in.editBuf(func() { in.cursor = max(in.cursor-1, 0) })
			return Request{}, false
		case keymap.KeyRight:
			in.editBuf(func() { in.cursor = min(in.cursor+1, len(in.buf)) })
			return Request{}, false
		case keymap.KeyHome:
			in.editBuf(func() { in.cursor = 0 })
			return Request{}, false
		case keymap.KeyEnd:
			in.editBuf(func() { in.cursor = len(in.buf) })
			return Request{}, false
		}
	}

	// Anything else bound goes to the controller, which decides whether
	// it applies while editing
	if cmd := in.keys.Resolve(ev); cmd != keymap.None {
		return newRequest(cmd, ""), true
	}
	return Request{}, false
}

func (in *Input) editBuf(f func()) {
	in.mu.Lock()
	defer in.mu.Unlock()
	f()
}
