// Package terminal hosts the UI in a bubbletea program. The program owns
// raw mode and the alternate screen; the host turns its key messages into
// keymap events and shows whatever frame was drawn last.
package terminal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/riordanpawley/forget/internal/keymap"
)

// keyBuffer is how many key events may wait for the input loop
const keyBuffer = 256

// frameMsg carries a rendered frame into the program
type frameMsg string

// Host implements app.KeySource and app.Screen
type Host struct {
	program *tea.Program
	logger  *slog.Logger

	keys    chan keymap.KeyEvent
	dropped atomic.Uint64

	frame atomic.Pointer[string]
	dirty chan struct{}

	width  atomic.Int32
	height atomic.Int32

	done     chan struct{}
	doneOnce sync.Once
}

// New creates a host. Extra program options (input/output redirection in
// tests) are appended to the defaults.
func New(logger *slog.Logger, opts ...tea.ProgramOption) *Host {
	h := &Host{
		logger: logger,
		keys:   make(chan keymap.KeyEvent, keyBuffer),
		dirty:  make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	opts = append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)
	h.program = tea.NewProgram(model{host: h}, opts...)
	return h
}

// Run runs the program until Quit is called or the user interrupts it.
// It blocks and must be called from the main goroutine.
func (h *Host) Run() error {
	go h.pump()
	defer h.finish()

	_, err := h.program.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return err
	}
	return nil
}

// Quit stops the program
func (h *Host) Quit() {
	h.program.Quit()
}

// Done is closed once the program has exited
func (h *Host) Done() <-chan struct{} {
	return h.done
}

func (h *Host) finish() {
	h.doneOnce.Do(func() { close(h.done) })
}

// Next returns the next key. It returns io.EOF once the program exits.
func (h *Host) Next(ctx context.Context) (keymap.KeyEvent, error) {
	select {
	case ev := <-h.keys:
		return ev, nil
	case <-h.done:
		return keymap.KeyEvent{}, io.EOF
	case <-ctx.Done():
		return keymap.KeyEvent{}, ctx.Err()
	}
}

// Size returns the terminal size; zero until the program reports it
func (h *Host) Size() (int, int) {
	return int(h.width.Load()), int(h.height.Load())
}

// Draw replaces the frame to show. It never blocks: frames drawn faster
// than the terminal accepts them overwrite each other.
func (h *Host) Draw(frame string) {
	h.frame.Store(&frame)
	select {
	case h.dirty <- struct{}{}:
	default:
	}
}

// Dropped returns how many keys were discarded because the input loop
// fell behind
func (h *Host) Dropped() uint64 {
	return h.dropped.Load()
}

// pump hands the latest frame to the program
func (h *Host) pump() {
	for {
		select {
		case <-h.done:
			return
		case <-h.dirty:
			if f := h.frame.Load(); f != nil {
				h.program.Send(frameMsg(*f))
			}
		}
	}
}

func (h *Host) push(evs []keymap.KeyEvent) {
	for _, ev := range evs {
		select {
		case h.keys <- ev:
		default:
			n := h.dropped.Add(1)
			h.logger.Warn("key dropped, input loop busy", "key", ev.String(), "dropped", n)
		}
	}
}

func (h *Host) resize(w, ht int) {
	h.width.Store(int32(w))
	h.height.Store(int32(ht))
}

// model is the bubbletea side of the host: it forwards input and shows
// the last frame
type model struct {
	host  *Host
	frame string
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC:
			return m, tea.Quit
		case tea.KeyCtrlZ:
			return m, tea.Suspend
		}
		m.host.push(Translate(msg))
	case tea.WindowSizeMsg:
		m.host.resize(msg.Width, msg.Height)
	case frameMsg:
		m.frame = string(msg)
	}
	return m, nil
}

func (m model) View() string {
	return m.frame
}
