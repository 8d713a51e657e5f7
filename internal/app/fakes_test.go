package app

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/services/runner"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testKeymap(t *testing.T) *keymap.Keymap {
	t.Helper()
	km, err := config.DefaultConfig().Keymap()
	require.NoError(t, err)
	return km
}

// fakeSource feeds scripted keys; closing it ends input with io.EOF
type fakeSource struct {
	keys chan keymap.KeyEvent
}

func newFakeSource() *fakeSource {
	return &fakeSource{keys: make(chan keymap.KeyEvent, 64)}
}

func (f *fakeSource) Next(ctx context.Context) (keymap.KeyEvent, error) {
	select {
	case ev, ok := <-f.keys:
		if !ok {
			return keymap.KeyEvent{}, io.EOF
		}
		return ev, nil
	case <-ctx.Done():
		return keymap.KeyEvent{}, ctx.Err()
	}
}

func (f *fakeSource) send(evs ...keymap.KeyEvent) {
	for _, ev := range evs {
		f.keys <- ev
	}
}

func (f *fakeSource) typeText(s string) {
	for _, r := range s {
		f.keys <- keymap.Char(r)
	}
}

// fakeScreen records frames
type fakeScreen struct {
	mu     sync.Mutex
	frames int
	last   string
}

func (s *fakeScreen) Size() (int, int) { return 100, 30 }

func (s *fakeScreen) Draw(frame string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames++
	s.last = frame
}

func (s *fakeScreen) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *fakeScreen) lastFrame() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}

// memStore keeps the board in memory
type memStore struct {
	mu      sync.Mutex
	board   *domain.Board
	saves   int
	loadErr error
	saveErr error
}

func (m *memStore) Load(context.Context) (*domain.Board, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	if m.board == nil {
		return domain.NewBoard(), nil
	}
	return m.board.Snapshot(), nil
}

func (m *memStore) Save(_ context.Context, b *domain.Board) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return &domain.PersistenceError{Op: "save", Path: "memory", Err: m.saveErr}
	}
	m.board = b.Snapshot()
	m.saves++
	return nil
}

func (m *memStore) Location() string { return "memory" }

func (m *memStore) saved() (*domain.Board, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.board, m.saves
}

// fakeLauncher records launches without running anything
type fakeLauncher struct {
	mu       sync.Mutex
	launched []string
	events   chan runner.Event
	shutdown bool
	err      error
}

func newFakeLauncher() *fakeLauncher {
	return &fakeLauncher{events: make(chan runner.Event, 16)}
}

func (f *fakeLauncher) Launch(cmd string) (runner.Handle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.launched = append(f.launched, cmd)
	return runner.Handle(len(f.launched)), nil
}

func (f *fakeLauncher) Events() <-chan runner.Event { return f.events }

func (f *fakeLauncher) Running() int { return 0 }

func (f *fakeLauncher) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.shutdown = true
	return nil
}

func (f *fakeLauncher) commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.launched...)
}

// fixedClock returns a clock that only moves when advanced
type fixedClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fixedClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}
