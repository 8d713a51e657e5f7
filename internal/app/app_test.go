package app

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/services/runner"
	"github.com/riordanpawley/forget/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type appHarness struct {
	app    *App
	src    *fakeSource
	screen *fakeScreen
	store  *memStore
	done   chan error
}

func startApp(t *testing.T, st *memStore, l Launcher) *appHarness {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.TickMs = 10

	h := &appHarness{
		src:    newFakeSource(),
		screen: &fakeScreen{},
		store:  st,
		done:   make(chan error, 1),
	}
	a, err := New(context.Background(), Options{
		Config: cfg,
		Keymap: testKeymap(t),
		Store:  st,
		Runner: l,
		Source: h.src,
		Screen: h.screen,
		Logger: testLogger(),
	})
	require.NoError(t, err)
	h.app = a

	go func() { h.done <- a.Run(context.Background()) }()
	return h
}

func (h *appHarness) wait(t *testing.T) error {
	t.Helper()
	select {
	case err := <-h.done:
		return err
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
		return nil
	}
}

func (h *appHarness) toasts() []types.Toast {
	return h.app.Controller().View().Toasts
}

func TestApp_CreateTodoAndExit(t *testing.T) {
	st := &memStore{}
	h := startApp(t, st, newFakeLauncher())

	h.src.send(keymap.Ctrl('h'))
	h.src.typeText("Work")
	h.src.send(keymap.Special(keymap.KeyEnter), keymap.Ctrl('n'))
	h.src.typeText("Buy milk")
	h.src.send(
		keymap.Special(keymap.KeyEnter), // text
		keymap.Special(keymap.KeyEnter), // no command
		keymap.Special(keymap.KeyBackspace),
		keymap.Ctrl('q'),
	)

	require.NoError(t, h.wait(t))

	saved, saves := st.saved()
	require.Equal(t, 1, saves, "saved once on exit")
	require.Len(t, saved.Notes, 1)
	assert.Equal(t, "Work", saved.Notes[0].Title)
	require.Len(t, saved.Notes[0].Items, 1)
	assert.Equal(t, "Buy milk", saved.Notes[0].Items[0].Text)
	assert.True(t, saved.Notes[0].Items[0].Done)
	assert.Positive(t, h.screen.count())
}

func TestApp_ExitWithoutChangesDoesNotSave(t *testing.T) {
	st := &memStore{}
	h := startApp(t, st, newFakeLauncher())

	h.src.send(keymap.Special(keymap.KeyEscape))

	require.NoError(t, h.wait(t))
	_, saves := st.saved()
	assert.Zero(t, saves)
}

func TestApp_SaveThenExit(t *testing.T) {
	st := &memStore{}
	h := startApp(t, st, newFakeLauncher())

	h.src.send(keymap.Ctrl('h'))
	h.src.typeText("A")
	h.src.send(keymap.Special(keymap.KeyEnter), keymap.Ctrl('s'), keymap.Ctrl('q'))

	require.NoError(t, h.wait(t))
	_, saves := st.saved()
	assert.Equal(t, 1, saves, "exit does not save again when nothing changed")
}

func TestApp_InputClosedSavesAndReturnsNil(t *testing.T) {
	st := &memStore{}
	h := startApp(t, st, newFakeLauncher())

	h.src.send(keymap.Ctrl('h'))
	h.src.typeText("A")
	h.src.send(keymap.Special(keymap.KeyEnter))
	assert.Eventually(t, func() bool {
		return len(h.app.Controller().View().Board.Notes) == 1
	}, 2*time.Second, 5*time.Millisecond)
	close(h.src.keys)

	require.NoError(t, h.wait(t))
	_, saves := st.saved()
	assert.Equal(t, 1, saves)
}

func TestApp_InputClosedReportsFailedSave(t *testing.T) {
	st := &memStore{saveErr: errors.New("disk full")}
	h := startApp(t, st, newFakeLauncher())

	h.src.send(keymap.Ctrl('h'))
	h.src.typeText("A")
	h.src.send(keymap.Special(keymap.KeyEnter))
	assert.Eventually(t, func() bool {
		return len(h.app.Controller().View().Board.Notes) == 1
	}, 2*time.Second, 5*time.Millisecond)
	close(h.src.keys)

	err := h.wait(t)
	var perr *domain.PersistenceError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "save", perr.Op)
	assert.ErrorContains(t, err, "disk full")
	assert.True(t, h.app.Controller().Dirty())
}

func TestApp_LoadFailureStartsEmpty(t *testing.T) {
	st := &memStore{loadErr: &domain.PersistenceError{Op: "load", Path: "memory", Err: errors.New("corrupt")}}
	h := startApp(t, st, newFakeLauncher())

	toasts := h.toasts()
	require.Len(t, toasts, 1)
	assert.Equal(t, types.ToastWarning, toasts[0].Level)
	assert.Contains(t, toasts[0].Message, "corrupt")
	assert.Empty(t, h.app.Controller().View().Board.Notes)

	h.src.send(keymap.Ctrl('q'))
	require.NoError(t, h.wait(t))
	_, saves := st.saved()
	assert.Zero(t, saves, "an unreadable document is not overwritten unless edited")
}

func TestApp_FramesShowBoardAndPrompt(t *testing.T) {
	st := &memStore{}
	h := startApp(t, st, newFakeLauncher())

	h.src.send(keymap.Ctrl('h'))
	h.src.typeText("Groceries")

	assert.Eventually(t, func() bool {
		return strings.Contains(h.screen.lastFrame(), "New sticky note: Groceries")
	}, 2*time.Second, 5*time.Millisecond)

	h.src.send(keymap.Special(keymap.KeyEnter))
	assert.Eventually(t, func() bool {
		f := h.screen.lastFrame()
		return strings.Contains(f, "Groceries") && strings.Contains(f, "NAVIGATE")
	}, 2*time.Second, 5*time.Millisecond)

	frame := h.screen.lastFrame()
	_, height := h.screen.Size()
	assert.Equal(t, height, strings.Count(frame, "\n")+1)

	h.src.send(keymap.Ctrl('q'))
	require.NoError(t, h.wait(t))
}

// A command that cannot run is reported without disturbing the loops
func TestApp_SpawnFailureKeepsRendering(t *testing.T) {
	st := &memStore{}
	r := runner.New(runner.Options{Shell: "sh", Grace: time.Second}, testLogger())
	h := startApp(t, st, r)

	h.src.send(keymap.Ctrl('h'))
	h.src.typeText("Broken")
	h.src.send(keymap.Special(keymap.KeyEnter), keymap.Ctrl('n'))
	h.src.typeText("run it")
	h.src.send(keymap.Special(keymap.KeyEnter))
	h.src.typeText("forget-test-no-such-command-xyz")
	h.src.send(keymap.Special(keymap.KeyEnter), keymap.Special(keymap.KeyEnter))

	var failure types.Toast
	require.Eventually(t, func() bool {
		for _, toast := range h.toasts() {
			if toast.Level == types.ToastError {
				failure = toast
				return true
			}
		}
		return false
	}, 5*time.Second, 10*time.Millisecond)
	assert.Contains(t, failure.Message, "forget-test-no-such-command-xyz")

	frames := h.screen.count()
	assert.Eventually(t, func() bool {
		return h.screen.count() >= frames+5
	}, 2*time.Second, 5*time.Millisecond, "render loop keeps its cadence")

	// input still works after the failure
	h.src.send(keymap.Special(keymap.KeyBackspace), keymap.Ctrl('q'))
	require.NoError(t, h.wait(t))

	saved, _ := st.saved()
	require.Len(t, saved.Notes, 1)
	assert.True(t, saved.Notes[0].Items[0].Done)
	assert.Equal(t, "forget-test-no-such-command-xyz", saved.Notes[0].Items[0].Command)
}

func TestApp_ContextCancelSaves(t *testing.T) {
	st := &memStore{}
	cfg := config.DefaultConfig()
	src := newFakeSource()
	a, err := New(context.Background(), Options{
		Config: cfg,
		Keymap: testKeymap(t),
		Store:  st,
		Runner: newFakeLauncher(),
		Source: src,
		Screen: &fakeScreen{},
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	src.send(keymap.Ctrl('h'))
	src.typeText("A")
	src.send(keymap.Special(keymap.KeyEnter))
	require.Eventually(t, func() bool {
		return a.Controller().Dirty()
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
	_, saves := st.saved()
	assert.Equal(t, 1, saves)
}

func TestNew_MissingCollaborator(t *testing.T) {
	_, err := New(context.Background(), Options{Config: config.DefaultConfig()})
	assert.Error(t, err)
}
