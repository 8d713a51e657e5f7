package app

import (
	"context"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode/utf8"

	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/types"
	"github.com/riordanpawley/forget/internal/ui/board"
	"github.com/riordanpawley/forget/internal/ui/statusbar"
	"github.com/riordanpawley/forget/internal/ui/styles"
	"github.com/riordanpawley/forget/internal/ui/toast"
)

// Renderer redraws the screen on a fixed interval from controller
// snapshots. It never mutates state.
type Renderer struct {
	screen     Screen
	controller *Controller
	input      *Input
	interval   time.Duration
	logger     *slog.Logger

	styles *styles.Styles
	opts   board.Options
	hints  []keymap.Hint
	toasts *toast.ToastRenderer

	frames atomic.Uint64
}

// NewRenderer creates a render loop drawing to screen every interval
func NewRenderer(screen Screen, c *Controller, in *Input, interval time.Duration, s *styles.Styles, opts board.Options, keys *keymap.Keymap, logger *slog.Logger) *Renderer {
	return &Renderer{
		screen:     screen,
		controller: c,
		input:      in,
		interval:   interval,
		logger:     logger,
		styles:     s,
		opts:       opts,
		hints:      keys.Hints(),
		toasts:     toast.New(s),
	}
}

// Frames returns how many frames have been drawn
func (r *Renderer) Frames() uint64 {
	return r.frames.Load()
}

// Run draws a frame immediately and then on every tick until ctx is done
func (r *Renderer) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.draw()
	for {
		select {
		case <-ctx.Done():
			r.logger.Debug("render loop stopped", "frames", r.Frames())
			return nil
		case <-ticker.C:
			r.draw()
		}
	}
}

func (r *Renderer) draw() {
	w, h := r.screen.Size()
	if w <= 0 || h <= 0 {
		return
	}
	r.screen.Draw(r.Frame(w, h))
}

// Frame composes one frame of the given size. The lock is held only for
// the snapshot; composition happens outside it.
func (r *Renderer) Frame(width, height int) string {
	v := r.controller.View()
	buf, cursor, gen := r.input.edit()
	if v.Mode == types.ModeEditing && gen != v.EditGen {
		// The input loop has not adopted this edit yet
		buf, cursor = v.Prefill, utf8.RuneCountInString(v.Prefill)
	}
	tick := r.frames.Add(1)

	bodyHeight := max(height-statusbar.Height, 0)
	body := board.Render(v.Board, r.opts, r.styles, width, bodyHeight)
	body = r.toasts.Overlay(body, v.Toasts, width, bodyHeight)

	bar := statusbar.New(statusbar.State{
		Mode:    v.Mode,
		Hints:   r.hints,
		Running: v.Running,
		Tick:    tick,
		Prompt:  v.Prompt,
		Buffer:  buf,
		Cursor:  cursor,
		Confirm: v.Confirm,
	}, width, r.styles).Render()

	if bodyHeight == 0 {
		return bar
	}
	return padLines(body, bodyHeight) + "\n" + bar
}

// padLines makes s exactly n lines tall
func padLines(s string, n int) string {
	lines := strings.Split(s, "\n")
	if len(lines) > n {
		lines = lines[:n]
	}
	for len(lines) < n {
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
