// Package app runs the sticky-note board: an input loop, a render loop
// and a controller that owns the board, supervised as one errgroup.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/riordanpawley/forget/internal/config"
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/store"
	"github.com/riordanpawley/forget/internal/types"
	"github.com/riordanpawley/forget/internal/ui/board"
	"github.com/riordanpawley/forget/internal/ui/styles"
	"golang.org/x/sync/errgroup"
)

// Options holds the collaborators of an App
type Options struct {
	Config *config.Config
	Keymap *keymap.Keymap
	Styles *styles.Styles
	Store  store.Store
	Runner Launcher
	Source KeySource
	Screen Screen
	Logger *slog.Logger
}

// App is a loaded board ready to run
type App struct {
	controller *Controller
	input      *Input
	renderer   *Renderer
	logger     *slog.Logger
}

// New loads the board and wires the loops together. A board that cannot
// be loaded is replaced by an empty one and reported with a toast; it is
// not written back unless it is changed.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Config == nil || opts.Keymap == nil || opts.Store == nil ||
		opts.Runner == nil || opts.Source == nil || opts.Screen == nil {
		return nil, errors.New("app: missing collaborator")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := opts.Styles
	if s == nil {
		var err error
		if s, err = styles.New(opts.Config.Colors); err != nil {
			return nil, fmt.Errorf("styles: %w", err)
		}
	}

	b, loadErr := opts.Store.Load(ctx)
	if loadErr != nil {
		logger.Warn("load failed, starting empty", "location", opts.Store.Location(), "error", loadErr)
		b = nil
	} else {
		logger.Info("board loaded", "location", opts.Store.Location(), "notes", len(b.Notes))
	}

	c := NewController(b, opts.Store, opts.Runner, opts.Config.GracePeriod(), logger.With("component", "controller"))
	if loadErr != nil {
		c.Notify(types.ToastWarning, "Could not load notes: "+loadErr.Error())
	}

	in := NewInput(opts.Source, opts.Keymap, c.Requests(), logger.With("component", "input"))

	bopts := board.Options{
		Title:     opts.Config.Title,
		Highlight: opts.Config.Highlight,
	}
	if opts.Config.Notes.Markdown {
		bopts.Markdown = board.NewMarkdown(opts.Config.Notes.MarkdownStyle)
	}
	r := NewRenderer(opts.Screen, c, in, opts.Config.TickInterval(), s, bopts, opts.Keymap, logger.With("component", "render"))

	return &App{
		controller: c,
		input:      in,
		renderer:   r,
		logger:     logger,
	}, nil
}

// Controller returns the board owner
func (a *App) Controller() *Controller {
	return a.controller
}

// Renderer returns the render loop
func (a *App) Renderer() *Renderer {
	return a.renderer
}

// Run runs until the user exits, the input closes or ctx is done. The
// board is saved on the way out if it changed. A closed input is a
// normal exit.
func (a *App) Run(ctx context.Context) error {
	start := time.Now()

	g, gctx := errgroup.WithContext(ctx)
	loopCtx, stopLoops := context.WithCancel(gctx)
	defer stopLoops()

	g.Go(func() error {
		return a.input.Run(loopCtx)
	})
	g.Go(func() error {
		return a.renderer.Run(loopCtx)
	})
	// The controller's error is kept apart: a closed input wins the
	// errgroup but must not hide a failed final save
	var shutdownErr error
	g.Go(func() error {
		shutdownErr = a.controller.Run(gctx, stopLoops)
		return shutdownErr
	})

	err := g.Wait()
	a.logger.Info("stopped", "uptime", time.Since(start), "frames", a.renderer.Frames())
	if shutdownErr != nil {
		return shutdownErr
	}
	if errors.Is(err, ErrInputClosed) {
		return nil
	}
	return err
}
