package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/riordanpawley/forget/internal/domain"
	"github.com/riordanpawley/forget/internal/keymap"
	"github.com/riordanpawley/forget/internal/services/runner"
	"github.com/riordanpawley/forget/internal/store"
	"github.com/riordanpawley/forget/internal/types"
)

// maxToasts caps the toast stack; the oldest is dropped first
const maxToasts = 5

// View is a consistent copy of everything one frame shows
type View struct {
	Board   *domain.Board
	Mode    types.Mode
	Prompt  string
	Confirm string
	Toasts  []types.Toast
	Running int

	// EditGen numbers the current edit; Prefill is the text it began
	// with. Together they let a frame tell whether the input loop's
	// buffer already belongs to this edit.
	EditGen uint64
	Prefill string
}

// editState is the pending text edit while in ModeEditing
type editState struct {
	purpose Purpose
	note    domain.NoteID
	index   int
	text    string // todo text held while the command is asked for
	prefill string
}

// Controller is the single owner of the board. Every mutation happens on
// the goroutine running Run; readers take snapshots under the read lock.
type Controller struct {
	mu       sync.RWMutex
	board    *domain.Board
	mode     types.Mode
	edit     editState
	confirm  domain.NoteID
	editGen  uint64
	toasts   []types.Toast
	rev      uint64 // bumped on every change to the persisted document
	savedRev uint64

	requests chan Request
	store    store.Store
	runner   Launcher
	grace    time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewController creates a controller owning board
func NewController(board *domain.Board, st store.Store, r Launcher, grace time.Duration, logger *slog.Logger) *Controller {
	if board == nil {
		board = domain.NewBoard()
	}
	return &Controller{
		board:    board,
		mode:     types.ModeNavigating,
		requests: make(chan Request),
		store:    st,
		runner:   r,
		grace:    grace,
		logger:   logger,
		now:      time.Now,
	}
}

// Requests is the channel the input loop sends on
func (c *Controller) Requests() chan<- Request {
	return c.requests
}

// View returns a snapshot for rendering
func (c *Controller) View() View {
	c.mu.RLock()
	defer c.mu.RUnlock()

	v := View{
		Board:   c.board.Snapshot(),
		Mode:    c.mode,
		Toasts:  types.Active(c.toasts, c.now(), maxToasts),
		Running: c.runner.Running(),
	}
	switch c.mode {
	case types.ModeEditing:
		v.Prompt = c.edit.purpose.Prompt()
		v.EditGen = c.editGen
		v.Prefill = c.edit.prefill
	case types.ModeConfirmDelete:
		if n, ok := c.board.Note(c.confirm); ok {
			v.Confirm = fmt.Sprintf("Delete sticky note %q?", n.Title)
		}
	}
	return v
}

// Dirty reports whether the board changed since it was last saved
func (c *Controller) Dirty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rev != c.savedRev
}

// Notify shows a toast
func (c *Controller) Notify(level types.ToastLevel, msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pushToast(level, msg)
}

// Run applies requests in arrival order and drains runner events until
// an Exit request or ctx is done, then shuts down: the input and render
// loops are stopped, running commands get the grace period and the board
// is saved if it changed.
func (c *Controller) Run(ctx context.Context, stopLoops context.CancelFunc) error {
	for {
		select {
		case <-ctx.Done():
			c.logger.Debug("controller stopping", "reason", context.Cause(ctx))
			return c.shutdown(ctx, stopLoops)

		case req := <-c.requests:
			ack := c.handle(ctx, req)
			req.ack <- ack
			if ack.Exit {
				return c.shutdown(ctx, stopLoops)
			}

		case ev := <-c.runner.Events():
			c.handleEvent(ev)
		}
	}
}

func (c *Controller) shutdown(ctx context.Context, stopLoops context.CancelFunc) error {
	stopLoops()

	// The parent context may already be cancelled; the final steps still run
	bg := context.WithoutCancel(ctx)

	c.logger.Info("shutting down", "running", c.runner.Running(), "grace", c.grace)
	if err := c.runner.Shutdown(bg); err != nil {
		c.logger.Warn("runner shutdown", "error", err)
	}

	c.mu.RLock()
	dirty := c.rev != c.savedRev
	c.mu.RUnlock()
	if !dirty {
		c.logger.Debug("board unchanged, not saving")
		return nil
	}
	return c.save(bg)
}

// save persists a snapshot and records the saved revision
func (c *Controller) save(ctx context.Context) error {
	c.mu.RLock()
	snap := c.board.Snapshot()
	rev := c.rev
	c.mu.RUnlock()

	start := time.Now()
	if err := c.store.Save(ctx, snap); err != nil {
		c.logger.Error("save failed", "location", c.store.Location(), "error", err)
		return err
	}
	c.logger.Info("board saved",
		"location", c.store.Location(),
		"notes", len(snap.Notes),
		"duration", time.Since(start),
	)

	c.mu.Lock()
	c.savedRev = rev
	c.mu.Unlock()
	return nil
}

// handle applies one request. It runs on the controller goroutine only.
func (c *Controller) handle(ctx context.Context, req Request) Ack {
	c.logger.Debug("request", "command", req.Cmd, "mode", c.currentMode())

	// Saving does not hold the write lock while the store works
	if req.Cmd == keymap.SaveState && c.currentMode() != types.ModeConfirmDelete {
		if err := c.save(ctx); err != nil {
			c.Notify(types.ToastError, "Save failed: "+err.Error())
		} else {
			c.Notify(types.ToastSuccess, "Saved to "+c.store.Location())
		}
		return c.ack()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.mode {
	case types.ModeEditing:
		return c.handleEditing(req)
	case types.ModeConfirmDelete:
		return c.handleConfirm(req)
	default:
		return c.handleNavigating(req)
	}
}

func (c *Controller) currentMode() types.Mode {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.mode
}

func (c *Controller) ack() Ack {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Ack{Mode: c.mode}
}

// handleNavigating runs with the write lock held
func (c *Controller) handleNavigating(req Request) Ack {
	b := c.board

	switch req.Cmd {
	case keymap.NavigateUp:
		c.touchIf(b.MoveItem(-1))
	case keymap.NavigateDown:
		c.touchIf(b.MoveItem(1))
	case keymap.NavigateLeft:
		c.touchIf(b.CycleNote(-1))
	case keymap.NavigateRight:
		c.touchIf(b.CycleNote(1))

	case keymap.MarkDone:
		note, ok := c.currentItemNote("toggle_done")
		if ok {
			c.apply(b.ToggleDone(note, b.Selection.Item))
		}

	case keymap.RemoveItem:
		note, ok := c.currentItemNote("remove_item")
		if ok {
			c.apply(b.RemoveItem(note, b.Selection.Item))
		}

	case keymap.NewStickyNote:
		return c.beginEdit(editState{purpose: PurposeNewStickyNote}, "")

	case keymap.NewTodoItem:
		note, ok := b.Current()
		if !ok {
			c.pushToast(types.ToastInfo, "Create a sticky note first")
			break
		}
		return c.beginEdit(editState{purpose: PurposeNewTodoText, note: note.ID}, "")

	case keymap.NewNote:
		note, ok := b.Current()
		if !ok {
			c.pushToast(types.ToastInfo, "Create a sticky note first")
			break
		}
		return c.beginEdit(editState{purpose: PurposeNewNote, note: note.ID}, "")

	case keymap.EditCurrentItem:
		item, ok := b.CurrentItem()
		if !ok {
			c.pushToast(types.ToastInfo, "Nothing selected to edit")
			break
		}
		note, _ := b.Current()
		return c.beginEdit(editState{
			purpose: PurposeEditItem,
			note:    note.ID,
			index:   b.Selection.Item,
		}, item.Text)

	case keymap.RemoveStickyNote:
		note, ok := b.Current()
		if !ok {
			c.pushToast(types.ToastInfo, "No sticky note to remove")
			break
		}
		c.mode = types.ModeConfirmDelete
		c.confirm = note.ID

	case keymap.Activate:
		c.activate()

	case keymap.Exit:
		return Ack{Mode: c.mode, Exit: true}

	default:
		c.pushToast(types.ToastInfo, fmt.Sprintf("%s is not available here", req.Cmd))
	}

	return Ack{Mode: c.mode}
}

// handleEditing runs with the write lock held
func (c *Controller) handleEditing(req Request) Ack {
	switch req.Cmd {
	case keymap.Submit:
		return c.submit(req.Text)
	case keymap.Cancel:
		c.endEdit()
	case keymap.Exit:
		c.endEdit()
		return Ack{Mode: c.mode, Exit: true}
	default:
		c.pushToast(types.ToastInfo, "Finish editing first (enter to submit, esc to cancel)")
	}
	return Ack{Mode: c.mode}
}

// handleConfirm runs with the write lock held
func (c *Controller) handleConfirm(req Request) Ack {
	id := c.confirm
	c.confirm = ""
	c.mode = types.ModeNavigating

	if req.Cmd == keymap.Confirm {
		title := ""
		if n, ok := c.board.Note(id); ok {
			title = n.Title
		}
		if c.apply(c.board.RemoveStickyNote(id)) {
			c.pushToast(types.ToastSuccess, fmt.Sprintf("Removed %q", title))
		}
	}
	return Ack{Mode: c.mode}
}

func (c *Controller) beginEdit(e editState, prefill string) Ack {
	c.mode = types.ModeEditing
	c.editGen++
	e.prefill = prefill
	c.edit = e
	return Ack{Mode: c.mode, NewEdit: true, Prefill: prefill, EditGen: c.editGen}
}

func (c *Controller) endEdit() {
	c.mode = types.ModeNavigating
	c.edit = editState{}
}

// submit finishes the current edit with text
func (c *Controller) submit(text string) Ack {
	e := c.edit
	trimmed := strings.TrimSpace(text)

	switch e.purpose {
	case PurposeNewStickyNote:
		c.endEdit()
		if trimmed == "" {
			c.pushToast(types.ToastInfo, "Empty title, nothing added")
			break
		}
		c.board.AddStickyNote(trimmed)
		c.touch()

	case PurposeNewTodoText:
		if trimmed == "" {
			c.endEdit()
			c.pushToast(types.ToastInfo, "Empty todo, nothing added")
			break
		}
		e.purpose = PurposeNewTodoCommand
		e.text = trimmed
		return c.beginEdit(e, "")

	case PurposeNewTodoCommand:
		c.endEdit()
		c.apply(c.board.AddItem(e.note, e.text, trimmed))

	case PurposeNewNote:
		c.endEdit()
		if trimmed == "" {
			break
		}
		c.apply(c.board.AddNote(e.note, text))

	case PurposeEditItem:
		c.endEdit()
		if trimmed == "" {
			c.pushToast(types.ToastInfo, "Empty text, todo unchanged")
			break
		}
		c.apply(c.board.EditItemText(e.note, e.index, trimmed))

	default:
		c.endEdit()
	}

	return Ack{Mode: c.mode}
}

// activate launches the current item's command
func (c *Controller) activate() {
	item, ok := c.board.CurrentItem()
	if !ok {
		c.pushToast(types.ToastInfo, "Nothing selected")
		return
	}
	if !item.HasCommand() {
		c.pushToast(types.ToastInfo, "No command attached to this todo")
		return
	}

	h, err := c.runner.Launch(item.Command)
	if err != nil {
		c.pushToast(types.ToastWarning, "Cannot run command: "+err.Error())
		return
	}
	c.logger.Info("command launched", "handle", h, "command", item.Command)
	c.pushToast(types.ToastInfo, "Running: "+item.Command)
}

func (c *Controller) handleEvent(ev runner.Event) {
	switch ev.Kind {
	case runner.Started:
		c.logger.Debug("command started", "handle", ev.Handle, "command", ev.Command)
	case runner.Exited:
		c.logger.Info("command finished", "handle", ev.Handle, "duration", ev.Duration)
		c.Notify(types.ToastSuccess, "Finished: "+ev.Command)
	case runner.Failed:
		c.logger.Warn("command failed",
			"handle", ev.Handle,
			"command", ev.Command,
			"exit_code", ev.ExitCode,
			"error", ev.Err,
		)
		c.Notify(types.ToastError, ev.Err.Error())
	}
}

// currentItemNote returns the current note when an item is selected
func (c *Controller) currentItemNote(op string) (domain.NoteID, bool) {
	if _, ok := c.board.CurrentItem(); !ok {
		c.reject(&domain.BoardError{Op: op, Index: domain.None, Err: domain.ErrNoSelection})
		return "", false
	}
	note, _ := c.board.Current()
	return note.ID, true
}

// apply records the outcome of a board operation. Board errors leave the
// board untouched and become info toasts.
func (c *Controller) apply(err error) bool {
	if err != nil {
		c.reject(err)
		return false
	}
	c.touch()
	return true
}

func (c *Controller) reject(err error) {
	var be *domain.BoardError
	if errors.As(err, &be) {
		c.logger.Debug("board operation rejected", "op", be.Op, "error", be.Err)
	}
	c.pushToast(types.ToastInfo, err.Error())
}

func (c *Controller) touch() {
	c.rev++
}

func (c *Controller) touchIf(changed bool) {
	if changed {
		c.rev++
	}
}

// pushToast must be called with the write lock held
func (c *Controller) pushToast(level types.ToastLevel, msg string) {
	now := c.now()
	c.toasts = types.Active(append(c.toasts, types.NewToast(level, msg, now)), now, maxToasts)
}
