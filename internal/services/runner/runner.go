// Package runner launches the shell commands attached to todo items.
//
// Launch never blocks the caller. Each process is tracked until it has
// been reaped and its outcome is reported on the Events channel.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"sync"
	"sync/atomic"
	"time"

	"github.com/riordanpawley/forget/internal/domain"
)

// ErrShuttingDown is returned by Launch once Shutdown has begun
var ErrShuttingDown = errors.New("runner is shutting down")

// reapTimeout bounds how long Shutdown waits for killed processes to exit
const reapTimeout = 5 * time.Second

// Handle identifies one launch
type Handle uint64

// EventKind classifies a process event
type EventKind int

const (
	Started EventKind = iota
	Exited            // exited with status 0
	Failed            // could not start, nonzero exit, or killed
)

func (k EventKind) String() string {
	switch k {
	case Started:
		return "started"
	case Exited:
		return "exited"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Event reports a change in a launched process
type Event struct {
	Handle   Handle
	Command  string
	Kind     EventKind
	ExitCode int
	Err      error // *domain.SpawnError when Kind is Failed
	Duration time.Duration
}

// Options configures a Runner
type Options struct {
	Shell string        // interpreter invoked as <shell> -c <command>
	Grace time.Duration // how long Shutdown lets processes finish
}

// Runner executes commands asynchronously
type Runner struct {
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	next   Handle

	running atomic.Int32
	wg      sync.WaitGroup

	events chan Event
	quit   chan struct{}

	// killCtx is cancelled when the grace period runs out
	killCtx context.Context
	kill    context.CancelFunc
}

// New creates a Runner
func New(opts Options, logger *slog.Logger) *Runner {
	if opts.Shell == "" {
		opts.Shell = "sh"
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	killCtx, kill := context.WithCancel(context.Background())
	return &Runner{
		opts:    opts,
		logger:  logger,
		events:  make(chan Event, 64),
		quit:    make(chan struct{}),
		killCtx: killCtx,
		kill:    kill,
	}
}

// Events returns the channel process events are delivered on
func (r *Runner) Events() <-chan Event {
	return r.events
}

// Running returns the number of processes not yet reaped
func (r *Runner) Running() int {
	return int(r.running.Load())
}

// Launch starts command in the background and returns at once. The
// process inherits the environment; its standard streams are detached.
func (r *Runner) Launch(command string) (Handle, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return 0, ErrShuttingDown
	}
	r.next++
	h := r.next
	r.running.Add(1)
	r.wg.Add(1)
	r.mu.Unlock()

	go r.run(h, command)
	return h, nil
}

func (r *Runner) run(h Handle, command string) {
	defer r.wg.Done()
	defer r.running.Add(-1)

	start := time.Now()
	log := r.logger.With("handle", h, "command", command)

	// Stdin, Stdout and Stderr stay nil so they are connected to the null device
	cmd := exec.CommandContext(r.killCtx, r.opts.Shell, "-c", command)
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		log.Warn("command failed to start", "error", err)
		r.emit(Event{
			Handle:   h,
			Command:  command,
			Kind:     Failed,
			ExitCode: -1,
			Err:      &domain.SpawnError{Command: command, ExitCode: -1, Err: err},
		})
		return
	}

	log.Debug("command started", "pid", cmd.Process.Pid)
	r.emit(Event{Handle: h, Command: command, Kind: Started})

	err := cmd.Wait()
	elapsed := time.Since(start)
	code := cmd.ProcessState.ExitCode()

	if err == nil {
		log.Debug("command exited", "duration", elapsed)
		r.emit(Event{Handle: h, Command: command, Kind: Exited, Duration: elapsed})
		return
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && code > 0 {
		err = nil
	} else if r.killCtx.Err() != nil {
		err = fmt.Errorf("killed after grace period: %w", err)
	}

	log.Info("command failed", "exit_code", code, "duration", elapsed, "error", err)
	r.emit(Event{
		Handle:   h,
		Command:  command,
		Kind:     Failed,
		ExitCode: code,
		Err:      &domain.SpawnError{Command: command, ExitCode: code, Err: err},
		Duration: elapsed,
	})
}

// emit delivers ev unless the runner has shut down and nobody is listening
func (r *Runner) emit(ev Event) {
	select {
	case r.events <- ev:
	case <-r.quit:
		r.logger.Debug("dropping process event after shutdown", "handle", ev.Handle, "kind", ev.Kind.String())
	}
}

// Shutdown refuses new launches, lets running processes finish for the
// grace period (or until ctx is done), then kills and reaps the rest.
// It is safe to call more than once.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	r.mu.Unlock()

	// Nobody drains events from here on
	close(r.quit)
	defer r.kill()

	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	if n := r.Running(); n > 0 {
		r.logger.Info("waiting for running commands", "count", n, "grace", r.opts.Grace)
	}

	grace := time.NewTimer(r.opts.Grace)
	defer grace.Stop()

	select {
	case <-done:
		return nil
	case <-grace.C:
	case <-ctx.Done():
	}

	n := r.Running()
	r.logger.Warn("killing commands still running", "count", n)
	r.kill()

	select {
	case <-done:
		return nil
	case <-time.After(reapTimeout):
		return fmt.Errorf("%d commands did not exit after being killed", r.Running())
	}
}
