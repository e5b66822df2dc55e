package control

import (
	"context"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"go-jobsearch-rpa/internal/notify"
)

// ErrRestart is the cancellation cause of a run stopped by Restart.
var ErrRestart = errors.New("restart requested by operator")

// ErrUnknownAction is returned by Apply for an unrecognised action name.
var ErrUnknownAction = errors.New("unknown control action")

const (
	// DefaultPollInterval is how often a paused Checkpoint rechecks the flag.
	DefaultPollInterval = 500 * time.Millisecond

	// ExitKilled is the process exit code after Kill.
	ExitKilled = 1

	PausedOverlayText = "RPA PAUSED: send resume to continue"
)

// Action names an operator command.
type Action string

const (
	ActionPause   Action = "pause"
	ActionResume  Action = "resume"
	ActionRestart Action = "restart"
	ActionKill    Action = "kill"
)

// ParseAction maps a case-insensitive name to an Action.
func ParseAction(name string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(name)))
	switch a {
	case ActionPause, ActionResume, ActionRestart, ActionKill:
		return a, nil
	}
	return "", errors.Wrapf(ErrUnknownAction, "%q", name)
}

// Plane applies operator commands to a State and exposes the pause
// checkpoint the automation calls between units of work.
//
// Kill and Restart are terminal: once either is accepted, later commands are
// ignored until the next Begin. Kill takes precedence over Restart.
type Plane struct {
	state    State
	notifier notify.Notifier
	exit     func(code int)
	log      *zap.SugaredLogger
	poll     time.Duration

	terminal atomic.Bool

	mu      sync.Mutex
	overlay notify.Handle
	cancel  context.CancelCauseFunc
	run     uint64
}

// Option customises a Plane.
type Option func(*Plane)

// WithExit replaces os.Exit, for tests.
func WithExit(exit func(code int)) Option {
	return func(p *Plane) { p.exit = exit }
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(p *Plane) { p.log = log }
}

func WithPollInterval(d time.Duration) Option {
	return func(p *Plane) { p.poll = d }
}

// NewPlane builds a Plane that raises its pause overlay through n.
func NewPlane(n notify.Notifier, opts ...Option) *Plane {
	if n == nil {
		n = notify.Nop{}
	}
	p := &Plane{
		notifier: n,
		exit:     os.Exit,
		log:      zap.NewNop().Sugar(),
		poll:     DefaultPollInterval,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Begin starts a run with fresh state. The returned context is cancelled with
// cause ErrRestart when Restart is accepted; stop releases it.
func (p *Plane) Begin(parent context.Context) (ctx context.Context, stop context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel == nil && p.state.restartRequested.Load() {
		p.log.Info("🔄 Queued restart applied, starting fresh run")
	}
	p.dismissLocked()
	p.state.reset()
	p.terminal.Store(false)

	ctx, cancel := context.WithCancelCause(parent)
	p.cancel = cancel
	p.run++
	run := p.run
	return ctx, func() {
		cancel(context.Canceled)
		p.mu.Lock()
		if p.run == run {
			p.cancel = nil
		}
		p.mu.Unlock()
	}
}

// State returns a snapshot of the current flags.
func (p *Plane) State() Snapshot { return p.state.Snapshot() }

// Pause raises the overlay and makes Checkpoint block. Idempotent.
func (p *Plane) Pause() {
	if p.terminal.Load() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.paused.CompareAndSwap(false, true) {
		return
	}
	p.log.Info("⏸️  Pause requested")
	p.overlay = p.notifier.Overlay(PausedOverlayText)
}

// Resume dismisses the overlay and releases Checkpoint. Idempotent.
func (p *Plane) Resume() {
	if p.terminal.Load() {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.state.paused.CompareAndSwap(true, false) {
		return
	}
	p.log.Info("▶️  Resumed")
	p.dismissLocked()
}

// Kill terminates the process with ExitKilled without unwinding the run.
func (p *Plane) Kill() {
	p.state.killRequested.Store(true)
	p.terminal.Store(true)
	p.log.Warn("🛑 Kill requested, exiting")
	p.exit(ExitKilled)
}

// Restart cancels the active run with ErrRestart. With no active run the
// request stays visible in State until the next Begin, so a supervisor can
// relaunch. It is ignored once a kill or another restart has been accepted.
func (p *Plane) Restart() {
	if p.state.killRequested.Load() || !p.terminal.CompareAndSwap(false, true) {
		return
	}
	p.state.restartRequested.Store(true)
	p.log.Warn("🔄 Restart requested")

	p.mu.Lock()
	defer p.mu.Unlock()
	p.state.paused.Store(false)
	p.dismissLocked()
	if p.cancel != nil {
		p.cancel(ErrRestart)
		return
	}
	p.log.Info("🔄 No active run, restart queued")
}

// Apply dispatches a named action.
func (p *Plane) Apply(a Action) error {
	switch a {
	case ActionPause:
		p.Pause()
	case ActionResume:
		p.Resume()
	case ActionRestart:
		p.Restart()
	case ActionKill:
		p.Kill()
	default:
		return errors.Wrapf(ErrUnknownAction, "%q", a)
	}
	return nil
}

// Checkpoint blocks while paused. It returns the context's cause once ctx is
// done, nil otherwise.
func (p *Plane) Checkpoint(ctx context.Context) error {
	if p.state.paused.Load() {
		ticker := time.NewTicker(p.poll)
		defer ticker.Stop()
		for p.state.paused.Load() {
			select {
			case <-ctx.Done():
				return context.Cause(ctx)
			case <-ticker.C:
			}
		}
	}
	if ctx.Err() != nil {
		return context.Cause(ctx)
	}
	return nil
}

func (p *Plane) dismissLocked() {
	if p.overlay != nil {
		p.overlay.Dismiss()
		p.overlay = nil
	}
}
