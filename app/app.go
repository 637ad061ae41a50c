package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"runtime/debug"
	"sync/atomic"
	"time"

	"github.com/soocke/hudscan/domain/detect"
	"github.com/soocke/hudscan/domain/trigger"
)

// State is the phase of the trigger loop.
type State int32

const (
	StateIdle State = iota
	StateSettling
	StateScanning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSettling:
		return "settling"
	case StateScanning:
		return "scanning"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Cycler runs one detection cycle.
type Cycler interface {
	RunCycle(ctx context.Context) (detect.Outcome, error)
}

// App waits for operator triggers and runs a detection cycle for each one.
type App struct {
	engine  Cycler
	trigger trigger.Source
	settle  time.Duration
	logger  *slog.Logger
	out     io.Writer

	state  atomic.Int32
	cycles atomic.Uint64
	last   atomic.Pointer[detect.Outcome]
}

// New wires an App from a container. Outcomes are printed to out.
func New(c *Container, out io.Writer) *App {
	return NewApp(c.Engine, c.Trigger, c.Config.SettleDelay(), out, c.Logger)
}

// NewApp builds an App from its collaborators. out may be nil.
func NewApp(engine Cycler, src trigger.Source, settle time.Duration, out io.Writer, logger *slog.Logger) *App {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if out == nil {
		out = io.Discard
	}
	return &App{engine: engine, trigger: src, settle: settle, out: out, logger: logger}
}

// Run processes triggers until an exit signal, end of input or cancellation.
// Failed cycles are logged and the loop keeps waiting.
func (a *App) Run(ctx context.Context) error {
	if a.trigger == nil {
		return errors.New("app: no trigger source")
	}
	defer a.setState(StateStopped)
	a.logger.Info("app.ready", "settle", a.settle)
	for {
		a.setState(StateIdle)
		sig, err := a.trigger.Next(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("trigger: %w", err)
		}
		if sig == trigger.SignalExit {
			a.logger.Info("app.exit", "cycles", a.cycles.Load())
			return nil
		}

		a.setState(StateSettling)
		if err := sleepCtx(ctx, a.settle); err != nil {
			return nil
		}
		if _, err := a.RunOnce(ctx); err != nil && ctx.Err() != nil {
			return nil
		}
	}
}

// RunOnce runs a single cycle immediately and prints its outcome.
func (a *App) RunOnce(ctx context.Context) (detect.Outcome, error) {
	a.setState(StateScanning)
	out, err := a.runCycle(ctx)
	a.cycles.Add(1)
	if err != nil {
		a.logger.Warn("app.cycle_error", "error", err)
		return out, err
	}
	a.last.Store(&out)
	fmt.Fprintln(a.out, out.String())
	return out, nil
}

func (a *App) runCycle(ctx context.Context) (out detect.Outcome, err error) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("cycle panic", "error", r, "stack", string(debug.Stack()))
			err = fmt.Errorf("cycle panic: %v", r)
		}
	}()
	return a.engine.RunCycle(ctx)
}

// State reports the current loop phase.
func (a *App) State() State { return State(a.state.Load()) }

func (a *App) setState(s State) { a.state.Store(int32(s)) }

// Cycles is the number of cycles attempted.
func (a *App) Cycles() uint64 { return a.cycles.Load() }

// Last returns the most recent successful outcome.
func (a *App) Last() (detect.Outcome, bool) {
	p := a.last.Load()
	if p == nil {
		return detect.Outcome{}, false
	}
	return *p, true
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
