package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/logging"
)

// ErrInterrupted is returned when a signal stops the run.
var ErrInterrupted = errors.New("interrupted")

// Runner handles the interactive loop of a Colloquy engine using provided IO.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	// Handler is the strategy for IO. Defaults to a TextHandler on Stdin/Stdout.
	// The engine must have been built with the handler's Collaborators.
	Handler IOHandler

	// Logger is used for internal debug logging.
	// If nil, a no-op logger is used.
	Logger *slog.Logger

	// AutoSave persists the engine's profile after choices and at the end.
	AutoSave bool

	// InterruptEvent is raised when Ctrl+C hits an interruptible node.
	InterruptEvent string

	notify func() (<-chan os.Signal, func())
}

// NewRunner creates a new Runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		Logger:         logging.NewNop(),
		InterruptEvent: DefaultInterruptEvent,
		notify:         notifySignals,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.Handler == nil {
		r.Handler = NewTextHandler(os.Stdin, os.Stdout)
	}
	return r
}

// Run starts graphID on the engine and applies user commands until the
// dialogue ends, the user quits, or ctx is cancelled.
// It returns the error the run ended with, if any.
func (r *Runner) Run(ctx context.Context, eng *colloquy.Engine, graphID string) error {
	if err := eng.Start(ctx, graphID); err != nil {
		return err
	}
	return r.Drive(ctx, eng)
}

// Drive runs the input loop on an engine that has already been started.
func (r *Runner) Drive(ctx context.Context, eng *colloquy.Engine) error {
	src, release := r.notify()
	signals := newSignalManager(r.InterruptEvent, src, release)
	defer signals.Stop()

	for {
		if err := eng.Idle(ctx); err != nil {
			eng.End()
			return err
		}

		pending := eng.Pending()
		if eng.Status() != colloquy.StatusRunning || !pending.Waiting() {
			return r.finish(ctx, eng)
		}

		line, err := r.readInput(ctx, signals, pending)
		if err != nil {
			switch signals.Decide(pending) {
			case SignalInterrupt:
				// The next node can suspend before RaiseInterrupt returns.
				signals.Rearm()
				if eng.RaiseInterrupt(r.InterruptEvent) {
					r.Logger.Debug("signal raised interrupt", "node_id", pending.NodeID, "event", r.InterruptEvent)
					continue
				}
				eng.End()
				return ErrInterrupted
			case SignalStop:
				r.Logger.Debug("signal stopped run", "node_id", pending.NodeID, "signal", signals.Caught())
				eng.End()
				return ErrInterrupted
			}
			if errors.Is(err, io.EOF) {
				eng.End()
				return r.finish(ctx, eng)
			}
			eng.End()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("input error: %w", err)
		}

		cmd, err := ParseCommand(line, pending)
		if err != nil {
			_ = r.Handler.SystemOutput(ctx, err.Error())
			continue
		}
		if quit := r.apply(ctx, eng, cmd); quit {
			eng.End()
			return r.finish(ctx, eng)
		}
	}
}

// readInput reads one line, giving up when ctx is done or a signal arrives.
func (r *Runner) readInput(ctx context.Context, signals *SignalManager, pending colloquy.Suspension) (string, error) {
	inputCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stop := context.AfterFunc(signals.Context(), cancel)
	defer stop()

	line, err := r.Handler.Input(inputCtx, pending)
	if err != nil {
		signals.CheckRace()
	}
	return line, err
}

func (r *Runner) apply(ctx context.Context, eng *colloquy.Engine, cmd Command) (quit bool) {
	switch cmd.Kind {
	case CommandQuit:
		return true
	case CommandConfirm:
		if !eng.ConfirmAdvance() {
			_ = r.Handler.SystemOutput(ctx, "Nothing to confirm.")
		}
	case CommandChoose:
		if err := eng.SelectChoice(cmd.OptionID); err != nil {
			_ = r.Handler.SystemOutput(ctx, err.Error())
			return false
		}
		r.save(ctx, eng)
	case CommandInterrupt:
		if !eng.RaiseInterrupt(cmd.Event) {
			_ = r.Handler.SystemOutput(ctx, fmt.Sprintf("Interrupt '%s' is not accepted here.", cmd.Event))
		}
	}
	return false
}

func (r *Runner) finish(ctx context.Context, eng *colloquy.Engine) error {
	select {
	case <-eng.Done():
	case <-ctx.Done():
		return ctx.Err()
	}
	r.save(ctx, eng)
	return eng.Err()
}

func (r *Runner) save(ctx context.Context, eng *colloquy.Engine) {
	if !r.AutoSave {
		return
	}
	if err := eng.Save(ctx); err != nil {
		r.Logger.Warn("profile save failed", "err", err)
		return
	}
	r.Logger.Debug("profile saved", "run_id", eng.RunID())
}
