package runner

import "log/slog"

// DefaultInputBufferSize is the default number of lines to buffer for input handlers.
const DefaultInputBufferSize = 64

// DefaultInterruptEvent is raised when Ctrl+C is pressed on an interruptible node.
const DefaultInterruptEvent = "interrupt"

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.Logger = logger
	}
}

// WithInputHandler configures a custom IOHandler.
func WithInputHandler(handler IOHandler) Option {
	return func(r *Runner) {
		r.Handler = handler
	}
}

// WithAutoSave saves the engine's profile after every choice and when the run ends.
func WithAutoSave(enabled bool) Option {
	return func(r *Runner) {
		r.AutoSave = enabled
	}
}

// WithInterruptEvent sets the event raised by Ctrl+C.
func WithInterruptEvent(event string) Option {
	return func(r *Runner) {
		r.InterruptEvent = event
	}
}
