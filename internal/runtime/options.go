package runtime

import (
	"log/slog"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/variables"
)

// DefaultMaxSkipHops bounds how many disabled nodes a single advance may skip.
const DefaultMaxSkipHops = 100

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(c *Controller) {
		c.hooks = hooks
	}
}

// WithCollaborators wires the presentation, localization and event collaborators.
func WithCollaborators(collab domain.Collaborators) Option {
	return func(c *Controller) {
		c.collab = collab
	}
}

// WithGlobals sets the global variable store. It outlives runs and is never
// cleared by the controller.
func WithGlobals(globals *variables.Store) Option {
	return func(c *Controller) {
		if globals != nil {
			c.globals = globals
		}
	}
}

// WithMaxSkipHops overrides DefaultMaxSkipHops.
func WithMaxSkipHops(n int) Option {
	return func(c *Controller) {
		if n > 0 {
			c.maxSkip = n
		}
	}
}
