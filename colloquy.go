package colloquy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/colloquy/pkg/profile"
	"github.com/aretw0/colloquy/pkg/variables"
)

// Version is the library version reported by the CLI.
const Version = "0.4.0"

// Re-exported runtime types, so hosts outside this module can inspect a run.
type (
	Status      = runtime.Status
	SuspendKind = runtime.SuspendKind
	Suspension  = runtime.Suspension
)

const (
	StatusIdle    = runtime.StatusIdle
	StatusRunning = runtime.StatusRunning
	StatusEnded   = runtime.StatusEnded

	SuspendNone   = runtime.SuspendNone
	SuspendInput  = runtime.SuspendInput
	SuspendChoice = runtime.SuspendChoice
)

// ErrNotWatchable is returned by Watch when the loader cannot report changes.
var ErrNotWatchable = errors.New("current loader does not support watching")

// Engine is the high-level entry point for the Colloquy library.
// It loads graphs by id, owns the global variable store (optionally backed
// by a player profile) and wraps the runtime controller.
type Engine struct {
	loader  ports.GraphLoader
	ctrl    *runtime.Controller
	globals *variables.Store

	profiles  *profile.Manager
	profileID string
	restored  bool

	hooks   domain.LifecycleHooks
	collab  domain.Collaborators
	maxSkip int
	logger  *slog.Logger

	mu    sync.Mutex
	graph *domain.Graph
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = domain.ChainHooks(e.hooks, hooks)
	}
}

// WithCollaborators wires the presenter and the other outward interfaces.
func WithCollaborators(collab domain.Collaborators) Option {
	return func(e *Engine) {
		e.collab = collab
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithGlobals shares an existing global variable store.
func WithGlobals(globals *variables.Store) Option {
	return func(e *Engine) {
		e.globals = globals
	}
}

// WithProfile backs the global store with a persisted player profile.
// The profile is restored on the first Start and written by Save.
func WithProfile(m *profile.Manager, profileID string) Option {
	return func(e *Engine) {
		e.profiles = m
		e.profileID = profileID
	}
}

// WithMaxSkipHops bounds how many disabled nodes a single advance may skip.
func WithMaxSkipHops(n int) Option {
	return func(e *Engine) {
		e.maxSkip = n
	}
}

// New initializes a new Colloquy Engine reading graphs from loader.
func New(loader ports.GraphLoader, opts ...Option) (*Engine, error) {
	if loader == nil {
		return nil, errors.New("a graph loader is required")
	}
	eng := &Engine{loader: loader}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.globals == nil {
		eng.globals = variables.NewStore()
	}
	if eng.profiles != nil && eng.profileID == "" {
		return nil, errors.New("profile id is required when a profile manager is configured")
	}
	if eng.profileID != "" {
		eng.logger = eng.logger.With("profile", eng.profileID)
	}

	eng.ctrl = runtime.NewController(
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
		runtime.WithCollaborators(eng.collab),
		runtime.WithGlobals(eng.globals),
		runtime.WithMaxSkipHops(eng.maxSkip),
	)
	return eng, nil
}

// Start loads the graph with the given id and starts a run on it.
func (e *Engine) Start(ctx context.Context, graphID string) error {
	g, err := e.loader.Load(ctx, graphID)
	if err != nil {
		return fmt.Errorf("failed to load graph: %w", err)
	}
	return e.StartGraph(ctx, g)
}

// StartGraph starts a run on an already loaded graph. The graph's authored
// global defaults are declared first; values already in the global store
// (from earlier runs or the restored profile) are kept.
func (e *Engine) StartGraph(ctx context.Context, g *domain.Graph) error {
	if g == nil {
		return domain.ErrNilGraph
	}
	e.globals.Declare(g.Defaults)

	if err := e.restoreProfile(ctx); err != nil {
		return err
	}

	if err := e.ctrl.Start(ctx, g); err != nil {
		return err
	}
	e.mu.Lock()
	e.graph = g
	e.mu.Unlock()
	return nil
}

func (e *Engine) restoreProfile(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.profiles == nil || e.restored {
		return nil
	}
	_, found, err := e.profiles.Restore(ctx, e.profileID, e.globals)
	if err != nil {
		return err
	}
	e.restored = true
	if found {
		e.logger.Info("Profile Restored")
	} else {
		e.logger.Info("Profile Created")
	}
	return nil
}

// Save writes the global variables to the configured profile.
// It is a no-op without a profile.
func (e *Engine) Save(ctx context.Context) error {
	if e.profiles == nil {
		return nil
	}
	if err := e.profiles.Save(ctx, e.profileID, e.globals); err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}

// Reload fetches the current graph again from the loader and swaps it into
// the running controller.
func (e *Engine) Reload(ctx context.Context) error {
	e.mu.Lock()
	g := e.graph
	e.mu.Unlock()
	if g == nil {
		return domain.ErrNotRunning
	}

	fresh, err := e.loader.Load(ctx, g.ID)
	if err != nil {
		return fmt.Errorf("failed to reload graph: %w", err)
	}
	e.globals.Declare(fresh.Defaults)
	if err := e.ctrl.Reload(fresh); err != nil {
		return err
	}

	e.mu.Lock()
	e.graph = fresh
	e.mu.Unlock()
	e.logger.Info("Graph Reloaded", "graph_id", fresh.ID)
	return nil
}

// Watch returns a channel that receives the ids of graphs whose source changed.
// Returns ErrNotWatchable if the loader does not support watching.
func (e *Engine) Watch(ctx context.Context) (<-chan string, error) {
	if w, ok := e.loader.(ports.Watchable); ok {
		return w.Watch(ctx)
	}
	return nil, ErrNotWatchable
}

// HotReload reloads the running graph whenever its source changes, until ctx
// is done. Reload failures are logged and the previous graph stays active.
func (e *Engine) HotReload(ctx context.Context) error {
	changes, err := e.Watch(ctx)
	if err != nil {
		return err
	}
	go func() {
		for id := range changes {
			e.mu.Lock()
			current := e.graph
			e.mu.Unlock()
			if current == nil || current.ID != id {
				continue
			}
			if err := e.Reload(ctx); err != nil {
				e.logger.Warn("hot reload failed", "graph_id", id, "err", err)
			}
		}
	}()
	return nil
}

// End terminates the current run.
func (e *Engine) End() { e.ctrl.End() }

// ConfirmAdvance completes the text node waiting for confirmation.
func (e *Engine) ConfirmAdvance() bool { return e.ctrl.ConfirmAdvance() }

// SelectChoice picks one of the offered choice options.
func (e *Engine) SelectChoice(optionID int) error { return e.ctrl.SelectChoice(optionID) }

// RaiseInterrupt redirects an interruptible node that is waiting for input.
func (e *Engine) RaiseInterrupt(eventID string) bool { return e.ctrl.RaiseInterrupt(eventID) }

// FormatString substitutes {name} placeholders with variable values.
func (e *Engine) FormatString(text string) string { return e.ctrl.FormatString(text) }

// Status returns the run state.
func (e *Engine) Status() Status { return e.ctrl.Status() }

// Pending returns what the run is waiting for.
func (e *Engine) Pending() Suspension { return e.ctrl.Pending() }

// CurrentNodeID returns the id of the node being processed.
func (e *Engine) CurrentNodeID() string { return e.ctrl.CurrentNodeID() }

// RunID identifies the current (or last) run.
func (e *Engine) RunID() string { return e.ctrl.RunID() }

// Done is closed when the current run ends.
func (e *Engine) Done() <-chan struct{} { return e.ctrl.Done() }

// Err returns why the last run ended, or nil for a normal end.
func (e *Engine) Err() error { return e.ctrl.Err() }

// Idle blocks until node processing has settled: suspended, ended or idle.
func (e *Engine) Idle(ctx context.Context) error { return e.ctrl.Idle(ctx) }

// Variables exposes the local-then-global variable view of the run.
func (e *Engine) Variables() *variables.Scopes { return e.ctrl.Variables() }

// Globals returns the global variable store.
func (e *Engine) Globals() *variables.Store { return e.globals }

// Graph returns the graph of the current (or last) run.
func (e *Engine) Graph() *domain.Graph {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.graph
}

// Loader returns the underlying GraphLoader used by the engine.
func (e *Engine) Loader() ports.GraphLoader {
	return e.loader
}
