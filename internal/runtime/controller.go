package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/variables"
	"github.com/google/uuid"
)

// Controller is the dialogue scheduler. It owns the single main execution
// context of a run: the current node, the return-address stack and the
// pending suspension.
//
// Each node is processed on its own goroutine; every state transition happens
// under mu, and a transition cancels the previous node's context before
// anything else, so at most one node is live at the top level.
type Controller struct {
	mu sync.Mutex

	logger  *slog.Logger
	hooks   domain.LifecycleHooks
	collab  domain.Collaborators
	maxSkip int

	globals *variables.Store
	locals  *variables.Store
	vars    *variables.Scopes

	graph   *domain.Graph
	status  Status
	runID   string
	hookCtx context.Context

	runCtx     context.Context
	runCancel  context.CancelFunc
	stopBind   func() bool
	procCancel context.CancelFunc

	current domain.Node
	stack   []string
	pending Suspension

	active int
	idle   chan struct{}
	done   chan struct{}
	endErr error
}

// NewController creates a controller in the Idle state.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		logger:  logging.NewNop(),
		maxSkip: DefaultMaxSkipHops,
		globals: variables.NewStore(),
		locals:  variables.NewStore(),
		idle:    closedChan(),
		done:    closedChan(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.vars = variables.NewScopes(c.locals, c.globals).WithLogger(c.logger)
	return c
}

func closedChan() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

// Start begins a run of g at its start node.
//
// The graph's index is rebuilt and the session-local store cleared. Start
// only fails for contract violations; integrity problems found while running
// end the run instead (see Err). Cancelling ctx ends the run.
func (c *Controller) Start(ctx context.Context, g *domain.Graph) error {
	if g == nil {
		return domain.ErrNilGraph
	}
	if g.StartNodeID == "" {
		return domain.ErrNoStartNode
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status == StatusRunning {
		return domain.ErrAlreadyRunning
	}

	g.BuildIndex()
	c.graph = g
	c.locals.Clear()
	c.stack = nil
	c.pending = Suspension{}
	c.current = nil
	c.endErr = nil
	c.done = make(chan struct{})

	runID := uuid.NewString()
	c.runID = runID
	c.hookCtx = context.WithoutCancel(ctx)
	c.runCtx, c.runCancel = context.WithCancel(ctx)
	c.stopBind = context.AfterFunc(ctx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.runID == runID {
			c.endLocked(fmt.Errorf("run context done: %w", context.Cause(ctx)))
		}
	})
	c.status = StatusRunning

	c.logger.Info("dialogue started", "graph_id", g.ID, "run_id", runID, "start_node", g.StartNodeID)
	if c.hooks.OnDialogueStart != nil {
		c.hooks.OnDialogueStart(c.hookCtx, &domain.DialogueEvent{
			EventBase: c.eventBase(domain.EventDialogueStart),
			GraphID:   g.ID,
		})
	}

	c.advanceLocked(g.StartNodeID)
	return nil
}

// End terminates the run. It is a no-op when no run is active.
func (c *Controller) End() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.endLocked(nil)
}

// ConfirmAdvance resumes an input suspension at the current node's next node.
// It reports whether a suspension was consumed.
func (c *Controller) ConfirmAdvance() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusRunning || c.pending.Kind != SuspendInput {
		return false
	}
	c.advanceLocked(c.current.NextNodeID())
	return true
}

// SelectChoice resolves a choice suspension with the option whose id is optionID.
// The option's variable changes are applied before control moves to its target.
func (c *Controller) SelectChoice(optionID int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusRunning {
		return domain.ErrNotRunning
	}
	if c.pending.Kind != SuspendChoice {
		return domain.ErrNotAwaitingChoice
	}
	choice, ok := c.pending.choice(optionID)
	if !ok {
		return fmt.Errorf("%w: option %d of node '%s'", domain.ErrInvalidChoice, optionID, c.pending.NodeID)
	}

	if cn, ok := c.current.(*domain.ChoiceNode); ok && optionID >= 0 && optionID < len(cn.Options) {
		c.vars.ApplyAll(cn.Options[optionID].Changes)
	}
	if c.hooks.OnChoiceSelected != nil {
		c.hooks.OnChoiceSelected(c.hookCtx, &domain.ChoiceEvent{
			EventBase: c.eventBase(domain.EventChoiceSelected),
			NodeID:    c.pending.NodeID,
			OptionID:  optionID,
			TargetID:  choice.TargetID,
		})
	}

	c.advanceLocked(choice.TargetID)
	return nil
}

// RaiseInterrupt redirects an interruptible node suspended on input to its
// interrupt target. An interruptible node without an event id accepts any event.
// It reports whether the interrupt was taken; confirmation and interrupt
// compete for the same suspension and only the first one wins.
func (c *Controller) RaiseInterrupt(eventID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.status != StatusRunning || c.pending.Kind != SuspendInput {
		return false
	}
	node, ok := c.current.(domain.Interruptible)
	if !ok {
		return false
	}
	accepted, nextID, ok := node.InterruptTarget()
	if !ok || (accepted != "" && accepted != eventID) {
		return false
	}

	c.logger.Debug("interrupt raised", "node_id", node.ID(), "event_id", eventID, "target", nextID)
	if c.hooks.OnInterrupt != nil {
		c.hooks.OnInterrupt(c.hookCtx, &domain.InterruptEvent{
			EventBase: c.eventBase(domain.EventInterrupt),
			NodeID:    node.ID(),
			EventID:   eventID,
			TargetID:  nextID,
		})
	}

	c.advanceLocked(nextID)
	return true
}

// FormatString substitutes {name} placeholders from the variable stores.
func (c *Controller) FormatString(text string) string {
	return c.vars.Format(text)
}

// Variables returns the scoped variable view of the controller.
func (c *Controller) Variables() *variables.Scopes {
	return c.vars
}

// Reload swaps the graph of the active run. The index is rebuilt before the
// swap; the current node keeps processing and the next advance resolves
// against the new graph.
func (c *Controller) Reload(g *domain.Graph) error {
	if g == nil {
		return domain.ErrNilGraph
	}
	g.BuildIndex()

	c.mu.Lock()
	defer c.mu.Unlock()
	c.graph = g
	c.logger.Info("graph reloaded", "graph_id", g.ID, "nodes", g.Len())
	return nil
}

// Status returns the run state.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Pending returns the current suspension, if any.
func (c *Controller) Pending() Suspension {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending
}

// CurrentNodeID returns the id of the node being processed or waited on.
func (c *Controller) CurrentNodeID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.ID()
}

// RunID returns the id of the current or last run.
func (c *Controller) RunID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.runID
}

// Done is closed when the current run ends. It is already closed when no run is active.
func (c *Controller) Done() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done
}

// Err returns why the last run ended early, or nil for a normal end.
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endErr
}

// Idle blocks until no node is being processed: the run is either suspended
// on an external call or has ended.
func (c *Controller) Idle(ctx context.Context) error {
	c.mu.Lock()
	idle := c.idle
	c.mu.Unlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// advanceLocked is the core step: cancel, leave, resolve, enter, process.
func (c *Controller) advanceLocked(target string) {
	c.stopProcessingLocked()
	c.leaveLocked()

	node, err := c.resolveLocked(target)
	if err != nil {
		c.endLocked(err)
		return
	}
	if node == nil {
		c.endLocked(nil)
		return
	}

	c.current = node
	c.vars.ApplyAll(node.Changes())
	c.emitNodeEnter(node, domain.MainBranch)
	c.spawnLocked(node)
}

// resolveLocked applies skip logic to target. Exhausted chains pop the
// return-address stack; a nil node with a nil error means the run is over.
func (c *Controller) resolveLocked(target string) (domain.Node, error) {
	id := target
	hops := 0
	for {
		if id == "" {
			n := len(c.stack)
			if n == 0 {
				return nil, nil
			}
			id = c.stack[n-1]
			c.stack = c.stack[:n-1]
			continue
		}

		node, ok := c.graph.GetNode(id)
		if !ok {
			c.logger.Warn("link to unknown node, ending dialogue", "node_id", id)
			return nil, &domain.MissingNodeError{NodeID: id}
		}
		if node.Enabled() {
			return node, nil
		}

		hops++
		if hops > c.maxSkip {
			return nil, &domain.SkipLimitError{StartID: target, Limit: c.maxSkip}
		}
		c.logger.Debug("skipping disabled node", "node_id", id, "hop", hops)
		id = node.NextNodeID()
	}
}

func (c *Controller) spawnLocked(node domain.Node) {
	ctx, cancel := context.WithCancel(c.runCtx)
	c.procCancel = cancel

	if c.active == 0 {
		c.idle = make(chan struct{})
	}
	c.active++

	go func() {
		defer c.release()
		c.process(ctx, node)
	}()
}

func (c *Controller) release() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active--
	if c.active == 0 {
		close(c.idle)
	}
}

func (c *Controller) stopProcessingLocked() {
	if c.procCancel != nil {
		c.procCancel()
		c.procCancel = nil
	}
	c.pending = Suspension{}
}

func (c *Controller) leaveLocked() {
	if c.current == nil {
		return
	}
	c.emitNodeLeave(c.current, domain.MainBranch)
	c.current = nil
}

func (c *Controller) endLocked(err error) {
	if c.status != StatusRunning {
		return
	}
	c.stopProcessingLocked()
	c.leaveLocked()
	c.runCancel()
	if c.stopBind != nil {
		c.stopBind()
		c.stopBind = nil
	}

	c.status = StatusEnded
	c.endErr = err
	c.stack = nil

	evt := &domain.DialogueEvent{
		EventBase: c.eventBase(domain.EventDialogueEnd),
		GraphID:   c.graph.ID,
		Locals:    c.locals.Export(),
	}
	if err != nil {
		evt.Reason = err.Error()
		c.logger.Error("dialogue ended early", "graph_id", c.graph.ID, "run_id", c.runID, "err", err)
	} else {
		c.logger.Info("dialogue ended", "graph_id", c.graph.ID, "run_id", c.runID)
	}
	if c.hooks.OnDialogueEnd != nil {
		c.hooks.OnDialogueEnd(c.hookCtx, evt)
	}

	c.locals.Clear()
	close(c.done)
}

// suspend records a suspension unless the node was cancelled meanwhile.
func (c *Controller) suspend(ctx context.Context, s Suspension) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() != nil {
		return
	}
	c.pending = s
}

func (c *Controller) eventBase(t domain.EventType) domain.EventBase {
	return domain.EventBase{Timestamp: time.Now(), Type: t, RunID: c.runID}
}

func (c *Controller) emitNodeEnter(node domain.Node, branch int) {
	if c.hooks.OnNodeEnter == nil {
		return
	}
	c.hooks.OnNodeEnter(c.hookCtx, &domain.NodeEvent{
		EventBase: c.eventBase(domain.EventNodeEnter),
		NodeID:    node.ID(),
		NodeKind:  node.Kind(),
		Branch:    branch,
	})
}

func (c *Controller) emitNodeLeave(node domain.Node, branch int) {
	if c.hooks.OnNodeLeave == nil {
		return
	}
	c.hooks.OnNodeLeave(c.hookCtx, &domain.NodeEvent{
		EventBase: c.eventBase(domain.EventNodeLeave),
		NodeID:    node.ID(),
		NodeKind:  node.Kind(),
		Branch:    branch,
	})
}
