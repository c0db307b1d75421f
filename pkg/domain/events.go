package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventDialogueStart  EventType = "dialogue_start"
	EventDialogueEnd    EventType = "dialogue_end"
	EventNodeEnter      EventType = "node_enter"
	EventNodeLeave      EventType = "node_leave"
	EventChoiceSelected EventType = "choice_selected"
	EventInterrupt      EventType = "interrupt"
)

// MainBranch is the Branch value of events emitted by the main execution context.
const MainBranch = -1

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	RunID     string    `json:"run_id"`
}

// DialogueEvent marks the start or end of a run.
type DialogueEvent struct {
	EventBase
	GraphID string `json:"graph_id"`
	// Reason is set on abnormal ends.
	Reason string `json:"reason,omitempty"`
	// Locals is the session-local store as it was when the run ended.
	Locals VariableSnapshot `json:"locals,omitempty"`
}

// NodeEvent represents entry or exit from a node.
type NodeEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	NodeKind Kind   `json:"node_kind"`
	// Branch is the parallel branch index, or MainBranch.
	Branch int `json:"branch"`
}

// ChoiceEvent is emitted when the host selects an option.
type ChoiceEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	OptionID int    `json:"option_id"`
	TargetID string `json:"target_id"`
}

// InterruptEvent is emitted when an interrupt redirects a suspended node.
type InterruptEvent struct {
	EventBase
	NodeID   string `json:"node_id"`
	EventID  string `json:"event_id"`
	TargetID string `json:"target_id"`
}

// LifecycleHooks defines callbacks for engine observability.
// Hooks are called synchronously by the scheduler and must not call back into it.
type LifecycleHooks struct {
	OnDialogueStart  func(context.Context, *DialogueEvent)
	OnDialogueEnd    func(context.Context, *DialogueEvent)
	OnNodeEnter      func(context.Context, *NodeEvent)
	OnNodeLeave      func(context.Context, *NodeEvent)
	OnChoiceSelected func(context.Context, *ChoiceEvent)
	OnInterrupt      func(context.Context, *InterruptEvent)
}

// ChainHooks combines several hook sets; each callback runs in argument order.
func ChainHooks(all ...LifecycleHooks) LifecycleHooks {
	var out LifecycleHooks
	for _, h := range all {
		out.OnDialogueStart = chain(out.OnDialogueStart, h.OnDialogueStart)
		out.OnDialogueEnd = chain(out.OnDialogueEnd, h.OnDialogueEnd)
		out.OnNodeEnter = chain(out.OnNodeEnter, h.OnNodeEnter)
		out.OnNodeLeave = chain(out.OnNodeLeave, h.OnNodeLeave)
		out.OnChoiceSelected = chain(out.OnChoiceSelected, h.OnChoiceSelected)
		out.OnInterrupt = chain(out.OnInterrupt, h.OnInterrupt)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
