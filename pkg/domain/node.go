package domain

import (
	"iter"
	"log/slog"
)

// Kind identifies a node variant.
type Kind string

const (
	KindText            Kind = "text"
	KindChoice          Kind = "choice"
	KindCondition       Kind = "condition"
	KindSequence        Kind = "sequence"
	KindParallel        Kind = "parallel"
	KindWait            Kind = "wait"
	KindTransition      Kind = "transition"
	KindCharacterAction Kind = "character"
	KindBackground      Kind = "background"
	KindCamera          Kind = "camera"
	KindScreenEffect    Kind = "screen_effect"
	KindEvent           Kind = "event"
	KindEnd             Kind = "end"
)

// Node is one unit of dialogue behavior.
//
// Process returns the node's instruction stream. The scheduler ranges over it
// and stops early (yield returns false) when the node is cancelled or jumps away.
// When the stream ends without a flow-control instruction, the scheduler
// continues at NextNodeID.
type Node interface {
	ID() string
	Kind() Kind
	Enabled() bool
	NextNodeID() string
	Changes() []VariableChange
	Process(pc ProcessContext) iter.Seq[Instruction]
}

// Container is implemented by nodes that own a nested child list.
type Container interface {
	Node
	Children() []Node
}

// Interruptible is implemented by nodes that can be redirected by an external
// interrupt while suspended on input.
type Interruptible interface {
	Node
	// InterruptTarget returns the accepted event id (empty accepts any event),
	// the redirect target, and whether the node is currently interruptible.
	InterruptTarget() (eventID, nextID string, ok bool)
}

// ProcessContext is what a node sees while it is being processed.
// It is provided by the scheduler; branch runners provide a restricted view
// in which PushReturn and OfferChoices are ignored.
type ProcessContext interface {
	Variables() Variables
	Collaborators() Collaborators
	Logger() *slog.Logger
	AutoAdvance() AutoAdvance
	// PushReturn pushes a continuation onto the return-address stack.
	PushReturn(nodeID string)
	// OfferChoices publishes the selectable options of a choice node.
	OfferChoices(choices []PresentedChoice)
}

// Base holds the fields shared by every node variant.
type Base struct {
	NodeID          string
	Disabled        bool
	Next            string
	VariableChanges []VariableChange
}

func (b *Base) ID() string                { return b.NodeID }
func (b *Base) Enabled() bool             { return !b.Disabled }
func (b *Base) NextNodeID() string        { return b.Next }
func (b *Base) Changes() []VariableChange { return b.VariableChanges }

// resolveText prefers the localized text for key and falls back to the inline text.
func resolveText(pc ProcessContext, key, inline string) string {
	if key == "" {
		return inline
	}
	if loc := pc.Collaborators().Localizer; loc != nil {
		if text, ok := loc.GetText(key); ok {
			return text
		}
	}
	if inline == "" {
		return key
	}
	return inline
}

func noop(func(Instruction) bool) {}

func missingCollaborator(pc ProcessContext, n Node, collaborator string) iter.Seq[Instruction] {
	pc.Logger().Warn("collaborator not configured, node completes as no-op",
		"node_id", n.ID(),
		"node_kind", string(n.Kind()),
		"collaborator", collaborator)
	return noop
}

func single(ins Instruction) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		yield(ins)
	}
}
