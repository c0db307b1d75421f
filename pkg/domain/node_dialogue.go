package domain

import (
	"context"
	"iter"
	"time"
)

// TextNode displays a line of dialogue and, unless auto-advancing, waits for confirmation.
type TextNode struct {
	Base
	Speaker         string
	Text            string
	LocalizationKey string

	// Interrupt configuration: while suspended on input, raising InterruptEventID
	// redirects control to InterruptNextID.
	Interruptible    bool
	InterruptEventID string
	InterruptNextID  string

	// AutoAdvance overrides the graph default when non-nil.
	AutoAdvance *bool
	// Delay is waited after the text is displayed.
	Delay time.Duration
}

func (n *TextNode) Kind() Kind { return KindText }

// InterruptTarget implements Interruptible.
func (n *TextNode) InterruptTarget() (string, string, bool) {
	return n.InterruptEventID, n.InterruptNextID, n.Interruptible
}

func (n *TextNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	presenter := pc.Collaborators().Presenter
	if presenter == nil {
		return missingCollaborator(pc, n, "presenter")
	}
	return func(yield func(Instruction) bool) {
		vars := pc.Variables()
		line := Line{
			NodeID:  n.NodeID,
			Speaker: vars.Format(n.Speaker),
			Text:    vars.Format(resolveText(pc, n.LocalizationKey, n.Text)),
		}
		if !yield(Await(func(ctx context.Context) error {
			return presenter.ShowText(ctx, line)
		})) {
			return
		}
		if n.Delay > 0 {
			if !yield(WaitFor(n.Delay)) {
				return
			}
		}

		auto := pc.AutoAdvance()
		if n.AutoAdvance != nil {
			auto.Enabled = *n.AutoAdvance
		}
		if auto.Enabled {
			if auto.Delay > 0 {
				yield(WaitFor(auto.Delay))
			}
			return
		}
		yield(WaitForInput())
	}
}

// ChoiceOption is one option of a choice node.
type ChoiceOption struct {
	Text            string
	LocalizationKey string
	TargetID        string
	Condition       Condition
	Changes         []VariableChange
}

// ChoiceNode offers options to the player. It has no fixed next node: the
// selected option's target decides where control goes.
type ChoiceNode struct {
	Base
	Options []ChoiceOption
}

func (n *ChoiceNode) Kind() Kind { return KindChoice }

// NextNodeID is always empty for a choice node.
func (n *ChoiceNode) NextNodeID() string { return "" }

// Available returns the options whose condition holds, in declaration order.
func (n *ChoiceNode) Available(pc ProcessContext) []PresentedChoice {
	vars := pc.Variables()
	choices := make([]PresentedChoice, 0, len(n.Options))
	for i, opt := range n.Options {
		if !vars.Evaluate(opt.Condition) {
			continue
		}
		choices = append(choices, PresentedChoice{
			ID:       i,
			Text:     vars.Format(resolveText(pc, opt.LocalizationKey, opt.Text)),
			TargetID: opt.TargetID,
		})
	}
	return choices
}

func (n *ChoiceNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		choices := n.Available(pc)
		if len(choices) == 0 {
			pc.Logger().Warn("choice node has no selectable options", "node_id", n.NodeID)
			yield(EndDialogue(&MalformedNodeError{NodeID: n.NodeID, Reason: "no selectable options"}))
			return
		}
		pc.OfferChoices(choices)

		if presenter := pc.Collaborators().Presenter; presenter != nil {
			if !yield(Await(func(ctx context.Context) error {
				return presenter.ShowChoices(ctx, n.NodeID, choices)
			})) {
				return
			}
		} else {
			pc.Logger().Debug("no presenter configured, choices only published to host", "node_id", n.NodeID)
		}
		yield(WaitForChoice())
	}
}
