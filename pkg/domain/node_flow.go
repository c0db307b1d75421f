package domain

import (
	"iter"
	"time"
)

// ConditionNode branches on a condition evaluated when the node is processed.
type ConditionNode struct {
	Base
	Condition   Condition
	TrueNextID  string
	FalseNextID string
}

func (n *ConditionNode) Kind() Kind { return KindCondition }

// NextNodeID is empty: the target is only known at evaluation time.
func (n *ConditionNode) NextNodeID() string { return "" }

func (n *ConditionNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		result := pc.Variables().Evaluate(n.Condition)
		target := n.FalseNextID
		if result {
			target = n.TrueNextID
		}
		if target == "" {
			pc.Logger().Error("condition resolved to an empty target",
				"node_id", n.NodeID,
				"result", result)
			yield(EndDialogue(&MalformedNodeError{NodeID: n.NodeID, Reason: "empty branch target"}))
			return
		}
		yield(AdvanceTo(target))
	}
}

// SequenceNode is a named sub-graph. Entering it is a call; when its internal
// chain runs out of next ids, control returns to the sequence's own next node.
type SequenceNode struct {
	Base
	StartNodeID string
	Nodes       []Node
}

func (n *SequenceNode) Kind() Kind       { return KindSequence }
func (n *SequenceNode) Children() []Node { return n.Nodes }

func (n *SequenceNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		if n.StartNodeID == "" {
			pc.Logger().Warn("sequence has no start node, continuing past it", "node_id", n.NodeID)
		}
		pc.PushReturn(n.Next)
		yield(AdvanceTo(n.StartNodeID))
	}
}

// ParallelNode runs one branch per start id concurrently and joins them.
type ParallelNode struct {
	Base
	BranchStartIDs []string
	Nodes          []Node
}

func (n *ParallelNode) Kind() Kind       { return KindParallel }
func (n *ParallelNode) Children() []Node { return n.Nodes }

func (n *ParallelNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	return func(yield func(Instruction) bool) {
		for i, id := range n.BranchStartIDs {
			if id == "" {
				pc.Logger().Error("parallel branch has an empty start id", "node_id", n.NodeID, "branch", i)
				yield(EndDialogue(&MalformedNodeError{NodeID: n.NodeID, Reason: "empty branch start id"}))
				return
			}
		}
		if len(n.BranchStartIDs) == 0 {
			return
		}

		join := NewJoin(n.BranchStartIDs)
		if !yield(WaitForAll(join)) {
			return
		}
		if join.InputRequested() {
			yield(WaitForInput())
		}
	}
}

// WaitNode pauses the dialogue for a fixed duration.
type WaitNode struct {
	Base
	Duration time.Duration
}

func (n *WaitNode) Kind() Kind { return KindWait }

func (n *WaitNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	if n.Duration <= 0 {
		return noop
	}
	return single(WaitFor(n.Duration))
}

// EndNode terminates the dialogue.
type EndNode struct {
	Base
}

func (n *EndNode) Kind() Kind { return KindEnd }

// NextNodeID is always empty for an end node.
func (n *EndNode) NextNodeID() string { return "" }

func (n *EndNode) Process(pc ProcessContext) iter.Seq[Instruction] {
	return single(EndDialogue(nil))
}
