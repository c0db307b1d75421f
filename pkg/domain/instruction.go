package domain

import (
	"context"
	"sync/atomic"
	"time"
)

// InstructionKind tells the scheduler what to do with a yielded instruction.
type InstructionKind int

const (
	// InstrAdvanceTo jumps to Target, terminating the current node's processing.
	InstrAdvanceTo InstructionKind = iota
	// InstrWaitForInput suspends until the host confirms (or an interrupt fires).
	InstrWaitForInput
	// InstrWaitForChoice suspends until the host selects one of the offered options.
	InstrWaitForChoice
	// InstrWaitFor pauses for Duration, then resumes the same node.
	InstrWaitFor
	// InstrEndDialogue terminates the run. Err is the reason, nil for a normal end.
	InstrEndDialogue
	// InstrAwait delegates to the host and resumes once Await returns.
	InstrAwait
	// InstrWaitForAll runs the branches of Join and resumes when all have completed.
	InstrWaitForAll
)

func (k InstructionKind) String() string {
	switch k {
	case InstrAdvanceTo:
		return "advance_to"
	case InstrWaitForInput:
		return "wait_for_input"
	case InstrWaitForChoice:
		return "wait_for_choice"
	case InstrWaitFor:
		return "wait_for"
	case InstrEndDialogue:
		return "end_dialogue"
	case InstrAwait:
		return "await"
	case InstrWaitForAll:
		return "wait_for_all"
	default:
		return "unknown"
	}
}

// Instruction is one step of a node's processing.
type Instruction struct {
	Kind     InstructionKind
	Target   string
	Duration time.Duration
	Err      error
	Await    func(ctx context.Context) error
	Join     *Join
}

// AdvanceTo jumps to the given node.
func AdvanceTo(id string) Instruction {
	return Instruction{Kind: InstrAdvanceTo, Target: id}
}

// WaitForInput suspends until confirmation.
func WaitForInput() Instruction {
	return Instruction{Kind: InstrWaitForInput}
}

// WaitForChoice suspends until an option is selected.
func WaitForChoice() Instruction {
	return Instruction{Kind: InstrWaitForChoice}
}

// WaitFor pauses processing for d.
func WaitFor(d time.Duration) Instruction {
	return Instruction{Kind: InstrWaitFor, Duration: d}
}

// EndDialogue ends the run. A non-nil err marks an abnormal end.
func EndDialogue(err error) Instruction {
	return Instruction{Kind: InstrEndDialogue, Err: err}
}

// Await hands fn to the scheduler, which blocks the node until fn returns.
// fn must honour ctx cancellation.
func Await(fn func(ctx context.Context) error) Instruction {
	return Instruction{Kind: InstrAwait, Await: fn}
}

// WaitForAll blocks until every branch of j has completed.
func WaitForAll(j *Join) Instruction {
	return Instruction{Kind: InstrWaitForAll, Join: j}
}

// Join is the fork/join barrier of a parallel node.
// Branch runners record on it whether any of them would have waited for input.
type Join struct {
	BranchStartIDs []string

	inputRequested atomic.Bool
	completed      atomic.Int32
}

// NewJoin creates a barrier for the given branch start ids.
func NewJoin(branchStartIDs []string) *Join {
	ids := make([]string, len(branchStartIDs))
	copy(ids, branchStartIDs)
	return &Join{BranchStartIDs: ids}
}

// RequestInput records a swallowed input wait.
func (j *Join) RequestInput() {
	j.inputRequested.Store(true)
}

// InputRequested reports whether any branch recorded an input wait.
func (j *Join) InputRequested() bool {
	return j.inputRequested.Load()
}

// MarkCompleted records that one branch ran its chain to the end.
func (j *Join) MarkCompleted() {
	j.completed.Add(1)
}

// Completed returns how many branches ran to completion.
func (j *Join) Completed() int {
	return int(j.completed.Load())
}
