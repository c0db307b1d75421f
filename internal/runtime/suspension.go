package runtime

import "github.com/aretw0/colloquy/pkg/domain"

// Status is the controller's run state.
type Status int

const (
	StatusIdle Status = iota
	StatusRunning
	StatusEnded
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRunning:
		return "running"
	case StatusEnded:
		return "ended"
	default:
		return "unknown"
	}
}

// SuspendKind tells what external call a suspended run is waiting for.
type SuspendKind int

const (
	SuspendNone SuspendKind = iota
	// SuspendInput waits for ConfirmAdvance (or RaiseInterrupt on interruptible nodes).
	SuspendInput
	// SuspendChoice waits for SelectChoice.
	SuspendChoice
)

func (k SuspendKind) String() string {
	switch k {
	case SuspendInput:
		return "input"
	case SuspendChoice:
		return "choice"
	default:
		return "none"
	}
}

// Suspension describes the external call the current node is waiting for.
type Suspension struct {
	Kind    SuspendKind              `json:"kind"`
	NodeID  string                   `json:"node_id,omitempty"`
	Choices []domain.PresentedChoice `json:"choices,omitempty"`

	Interruptible    bool   `json:"interruptible,omitempty"`
	InterruptEventID string `json:"interrupt_event_id,omitempty"`
}

// Waiting reports whether the run is suspended on an external call.
func (s Suspension) Waiting() bool {
	return s.Kind != SuspendNone
}

// choice returns the offered choice with the given id.
func (s Suspension) choice(id int) (domain.PresentedChoice, bool) {
	for _, ch := range s.Choices {
		if ch.ID == id {
			return ch, true
		}
	}
	return domain.PresentedChoice{}, false
}
