package http

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/runner"
)

// Pending is the JSON form of what a session waits for.
type Pending struct {
	Kind             string                   `json:"kind"`
	Choices          []domain.PresentedChoice `json:"choices,omitempty"`
	Interruptible    bool                     `json:"interruptible,omitempty"`
	InterruptEventID string                   `json:"interrupt_event_id,omitempty"`
}

// State is returned by every session endpoint.
type State struct {
	SessionID string           `json:"session_id"`
	GraphID   string           `json:"graph_id"`
	RunID     string           `json:"run_id"`
	Status    string           `json:"status"`
	NodeID    string           `json:"node_id,omitempty"`
	Pending   *Pending         `json:"pending,omitempty"`
	Output    []runner.Message `json:"output,omitempty"`
	Error     string           `json:"error,omitempty"`
}

// session captures engine output as runner messages.
type session struct {
	id      string
	graphID string
	engine  *colloquy.Engine
	streams *StreamManager

	mu     sync.Mutex
	outbox []runner.Message
}

func (s *session) collaborators() domain.Collaborators {
	return domain.Collaborators{Presenter: s, Events: s}
}

func (s *session) push(m runner.Message) {
	s.mu.Lock()
	s.outbox = append(s.outbox, m)
	s.mu.Unlock()
	if data, err := json.Marshal(m); err == nil {
		s.streams.Broadcast(s.id, string(data))
	}
}

func (s *session) ShowText(ctx context.Context, line domain.Line) error {
	s.push(runner.Message{Type: "text", NodeID: line.NodeID, Speaker: line.Speaker, Text: line.Text})
	return nil
}

func (s *session) ShowChoices(ctx context.Context, nodeID string, choices []domain.PresentedChoice) error {
	s.push(runner.Message{Type: "choices", NodeID: nodeID, Choices: choices})
	return nil
}

func (s *session) Raise(ctx context.Context, req domain.EventRequest) {
	s.push(runner.Message{Type: "event", Payload: req})
}

// state snapshots the session and drains its outbox.
func (s *session) state() State {
	s.mu.Lock()
	out := s.outbox
	s.outbox = nil
	s.mu.Unlock()

	st := State{
		SessionID: s.id,
		GraphID:   s.graphID,
		RunID:     s.engine.RunID(),
		Status:    s.engine.Status().String(),
		NodeID:    s.engine.CurrentNodeID(),
		Output:    out,
	}
	if err := s.engine.Err(); err != nil {
		st.Error = err.Error()
	}
	if p := s.engine.Pending(); p.Waiting() {
		st.Pending = &Pending{
			Kind:             p.Kind.String(),
			Choices:          p.Choices,
			Interruptible:    p.Interruptible,
			InterruptEventID: p.InterruptEventID,
		}
	}
	return st
}
