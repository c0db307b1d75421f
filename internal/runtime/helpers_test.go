package runtime_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/require"
)

const testTimeout = 2 * time.Second

// recorder collects lifecycle events in firing order.
type recorder struct {
	mu     sync.Mutex
	events []string
	ends   []*domain.DialogueEvent
}

func (r *recorder) add(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, fmt.Sprintf(format, args...))
}

func (r *recorder) hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStart: func(_ context.Context, e *domain.DialogueEvent) { r.add("start:%s", e.GraphID) },
		OnDialogueEnd: func(_ context.Context, e *domain.DialogueEvent) {
			r.add("end")
			r.mu.Lock()
			r.ends = append(r.ends, e)
			r.mu.Unlock()
		},
		OnNodeEnter: func(_ context.Context, e *domain.NodeEvent) {
			if e.Branch == domain.MainBranch {
				r.add("enter:%s", e.NodeID)
				return
			}
			r.add("enter[%d]:%s", e.Branch, e.NodeID)
		},
		OnNodeLeave: func(_ context.Context, e *domain.NodeEvent) {
			if e.Branch == domain.MainBranch {
				r.add("leave:%s", e.NodeID)
				return
			}
			r.add("leave[%d]:%s", e.Branch, e.NodeID)
		},
		OnChoiceSelected: func(_ context.Context, e *domain.ChoiceEvent) { r.add("choice:%s:%d", e.NodeID, e.OptionID) },
		OnInterrupt:      func(_ context.Context, e *domain.InterruptEvent) { r.add("interrupt:%s:%s", e.NodeID, e.EventID) },
	}
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	copy(out, r.events)
	return out
}

// visited returns the main-branch node ids in entry order.
func (r *recorder) visited() []string {
	var ids []string
	for _, e := range r.all() {
		var id string
		if _, err := fmt.Sscanf(e, "enter:%s", &id); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *recorder) index(event string) int {
	for i, e := range r.all() {
		if e == event {
			return i
		}
	}
	return -1
}

func (r *recorder) lastEnd() *domain.DialogueEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.ends) == 0 {
		return nil
	}
	return r.ends[len(r.ends)-1]
}

// presenter records what it was asked to show and completes immediately.
type presenter struct {
	mu      sync.Mutex
	lines   []domain.Line
	choices [][]domain.PresentedChoice
}

func (p *presenter) ShowText(_ context.Context, line domain.Line) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.lines = append(p.lines, line)
	return nil
}

func (p *presenter) ShowChoices(_ context.Context, _ string, choices []domain.PresentedChoice) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.choices = append(p.choices, choices)
	return nil
}

func (p *presenter) texts() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []string
	for _, l := range p.lines {
		out = append(out, l.Text)
	}
	return out
}

func text(id, next string) *domain.TextNode {
	return &domain.TextNode{Base: domain.Base{NodeID: id, Next: next}, Text: "text of " + id}
}

func wait(id, next string, d time.Duration) *domain.WaitNode {
	return &domain.WaitNode{Base: domain.Base{NodeID: id, Next: next}, Duration: d}
}

func end(id string) *domain.EndNode {
	return &domain.EndNode{Base: domain.Base{NodeID: id}}
}

func disabled(n domain.Node) domain.Node {
	switch v := n.(type) {
	case *domain.TextNode:
		v.Disabled = true
	case *domain.WaitNode:
		v.Disabled = true
	case *domain.EndNode:
		v.Disabled = true
	}
	return n
}

func newController(t *testing.T, rec *recorder, opts ...runtime.Option) (*runtime.Controller, *presenter) {
	t.Helper()
	p := &presenter{}
	all := []runtime.Option{
		runtime.WithCollaborators(domain.Collaborators{Presenter: p}),
		runtime.WithLifecycleHooks(rec.hooks()),
	}
	return runtime.NewController(append(all, opts...)...), p
}

func waitIdle(t *testing.T, c *runtime.Controller) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), testTimeout)
	defer cancel()
	require.NoError(t, c.Idle(ctx), "controller never became idle")
}

func waitDone(t *testing.T, c *runtime.Controller) {
	t.Helper()
	select {
	case <-c.Done():
	case <-time.After(testTimeout):
		t.Fatalf("run did not end, current node %q", c.CurrentNodeID())
	}
}
