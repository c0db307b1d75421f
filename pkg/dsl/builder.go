package dsl

import (
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/aretw0/colloquy/internal/validator"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Scope adds nodes to a node list: the graph's top level or a container's children.
type Scope struct {
	nodes *[]domain.Node
	b     *Builder
}

func (s *Scope) add(n domain.Node) {
	*s.nodes = append(*s.nodes, n)
}

// Text adds a text node.
func (s *Scope) Text(id, speaker, text string) *TextBuilder {
	n := &domain.TextNode{Base: domain.Base{NodeID: id}, Speaker: speaker, Text: text}
	s.add(n)
	tb := &TextBuilder{node: n}
	tb.common = common[*TextBuilder]{base: &n.Base, self: tb}
	return tb
}

// Choice adds a choice node.
func (s *Scope) Choice(id string) *ChoiceBuilder {
	n := &domain.ChoiceNode{Base: domain.Base{NodeID: id}}
	s.add(n)
	cb := &ChoiceBuilder{node: n, b: s.b}
	cb.common = common[*ChoiceBuilder]{base: &n.Base, self: cb}
	return cb
}

// If adds a condition node testing the given compact expressions.
func (s *Scope) If(id string, exprs ...string) *ConditionBuilder {
	n := &domain.ConditionNode{Base: domain.Base{NodeID: id}}
	if cond, ok := s.b.condition(id, exprs); ok {
		n.Condition = cond
	}
	s.add(n)
	cb := &ConditionBuilder{node: n}
	cb.common = common[*ConditionBuilder]{base: &n.Base, self: cb}
	return cb
}

// Sequence adds a sequence node; add its children through the returned builder.
func (s *Scope) Sequence(id string) *SequenceBuilder {
	n := &domain.SequenceNode{Base: domain.Base{NodeID: id}}
	s.add(n)
	sb := &SequenceBuilder{node: n, Scope: &Scope{nodes: &n.Nodes, b: s.b}}
	sb.common = common[*SequenceBuilder]{base: &n.Base, self: sb}
	s.b.sequences = append(s.b.sequences, n)
	return sb
}

// Parallel adds a parallel node; add its branch nodes through the returned builder.
func (s *Scope) Parallel(id string) *ParallelBuilder {
	n := &domain.ParallelNode{Base: domain.Base{NodeID: id}}
	s.add(n)
	pb := &ParallelBuilder{node: n, Scope: &Scope{nodes: &n.Nodes, b: s.b}}
	pb.common = common[*ParallelBuilder]{base: &n.Base, self: pb}
	return pb
}

// Wait adds a node that pauses for d.
func (s *Scope) Wait(id string, d time.Duration) *NodeBuilder {
	n := &domain.WaitNode{Base: domain.Base{NodeID: id}, Duration: d}
	s.add(n)
	return newNodeBuilder(&n.Base)
}

// Event adds a node raising a fire-and-forget event.
func (s *Scope) Event(id, name string, params map[string]any) *NodeBuilder {
	n := &domain.EventNode{Base: domain.Base{NodeID: id}, Event: domain.EventRequest{Name: name, Params: params}}
	s.add(n)
	return newNodeBuilder(&n.Base)
}

// End adds a node that ends the dialogue.
func (s *Scope) End(id string) *NodeBuilder {
	n := &domain.EndNode{Base: domain.Base{NodeID: id}}
	s.add(n)
	return newNodeBuilder(&n.Base)
}

// Node adds any prebuilt node, e.g. one of the stage nodes.
func (s *Scope) Node(n domain.Node) {
	s.add(n)
}

// Builder manages the graph construction.
type Builder struct {
	*Scope
	graph     *domain.Graph
	sequences []*domain.SequenceNode
	errs      []error
}

// New creates a builder for the graph with the given id.
func New(id string) *Builder {
	b := &Builder{graph: &domain.Graph{ID: id}}
	b.Scope = &Scope{nodes: &b.graph.Nodes, b: b}
	return b
}

// Start sets the start node. It defaults to the first top-level node.
func (b *Builder) Start(id string) *Builder {
	b.graph.StartNodeID = id
	return b
}

// AutoAdvance sets the graph-wide auto-advance behaviour of text nodes.
func (b *Builder) AutoAdvance(enabled bool, delay time.Duration) *Builder {
	b.graph.AutoAdvance = domain.AutoAdvance{Enabled: enabled, Delay: delay}
	return b
}

// GlobalInt declares an integer global with its default value.
func (b *Builder) GlobalInt(key string, v int) *Builder {
	b.graph.Defaults.Ints = append(b.graph.Defaults.Ints, domain.IntEntry{Key: key, Value: v})
	return b
}

// GlobalBool declares a boolean global with its default value.
func (b *Builder) GlobalBool(key string, v bool) *Builder {
	b.graph.Defaults.Bools = append(b.graph.Defaults.Bools, domain.BoolEntry{Key: key, Value: v})
	return b
}

// GlobalString declares a string global with its default value.
func (b *Builder) GlobalString(key, v string) *Builder {
	b.graph.Defaults.Strings = append(b.graph.Defaults.Strings, domain.StringEntry{Key: key, Value: v})
	return b
}

func (b *Builder) fail(nodeID, format string, args ...any) {
	b.errs = append(b.errs, fmt.Errorf("node '%s': %s", nodeID, fmt.Sprintf(format, args...)))
}

func (b *Builder) condition(nodeID string, exprs []string) (domain.Condition, bool) {
	cond, err := compiler.ParseExpressions(exprs)
	if err != nil {
		b.fail(nodeID, "%v", err)
		return cond, false
	}
	return cond, true
}

// Build finalizes and validates the graph. Integrity errors (dangling links,
// duplicate ids, ...) are reported here rather than at runtime.
func (b *Builder) Build() (*domain.Graph, error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}

	g := b.graph
	if g.StartNodeID == "" && len(g.Nodes) > 0 {
		g.StartNodeID = g.Nodes[0].ID()
	}
	for _, seq := range b.sequences {
		if seq.StartNodeID == "" && len(seq.Nodes) > 0 {
			seq.StartNodeID = seq.Nodes[0].ID()
		}
	}
	g.BuildIndex()

	if err := validator.ValidateGraph(g); err != nil {
		return nil, fmt.Errorf("graph '%s': %w", g.ID, err)
	}
	return g, nil
}

// Loader builds the graph and wraps it in an in-memory loader.
func (b *Builder) Loader() (*memory.Loader, error) {
	g, err := b.Build()
	if err != nil {
		return nil, err
	}
	return memory.NewLoader(g), nil
}
