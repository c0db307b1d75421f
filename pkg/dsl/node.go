package dsl

import (
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
)

// common carries the fields every node kind shares. B is the concrete
// builder, returned so calls can be chained.
type common[B any] struct {
	base *domain.Base
	self B
}

// Next sets the node to continue with once this one completes.
func (c common[B]) Next(id string) B {
	c.base.Next = id
	return c.self
}

// Disabled marks the node as skipped at runtime.
func (c common[B]) Disabled() B {
	c.base.Disabled = true
	return c.self
}

// Set adds variable changes applied when the node is entered.
func (c common[B]) Set(changes ...domain.VariableChange) B {
	c.base.VariableChanges = append(c.base.VariableChanges, changes...)
	return c.self
}

// NodeBuilder configures nodes with no kind-specific options (wait, end, stage nodes).
type NodeBuilder struct {
	common[*NodeBuilder]
}

func newNodeBuilder(base *domain.Base) *NodeBuilder {
	nb := &NodeBuilder{}
	nb.common = common[*NodeBuilder]{base: base, self: nb}
	return nb
}

// TextBuilder configures a text node.
type TextBuilder struct {
	common[*TextBuilder]
	node *domain.TextNode
}

// Key sets the localization key; the inline text becomes the fallback.
func (t *TextBuilder) Key(key string) *TextBuilder {
	t.node.LocalizationKey = key
	return t
}

// Interrupt redirects the node to target when event is raised while it waits
// for input. An empty event accepts any interrupt.
func (t *TextBuilder) Interrupt(event, target string) *TextBuilder {
	t.node.Interruptible = true
	t.node.InterruptEventID = event
	t.node.InterruptNextID = target
	return t
}

// AutoAdvance overrides the graph's auto-advance setting for this node.
func (t *TextBuilder) AutoAdvance(enabled bool) *TextBuilder {
	t.node.AutoAdvance = &enabled
	return t
}

// Delay waits d after the text is shown.
func (t *TextBuilder) Delay(d time.Duration) *TextBuilder {
	t.node.Delay = d
	return t
}

// ChoiceBuilder configures a choice node.
type ChoiceBuilder struct {
	common[*ChoiceBuilder]
	node *domain.ChoiceNode
	b    *Builder
}

// Option appends an option leading to target. The changes are applied when
// the option is selected.
func (c *ChoiceBuilder) Option(text, target string, changes ...domain.VariableChange) *ChoiceBuilder {
	c.node.Options = append(c.node.Options, domain.ChoiceOption{Text: text, TargetID: target, Changes: changes})
	return c
}

// Key sets the localization key of the last option.
func (c *ChoiceBuilder) Key(key string) *ChoiceBuilder {
	if n := len(c.node.Options); n > 0 {
		c.node.Options[n-1].LocalizationKey = key
	}
	return c
}

// When restricts the last option to the given compact conditions
// ("gold >= 2", "met_keeper", "!door_locked").
func (c *ChoiceBuilder) When(exprs ...string) *ChoiceBuilder {
	n := len(c.node.Options)
	if n == 0 {
		c.b.fail(c.node.ID(), "When called before Option")
		return c
	}
	cond, ok := c.b.condition(c.node.ID(), exprs)
	if ok {
		c.node.Options[n-1].Condition = cond
	}
	return c
}

// ConditionBuilder configures a condition node.
type ConditionBuilder struct {
	common[*ConditionBuilder]
	node *domain.ConditionNode
}

// Then sets the target taken when the condition holds.
func (c *ConditionBuilder) Then(id string) *ConditionBuilder {
	c.node.TrueNextID = id
	return c
}

// Else sets the target taken when the condition does not hold.
func (c *ConditionBuilder) Else(id string) *ConditionBuilder {
	c.node.FalseNextID = id
	return c
}

// SequenceBuilder configures a sequence node. Its embedded Scope adds children.
type SequenceBuilder struct {
	common[*SequenceBuilder]
	*Scope
	node *domain.SequenceNode
}

// Start sets the first child to run. It defaults to the first child added.
func (s *SequenceBuilder) Start(id string) *SequenceBuilder {
	s.node.StartNodeID = id
	return s
}

// ParallelBuilder configures a parallel node. Its embedded Scope adds children.
type ParallelBuilder struct {
	common[*ParallelBuilder]
	*Scope
	node *domain.ParallelNode
}

// Branches sets the start node of every branch.
func (p *ParallelBuilder) Branches(ids ...string) *ParallelBuilder {
	p.node.BranchStartIDs = append(p.node.BranchStartIDs, ids...)
	return p
}
