package domain_test

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func nestedGraph() *domain.Graph {
	inner := &domain.SequenceNode{
		Base:        domain.Base{NodeID: "inner", Next: "p"},
		StartNodeID: "deep",
		Nodes:       []domain.Node{&domain.WaitNode{Base: domain.Base{NodeID: "deep"}}},
	}
	par := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "p"},
		BranchStartIDs: []string{"b1"},
		Nodes:          []domain.Node{&domain.EndNode{Base: domain.Base{NodeID: "b1"}}},
	}
	outer := &domain.SequenceNode{
		Base:        domain.Base{NodeID: "outer"},
		StartNodeID: "inner",
		Nodes:       []domain.Node{inner, par},
	}
	return &domain.Graph{ID: "g", StartNodeID: "outer", Nodes: []domain.Node{outer, nil}}
}

func TestGraph_LookupDescendsIntoContainers(t *testing.T) {
	g := nestedGraph()

	for _, id := range []string{"outer", "inner", "deep", "p", "b1"} {
		n, ok := g.GetNode(id)
		require.True(t, ok, id)
		assert.Equal(t, id, n.ID())
	}
	assert.False(t, g.HasNode("ghost"))
	assert.Equal(t, 5, g.Len())
}

func TestGraph_IndexIsNotRebuiltImplicitly(t *testing.T) {
	g := domain.NewGraph("g", "a", &domain.EndNode{Base: domain.Base{NodeID: "a"}})
	require.True(t, g.HasNode("a"))

	g.Nodes = append(g.Nodes, &domain.EndNode{Base: domain.Base{NodeID: "b"}})
	assert.False(t, g.HasNode("b"), "stale index until BuildIndex is called")

	g.BuildIndex()
	assert.True(t, g.HasNode("b"))
}

func TestGraph_Walk(t *testing.T) {
	g := nestedGraph()

	var order []string
	parents := map[string]string{}
	g.Walk(func(n, parent domain.Node) bool {
		order = append(order, n.ID())
		if parent != nil {
			parents[n.ID()] = parent.ID()
		}
		return true
	})

	assert.Equal(t, []string{"outer", "inner", "deep", "p", "b1"}, order)
	assert.Equal(t, "inner", parents["deep"])
	assert.Equal(t, "outer", parents["p"])
	assert.NotContains(t, parents, "outer")

	var first []string
	g.Walk(func(n, _ domain.Node) bool {
		first = append(first, n.ID())
		return len(first) < 2
	})
	assert.Equal(t, []string{"outer", "inner"}, first)
}

func TestNextNodeID_BranchingVariants(t *testing.T) {
	base := domain.Base{NodeID: "x", Next: "ignored"}
	assert.Empty(t, (&domain.ChoiceNode{Base: base}).NextNodeID())
	assert.Empty(t, (&domain.ConditionNode{Base: base}).NextNodeID())
	assert.Empty(t, (&domain.EndNode{Base: base}).NextNodeID())
	assert.Equal(t, "ignored", (&domain.WaitNode{Base: base}).NextNodeID())
}
