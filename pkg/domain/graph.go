package domain

import "time"

// AutoAdvance configures whether text nodes continue on their own after being displayed.
type AutoAdvance struct {
	Enabled bool          `json:"enabled" yaml:"enabled"`
	Delay   time.Duration `json:"delay,omitempty" yaml:"delay,omitempty"`
}

// Graph is a directed graph of dialogue nodes with a designated start node.
// Nodes may own nested child lists (Sequence and Parallel containers); links
// between nodes are always by id.
type Graph struct {
	ID          string
	StartNodeID string
	Nodes       []Node
	AutoAdvance AutoAdvance
	// Defaults are the authored initial values of global variables.
	Defaults VariableSnapshot

	index map[string]Node
}

// NewGraph creates a graph and builds its lookup index.
func NewGraph(id, startNodeID string, nodes ...Node) *Graph {
	g := &Graph{
		ID:          id,
		StartNodeID: startNodeID,
		Nodes:       nodes,
	}
	g.BuildIndex()
	return g
}

// BuildIndex rebuilds the id lookup index, descending into container children.
// It must be called after any change to the node set.
func (g *Graph) BuildIndex() {
	index := make(map[string]Node)
	var add func(nodes []Node)
	add = func(nodes []Node) {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			index[n.ID()] = n
			if c, ok := n.(Container); ok {
				add(c.Children())
			}
		}
	}
	add(g.Nodes)
	g.index = index
}

// GetNode looks up a node anywhere in the nested structure.
// The index is built on first use if absent, but never rebuilt implicitly.
func (g *Graph) GetNode(id string) (Node, bool) {
	if g.index == nil {
		g.BuildIndex()
	}
	n, ok := g.index[id]
	return n, ok
}

// HasNode reports whether id resolves to a node.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.GetNode(id)
	return ok
}

// Len returns the number of indexed nodes.
func (g *Graph) Len() int {
	if g.index == nil {
		g.BuildIndex()
	}
	return len(g.index)
}

// Walk visits every node depth-first in declaration order.
// The parent argument is nil for top-level nodes. Returning false stops the walk.
func (g *Graph) Walk(fn func(node Node, parent Node) bool) {
	var walk func(nodes []Node, parent Node) bool
	walk = func(nodes []Node, parent Node) bool {
		for _, n := range nodes {
			if n == nil {
				continue
			}
			if !fn(n, parent) {
				return false
			}
			if c, ok := n.(Container); ok {
				if !walk(c.Children(), n) {
					return false
				}
			}
		}
		return true
	}
	walk(g.Nodes, nil)
}
