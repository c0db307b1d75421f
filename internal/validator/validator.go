// Package validator performs authoring-time integrity checks on dialogue graphs.
// The runtime assumes a valid graph and only degrades gracefully when it is not.
package validator

import (
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Severity grades an issue.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Issue is one finding.
type Issue struct {
	Severity Severity `json:"severity"`
	NodeID   string   `json:"node_id,omitempty"`
	Message  string   `json:"message"`
}

func (i Issue) String() string {
	if i.NodeID == "" {
		return fmt.Sprintf("%s: %s", i.Severity, i.Message)
	}
	return fmt.Sprintf("%s: node '%s': %s", i.Severity, i.NodeID, i.Message)
}

// Report collects the issues found in a graph.
type Report struct {
	Issues []Issue `json:"issues"`
}

func (r *Report) add(sev Severity, nodeID, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Severity: sev, NodeID: nodeID, Message: fmt.Sprintf(format, args...)})
}

// Errors returns the error-level issues.
func (r Report) Errors() []Issue { return r.filter(SeverityError) }

// Warnings returns the warning-level issues.
func (r Report) Warnings() []Issue { return r.filter(SeverityWarning) }

func (r Report) filter(sev Severity) []Issue {
	var out []Issue
	for _, i := range r.Issues {
		if i.Severity == sev {
			out = append(out, i)
		}
	}
	return out
}

// Err folds the error-level issues into one error, or returns nil.
func (r Report) Err() error {
	errs := r.Errors()
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.String()
	}
	return fmt.Errorf("found %d errors:\n- %s", len(errs), strings.Join(lines, "\n- "))
}

// ValidateGraph returns an error describing every integrity error of g.
func ValidateGraph(g *domain.Graph) error {
	r := Validate(g)
	return r.Err()
}

// Validate checks g for duplicate ids, dangling links, malformed branch nodes,
// disabled-node cycles and unreachable nodes.
func Validate(g *domain.Graph) Report {
	var r Report
	if g == nil {
		r.add(SeverityError, "", "graph is nil")
		return r
	}

	seen := make(map[string]int)
	g.Walk(func(n, _ domain.Node) bool {
		seen[n.ID()]++
		return true
	})
	for id, count := range seen {
		if id == "" {
			r.add(SeverityError, "", "%d node(s) without an id", count)
		} else if count > 1 {
			r.add(SeverityError, id, "id used by %d nodes", count)
		}
	}

	g.BuildIndex()

	if g.StartNodeID == "" {
		r.add(SeverityError, "", "no start node configured")
	} else if !g.HasNode(g.StartNodeID) {
		r.add(SeverityError, "", "start node '%s' not found", g.StartNodeID)
	}

	link := func(from, field, to string) {
		if to != "" && !g.HasNode(to) {
			r.add(SeverityError, from, "%s links to unknown node '%s'", field, to)
		}
	}

	g.Walk(func(n, _ domain.Node) bool {
		id := n.ID()
		link(id, "next", n.NextNodeID())

		switch v := n.(type) {
		case *domain.TextNode:
			if v.Interruptible {
				if v.InterruptNextID == "" {
					r.add(SeverityWarning, id, "interruptible node has no interrupt target and ends the branch")
				}
				link(id, "interrupt target", v.InterruptNextID)
			}
		case *domain.ChoiceNode:
			if len(v.Options) == 0 {
				r.add(SeverityError, id, "choice has no options")
			}
			for i, opt := range v.Options {
				if opt.TargetID == "" {
					r.add(SeverityWarning, id, "option #%d has no target and ends the branch", i)
				}
				link(id, fmt.Sprintf("option #%d", i), opt.TargetID)
				checkOperators(&r, id, opt.Condition)
			}
		case *domain.ConditionNode:
			if v.TrueNextID == "" || v.FalseNextID == "" {
				r.add(SeverityError, id, "condition needs both a true and a false target")
			}
			checkOperators(&r, id, v.Condition)
			link(id, "true branch", v.TrueNextID)
			link(id, "false branch", v.FalseNextID)
		case *domain.SequenceNode:
			if v.StartNodeID == "" {
				r.add(SeverityWarning, id, "sequence has no start node")
			}
			link(id, "sequence start", v.StartNodeID)
		case *domain.ParallelNode:
			for i, b := range v.BranchStartIDs {
				if b == "" {
					r.add(SeverityError, id, "branch #%d has an empty start id", i)
				}
				link(id, fmt.Sprintf("branch #%d", i), b)
			}
		}
		return true
	})

	checkDisabledCycles(g, &r)
	checkReachability(g, &r)
	return r
}

func checkOperators(r *Report, id string, cond domain.Condition) {
	for _, c := range cond.Ints {
		if _, err := domain.ParseCompareOp(string(c.Op)); err != nil {
			r.add(SeverityError, id, "condition on '%s': %v", c.Variable, err)
		}
	}
}

func checkDisabledCycles(g *domain.Graph, r *Report) {
	reported := make(map[string]bool)
	g.Walk(func(n, _ domain.Node) bool {
		if n.Enabled() || reported[n.ID()] {
			return true
		}
		path := map[string]bool{}
		cur := n
		for cur != nil && !cur.Enabled() {
			if path[cur.ID()] {
				r.add(SeverityError, cur.ID(), "cycle of disabled nodes can never be resolved")
				for id := range path {
					reported[id] = true
				}
				return true
			}
			path[cur.ID()] = true
			next, ok := g.GetNode(cur.NextNodeID())
			if !ok {
				break
			}
			cur = next
		}
		return true
	})
}

// checkReachability walks every link from the start node (BFS).
func checkReachability(g *domain.Graph, r *Report) {
	start, ok := g.GetNode(g.StartNodeID)
	if !ok {
		return
	}
	visited := map[string]bool{}
	queue := []domain.Node{start}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		if visited[n.ID()] {
			continue
		}
		visited[n.ID()] = true

		for _, id := range outgoing(n) {
			if next, ok := g.GetNode(id); ok && !visited[id] {
				queue = append(queue, next)
			}
		}
	}

	g.Walk(func(n, _ domain.Node) bool {
		if !visited[n.ID()] {
			r.add(SeverityWarning, n.ID(), "unreachable from start node '%s'", g.StartNodeID)
		}
		return true
	})
}

func outgoing(n domain.Node) []string {
	ids := []string{n.NextNodeID()}
	switch v := n.(type) {
	case *domain.TextNode:
		if v.Interruptible {
			ids = append(ids, v.InterruptNextID)
		}
	case *domain.ChoiceNode:
		for _, opt := range v.Options {
			ids = append(ids, opt.TargetID)
		}
	case *domain.ConditionNode:
		ids = append(ids, v.TrueNextID, v.FalseNextID)
	case *domain.SequenceNode:
		ids = append(ids, v.StartNodeID)
	case *domain.ParallelNode:
		ids = append(ids, v.BranchStartIDs...)
	}
	return ids
}
