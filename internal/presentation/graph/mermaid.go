package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
)

// GraphOverlay contains dynamic state data to visualize on the graph.
type GraphOverlay struct {
	VisitedNodes []string
	CurrentNode  string
}

// GenerateMermaid produces a Mermaid flowchart for a dialogue graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Choice: {Rhombus}
// - Condition: {{Hexagon}}
// - End: (((Double circle)))
// - Default: [Rectangle]
// Sequence and parallel containers become subgraphs. Disabled nodes are dashed.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var disabled []string
	var write func(nodes []domain.Node, indent string)
	write = func(nodes []domain.Node, indent string) {
		for _, node := range nodes {
			if node == nil {
				continue
			}
			safeID := sanitizeMermaidID(node.ID())
			if !node.Enabled() {
				disabled = append(disabled, safeID)
			}

			if c, ok := node.(domain.Container); ok {
				fmt.Fprintf(&sb, "%ssubgraph %s_group[\"%s: %s\"]\n", indent, safeID, node.Kind(), node.ID())
				fmt.Fprintf(&sb, "%s    %s[[\"%s\"]]\n", indent, safeID, node.ID())
				write(c.Children(), indent+"    ")
				fmt.Fprintf(&sb, "%send\n", indent)
				continue
			}

			opener, closer := "[", "]"
			switch {
			case node.ID() == g.StartNodeID:
				opener, closer = "((", "))"
			case node.Kind() == domain.KindChoice:
				opener, closer = "{", "}"
			case node.Kind() == domain.KindCondition:
				opener, closer = "{{", "}}"
			case node.Kind() == domain.KindEnd:
				opener, closer = "(((", ")))"
			}
			fmt.Fprintf(&sb, "%s%s%s\"%s\"%s\n", indent, safeID, opener, label(node), closer)
		}
	}
	write(g.Nodes, "    ")

	g.Walk(func(node, _ domain.Node) bool {
		writeEdges(&sb, node)
		return true
	})

	if len(disabled) > 0 {
		sb.WriteString("\n    classDef disabled stroke-dasharray: 5 5,color:#888;\n")
		for _, id := range disabled {
			fmt.Fprintf(&sb, "    class %s disabled;\n", id)
		}
	}

	if overlay != nil {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef visited fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		visitedSet := make(map[string]bool)
		for _, id := range overlay.VisitedNodes {
			safeID := sanitizeMermaidID(id)
			if !visitedSet[safeID] && safeID != "" {
				visitedSet[safeID] = true
				fmt.Fprintf(&sb, "    class %s visited;\n", safeID)
			}
		}

		if overlay.CurrentNode != "" {
			fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentNode))
		}
	}

	return sb.String()
}

func label(node domain.Node) string {
	l := node.ID()
	switch v := node.(type) {
	case *domain.TextNode:
		if v.Speaker != "" {
			l = fmt.Sprintf("%s <br/> %s", l, escape(v.Speaker))
		}
	case *domain.WaitNode:
		l = fmt.Sprintf("%s <br/> ⏱️ %s", l, v.Duration)
	case *domain.EventNode:
		l = fmt.Sprintf("%s <br/> 🔊 %s", l, escape(v.Event.Name))
	}
	return l
}

func writeEdges(sb *strings.Builder, node domain.Node) {
	from := sanitizeMermaidID(node.ID())
	edge := func(arrow, to string) {
		if to == "" {
			return
		}
		fmt.Fprintf(sb, "    %s %s %s\n", from, arrow, sanitizeMermaidID(to))
	}

	edge("-->", node.NextNodeID())

	switch v := node.(type) {
	case *domain.TextNode:
		if v.Interruptible {
			// Dotted line with lightning bolt for interrupt redirects
			ev := v.InterruptEventID
			if ev == "" {
				ev = "any"
			}
			edge(fmt.Sprintf("-. ⚡ %s .->", escape(ev)), v.InterruptNextID)
		}
	case *domain.ChoiceNode:
		for _, opt := range v.Options {
			text := escape(opt.Text)
			if !opt.Condition.IsEmpty() {
				edge(fmt.Sprintf("-. \"%s\" .->", text), opt.TargetID)
				continue
			}
			edge(fmt.Sprintf("-- \"%s\" -->", text), opt.TargetID)
		}
	case *domain.ConditionNode:
		edge("-- \"true\" -->", v.TrueNextID)
		edge("-- \"false\" -->", v.FalseNextID)
	case *domain.SequenceNode:
		edge("==>", v.StartNodeID)
	case *domain.ParallelNode:
		for _, b := range v.BranchStartIDs {
			edge("==>", b)
		}
	}
}

// escape replaces double quotes, which would close a Mermaid label.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
