// Package compiler turns dialogue graph documents (YAML or JSON) into domain graphs.
package compiler

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"gopkg.in/yaml.v3"
)

// ErrInvalidDocument wraps every decoding failure.
var ErrInvalidDocument = errors.New("invalid graph document")

// Parser converts raw documents into graphs.
type Parser struct{}

// NewParser creates a new parser instance.
func NewParser() *Parser {
	return &Parser{}
}

// Parse decodes a YAML or JSON document. The returned graph's index is built.
// Structural integrity (dangling links, duplicates) is not checked here; see
// the validator.
func (p *Parser) Parse(data []byte) (*domain.Graph, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return p.Compile(doc)
}

// Compile builds a graph from an already decoded document.
func (p *Parser) Compile(doc Document) (*domain.Graph, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: missing graph id", ErrInvalidDocument)
	}

	nodes, err := compileNodes(doc.Nodes, "")
	if err != nil {
		return nil, fmt.Errorf("%w: graph '%s': %v", ErrInvalidDocument, doc.ID, err)
	}

	g := &domain.Graph{ID: doc.ID, StartNodeID: doc.Start, Nodes: nodes}
	if g.StartNodeID == "" && len(nodes) > 0 {
		g.StartNodeID = nodes[0].ID()
	}
	if doc.AutoAdvance != nil {
		g.AutoAdvance.Enabled = doc.AutoAdvance.Enabled
		if doc.AutoAdvance.Delay != "" {
			d, err := time.ParseDuration(doc.AutoAdvance.Delay)
			if err != nil {
				return nil, fmt.Errorf("%w: auto_advance.delay: %v", ErrInvalidDocument, err)
			}
			g.AutoAdvance.Delay = d
		}
	}
	defaults, err := CompileGlobals(doc.Globals)
	if err != nil {
		return nil, fmt.Errorf("%w: globals: %v", ErrInvalidDocument, err)
	}
	g.Defaults = defaults

	g.BuildIndex()
	return g, nil
}

func compileNodes(raw []map[string]any, parent string) ([]domain.Node, error) {
	nodes := make([]domain.Node, 0, len(raw))
	for i, m := range raw {
		var nd NodeDoc
		if err := decode(m, &nd); err != nil {
			return nil, fmt.Errorf("node #%d%s: %w", i, under(parent), err)
		}
		if nd.ID == "" {
			return nil, fmt.Errorf("node #%d%s: missing id", i, under(parent))
		}
		n, err := compileNode(nd)
		if err != nil {
			return nil, fmt.Errorf("node '%s': %w", nd.ID, err)
		}
		nodes = append(nodes, n)
	}
	return nodes, nil
}

func under(parent string) string {
	if parent == "" {
		return ""
	}
	return " in '" + parent + "'"
}

func compileNode(nd NodeDoc) (domain.Node, error) {
	base := domain.Base{NodeID: nd.ID, Disabled: nd.Disabled, Next: nd.Next, VariableChanges: nd.Changes}
	for _, c := range nd.Changes {
		if err := checkChange(c); err != nil {
			return nil, err
		}
	}

	switch domain.Kind(nd.Type) {
	case domain.KindText, "":
		return &domain.TextNode{
			Base:             base,
			Speaker:          nd.Speaker,
			Text:             nd.Text,
			LocalizationKey:  nd.Key,
			Interruptible:    nd.Interruptible || nd.InterruptTo != "",
			InterruptEventID: nd.InterruptOn,
			InterruptNextID:  nd.InterruptTo,
			AutoAdvance:      nd.AutoAdvance,
			Delay:            nd.Delay,
		}, nil

	case domain.KindChoice:
		if nd.Next != "" {
			return nil, errors.New("choice nodes take their next node from the selected option")
		}
		opts := make([]domain.ChoiceOption, 0, len(nd.Options))
		for i, od := range nd.Options {
			cond, err := parseCondition(od.When)
			if err != nil {
				return nil, fmt.Errorf("option #%d: %w", i, err)
			}
			for _, c := range od.Changes {
				if err := checkChange(c); err != nil {
					return nil, fmt.Errorf("option #%d: %w", i, err)
				}
			}
			opts = append(opts, domain.ChoiceOption{
				Text:            od.Text,
				LocalizationKey: od.Key,
				TargetID:        od.To,
				Condition:       cond,
				Changes:         od.Changes,
			})
		}
		return &domain.ChoiceNode{Base: base, Options: opts}, nil

	case domain.KindCondition:
		cond, err := parseCondition(nd.When)
		if err != nil {
			return nil, err
		}
		return &domain.ConditionNode{Base: base, Condition: cond, TrueNextID: nd.Then, FalseNextID: nd.Else}, nil

	case domain.KindSequence:
		children, err := compileNodes(nd.Nodes, nd.ID)
		if err != nil {
			return nil, err
		}
		start := nd.Start
		if start == "" && len(children) > 0 {
			start = children[0].ID()
		}
		return &domain.SequenceNode{Base: base, StartNodeID: start, Nodes: children}, nil

	case domain.KindParallel:
		children, err := compileNodes(nd.Nodes, nd.ID)
		if err != nil {
			return nil, err
		}
		return &domain.ParallelNode{Base: base, BranchStartIDs: nd.Branches, Nodes: children}, nil

	case domain.KindWait:
		return &domain.WaitNode{Base: base, Duration: nd.Duration}, nil

	case domain.KindTransition:
		if nd.Transition == nil {
			return nil, errors.New("missing 'transition'")
		}
		return &domain.TransitionNode{Base: base, Transition: *nd.Transition}, nil

	case domain.KindCharacterAction:
		if nd.Character == nil {
			return nil, errors.New("missing 'character'")
		}
		return &domain.CharacterActionNode{Base: base, Action: *nd.Character}, nil

	case domain.KindBackground:
		if nd.Background == nil {
			return nil, errors.New("missing 'background'")
		}
		return &domain.BackgroundNode{Base: base, Background: *nd.Background}, nil

	case domain.KindCamera:
		if nd.Camera == nil {
			return nil, errors.New("missing 'camera'")
		}
		return &domain.CameraNode{Base: base, Action: *nd.Camera}, nil

	case domain.KindScreenEffect:
		if nd.Effect == nil {
			return nil, errors.New("missing 'effect'")
		}
		return &domain.ScreenEffectNode{Base: base, Effect: *nd.Effect}, nil

	case domain.KindEvent:
		if nd.Event == nil || nd.Event.Name == "" {
			return nil, errors.New("missing 'event.name'")
		}
		return &domain.EventNode{Base: base, Event: *nd.Event}, nil

	case domain.KindEnd:
		return &domain.EndNode{Base: base}, nil

	default:
		return nil, fmt.Errorf("unknown node type '%s'", nd.Type)
	}
}

func checkChange(c domain.VariableChange) error {
	if c.Name == "" {
		return errors.New("variable change without a name")
	}
	switch c.Type {
	case domain.VarInt:
		if c.Op != "" && c.Op != domain.OpSet && c.Op != domain.OpAdd {
			return fmt.Errorf("variable '%s': int supports set and add, not %s", c.Name, c.Op)
		}
	case domain.VarBool:
		if c.Op != "" && c.Op != domain.OpSet && c.Op != domain.OpToggle {
			return fmt.Errorf("variable '%s': bool supports set and toggle, not %s", c.Name, c.Op)
		}
	case domain.VarString:
		if c.Op != "" && c.Op != domain.OpSet {
			return fmt.Errorf("variable '%s': string supports set only, not %s", c.Name, c.Op)
		}
	default:
		return fmt.Errorf("variable '%s': unknown type '%s'", c.Name, c.Type)
	}
	return nil
}

// CompileGlobals infers each default's type from its YAML scalar.
func CompileGlobals(raw map[string]any) (domain.VariableSnapshot, error) {
	var snap domain.VariableSnapshot
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := raw[k].(type) {
		case int:
			snap.Ints = append(snap.Ints, domain.IntEntry{Key: k, Value: v})
		case bool:
			snap.Bools = append(snap.Bools, domain.BoolEntry{Key: k, Value: v})
		case string:
			snap.Strings = append(snap.Strings, domain.StringEntry{Key: k, Value: v})
		default:
			return snap, fmt.Errorf("'%s': unsupported value type %T (want int, bool or string)", k, v)
		}
	}
	return snap, nil
}
