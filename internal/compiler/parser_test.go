package compiler_test

import (
	"testing"
	"time"

	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tavern = `
id: tavern
start: greet
auto_advance:
  enabled: false
  delay: 250ms
globals:
  gold: 10
  met_keeper: false
  name: Ada
nodes:
  - id: greet
    speaker: Keeper
    text: "Welcome, {name}!"
    next: menu
    interrupt_on: brawl
    interrupt_to: fight
    changes:
      - {name: visits, type: int, op: add, int: 1}
  - id: menu
    type: choice
    options:
      - text: Buy ale
        to: ale
        when: ["gold >= 2"]
        changes:
          - {name: gold, type: int, op: add, int: -2}
      - text: Leave
        to: bye
  - id: ale
    type: sequence
    next: bye
    nodes:
      - id: pour
        type: wait
        duration: 1s
        next: drink
      - id: drink
        type: camera
        camera: {action: shake, intensity: 1, duration: 500ms}
  - id: fight
    type: parallel
    branches: [swing, dodge]
    next: bye
    nodes:
      - id: swing
        type: event
        event: {name: sfx_swing, params: {volume: 3}}
      - id: dodge
        type: condition
        when: {ints: [{variable: gold, op: gt, value: 5}], bools: [{variable: met_keeper, value: false}]}
        then: bye
        else: bye
  - id: bye
    type: end
`

func TestParser_Parse(t *testing.T) {
	g, err := compiler.NewParser().Parse([]byte(tavern))
	require.NoError(t, err)

	assert.Equal(t, "tavern", g.ID)
	assert.Equal(t, "greet", g.StartNodeID)
	assert.Equal(t, domain.AutoAdvance{Enabled: false, Delay: 250 * time.Millisecond}, g.AutoAdvance)
	assert.Equal(t, domain.VariableSnapshot{
		Ints:    []domain.IntEntry{{Key: "gold", Value: 10}},
		Bools:   []domain.BoolEntry{{Key: "met_keeper", Value: false}},
		Strings: []domain.StringEntry{{Key: "name", Value: "Ada"}},
	}, g.Defaults)
	assert.Equal(t, 9, g.Len())

	greet, ok := g.GetNode("greet")
	require.True(t, ok)
	text := greet.(*domain.TextNode)
	assert.True(t, text.Interruptible)
	assert.Equal(t, "brawl", text.InterruptEventID)
	assert.Equal(t, "fight", text.InterruptNextID)
	assert.Equal(t, []domain.VariableChange{domain.AddInt("visits", 1)}, text.Changes())

	menu, _ := g.GetNode("menu")
	choice := menu.(*domain.ChoiceNode)
	require.Len(t, choice.Options, 2)
	assert.Equal(t, []domain.IntCondition{{Variable: "gold", Op: domain.OpGreaterEqual, Value: 2}}, choice.Options[0].Condition.Ints)
	assert.True(t, choice.Options[1].Condition.IsEmpty())

	ale, _ := g.GetNode("ale")
	assert.Equal(t, "pour", ale.(*domain.SequenceNode).StartNodeID, "sequence start defaults to first child")

	pour, _ := g.GetNode("pour")
	assert.Equal(t, time.Second, pour.(*domain.WaitNode).Duration)

	drink, _ := g.GetNode("drink")
	assert.Equal(t, domain.CameraAction{Action: "shake", Intensity: 1, Duration: 500 * time.Millisecond}, drink.(*domain.CameraNode).Action)

	swing, _ := g.GetNode("swing")
	assert.Equal(t, "sfx_swing", swing.(*domain.EventNode).Event.Name)

	dodge, _ := g.GetNode("dodge")
	cond := dodge.(*domain.ConditionNode).Condition
	assert.Equal(t, domain.OpGreater, cond.Ints[0].Op)
	assert.Equal(t, []domain.BoolCondition{{Variable: "met_keeper", Value: false}}, cond.Bools)
}

func TestParser_JSON(t *testing.T) {
	doc := `{"id": "j", "nodes": [{"id": "a", "text": "hi", "next": "b"}, {"id": "b", "type": "end"}]}`
	g, err := compiler.NewParser().Parse([]byte(doc))
	require.NoError(t, err)
	assert.Equal(t, "a", g.StartNodeID, "start defaults to the first node")
	assert.True(t, g.HasNode("b"))
}

func TestParser_CompactConditions(t *testing.T) {
	doc := `
id: c
nodes:
  - id: check
    type: condition
    when: ["door_open", "!locked", "lit == false", "alarm != true", "gold < 3"]
    then: a
    else: b
`
	g, err := compiler.NewParser().Parse([]byte(doc))
	require.NoError(t, err)

	n, _ := g.GetNode("check")
	cond := n.(*domain.ConditionNode).Condition
	assert.Equal(t, []domain.BoolCondition{
		{Variable: "door_open", Value: true},
		{Variable: "locked", Value: false},
		{Variable: "lit", Value: false},
		{Variable: "alarm", Value: false},
	}, cond.Bools)
	assert.Equal(t, []domain.IntCondition{{Variable: "gold", Op: domain.OpLess, Value: 3}}, cond.Ints)
}

func TestParseExpressions_IntegerLiterals(t *testing.T) {
	tests := []struct {
		expr string
		want domain.IntCondition
	}{
		{"gold > 0", domain.IntCondition{Variable: "gold", Op: domain.OpGreater, Value: 0}},
		{"gold == 1", domain.IntCondition{Variable: "gold", Op: domain.OpEqual, Value: 1}},
		{"gold != 0", domain.IntCondition{Variable: "gold", Op: domain.OpNotEqual, Value: 0}},
		{"gold >= 1", domain.IntCondition{Variable: "gold", Op: domain.OpGreaterEqual, Value: 1}},
		{"gold <= -1", domain.IntCondition{Variable: "gold", Op: domain.OpLessEqual, Value: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			cond, err := compiler.ParseExpressions([]string{tt.expr})
			require.NoError(t, err)
			assert.Empty(t, cond.Bools)
			assert.Equal(t, []domain.IntCondition{tt.want}, cond.Ints)
		})
	}
}

func TestParseExpressions_BoolWordsOnly(t *testing.T) {
	cond, err := compiler.ParseExpressions([]string{"lit == true", "alarm != false"})
	require.NoError(t, err)
	assert.Equal(t, []domain.BoolCondition{
		{Variable: "lit", Value: true},
		{Variable: "alarm", Value: true},
	}, cond.Bools)

	for _, expr := range []string{"lit == t", "lit == F", "lit == TRUE"} {
		_, err := compiler.ParseExpressions([]string{expr})
		assert.ErrorContains(t, err, "integer or true/false", expr)
	}
}

func TestParser_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"not yaml", "id: [", ""},
		{"missing graph id", "nodes: []", "missing graph id"},
		{"missing node id", "id: g\nnodes:\n  - text: hi", "missing id"},
		{"unknown type", "id: g\nnodes:\n  - {id: a, type: teleport}", "unknown node type"},
		{"unknown field", "id: g\nnodes:\n  - {id: a, colour: red}", "colour"},
		{"bad duration", "id: g\nnodes:\n  - {id: a, type: wait, duration: soon}", "invalid duration"},
		{"choice with next", "id: g\nnodes:\n  - {id: a, type: choice, next: b}", "selected option"},
		{"bad condition", "id: g\nnodes:\n  - {id: a, type: condition, when: [\"gold ~ 3\"]}", "unknown comparison"},
		{"bool ordering", "id: g\nnodes:\n  - {id: a, type: condition, when: [\"flag > true\"]}", "booleans only"},
		{"bad change", "id: g\nnodes:\n  - {id: a, changes: [{name: x, type: string, op: add}]}", "set only"},
		{"float global", "id: g\nglobals: {ratio: 0.5}\nnodes: []", "ratio"},
		{"camera without payload", "id: g\nnodes:\n  - {id: a, type: camera}", "missing 'camera'"},
		{"nested error", "id: g\nnodes:\n  - {id: s, type: sequence, nodes: [{text: x}]}", "in 's'"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compiler.NewParser().Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, compiler.ErrInvalidDocument)
			if tt.want != "" {
				assert.Contains(t, err.Error(), tt.want)
			}
		})
	}
}
