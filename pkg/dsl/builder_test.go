package dsl_test

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/dsl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Build(t *testing.T) {
	b := dsl.New("tavern").GlobalInt("gold", 10).GlobalBool("met_keeper", false)

	b.Text("greet", "Keeper", "Welcome!").Key("tavern.greet").Next("menu").Set(domain.SetBool("met_keeper", true))
	b.Choice("menu").
		Option("Buy ale", "ale", domain.AddInt("gold", -2)).When("gold >= 2").
		Option("Leave", "bye")

	ale := b.Sequence("ale").Next("bye")
	ale.Wait("pour", time.Second).Next("drink")
	ale.Text("drink", "", "*gulp*").AutoAdvance(true)

	b.End("bye")

	g, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, "tavern", g.ID)
	assert.Equal(t, "greet", g.StartNodeID)
	assert.Equal(t, 6, g.Len())

	greet, ok := g.GetNode("greet")
	require.True(t, ok)
	txt := greet.(*domain.TextNode)
	assert.Equal(t, "Keeper", txt.Speaker)
	assert.Equal(t, "tavern.greet", txt.LocalizationKey)
	assert.Equal(t, "menu", txt.NextNodeID())
	assert.Len(t, txt.Changes(), 1)

	menu, _ := g.GetNode("menu")
	opts := menu.(*domain.ChoiceNode).Options
	require.Len(t, opts, 2)
	assert.Equal(t, []domain.IntCondition{{Variable: "gold", Op: domain.OpGreaterEqual, Value: 2}}, opts[0].Condition.Ints)
	assert.True(t, opts[1].Condition.IsEmpty())

	seq, _ := g.GetNode("ale")
	assert.Equal(t, "pour", seq.(*domain.SequenceNode).StartNodeID, "sequence start defaults to first child")

	assert.Equal(t, []domain.IntEntry{{Key: "gold", Value: 10}}, g.Defaults.Ints)
	assert.Equal(t, []domain.BoolEntry{{Key: "met_keeper", Value: false}}, g.Defaults.Bools)
}

func TestBuilder_ConditionAndParallel(t *testing.T) {
	b := dsl.New("g").Start("check")

	b.If("check", "met_keeper", "gold > 0").Then("fork").Else("bye")

	par := b.Parallel("fork").Branches("left", "right").Next("bye")
	par.Text("left", "A", "left")
	par.Text("right", "B", "right").Interrupt("alarm", "bye")

	b.End("bye").Disabled()

	g, err := b.Build()
	require.NoError(t, err)

	n, _ := g.GetNode("check")
	cond := n.(*domain.ConditionNode)
	assert.Equal(t, "fork", cond.TrueNextID)
	assert.Equal(t, "bye", cond.FalseNextID)
	assert.Equal(t, []domain.BoolCondition{{Variable: "met_keeper", Value: true}}, cond.Condition.Bools)
	assert.Equal(t, []domain.IntCondition{{Variable: "gold", Op: domain.OpGreater, Value: 0}}, cond.Condition.Ints)

	right, _ := g.GetNode("right")
	ev, target, ok := right.(domain.Interruptible).InterruptTarget()
	assert.True(t, ok)
	assert.Equal(t, "alarm", ev)
	assert.Equal(t, "bye", target)

	bye, _ := g.GetNode("bye")
	assert.False(t, bye.Enabled())
}

func TestBuilder_Errors(t *testing.T) {
	t.Run("Bad Condition", func(t *testing.T) {
		b := dsl.New("g")
		b.Choice("menu").Option("Pay", "bye").When("gold >>> 2")
		b.End("bye")

		_, err := b.Build()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "node 'menu'")
	})

	t.Run("When Without Option", func(t *testing.T) {
		b := dsl.New("g")
		b.Choice("menu").When("gold > 0")

		_, err := b.Build()
		assert.ErrorContains(t, err, "When called before Option")
	})

	t.Run("Dangling Link", func(t *testing.T) {
		b := dsl.New("g")
		b.Text("a", "", "hi").Next("ghost")

		_, err := b.Build()
		assert.ErrorContains(t, err, "ghost")
	})
}

func TestBuilder_Loader(t *testing.T) {
	b := dsl.New("g")
	b.Text("a", "", "hi")

	loader, err := b.Loader()
	require.NoError(t, err)

	g, err := loader.Load(context.Background(), "g")
	require.NoError(t, err)
	assert.Equal(t, "a", g.StartNodeID)
}
