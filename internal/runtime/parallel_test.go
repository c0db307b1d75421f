package runtime_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/colloquy/internal/runtime"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chainOf(prefix string, n int, d time.Duration) []domain.Node {
	nodes := make([]domain.Node, n)
	for i := 0; i < n; i++ {
		next := ""
		if i < n-1 {
			next = prefix + string(rune('a'+i+1))
		}
		nodes[i] = wait(prefix+string(rune('a'+i)), next, d)
	}
	return nodes
}

func TestParallel_JoinWaitsForLongestBranch(t *testing.T) {
	rec := &recorder{}
	c, _ := newController(t, rec)

	short := chainOf("s", 2, 2*time.Millisecond)
	long := chainOf("l", 5, 2*time.Millisecond)
	par := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "P", Next: "after"},
		BranchStartIDs: []string{"sa", "la"},
		Nodes:          append(short, long...),
	}
	g := domain.NewGraph("fork", "P", par, wait("after", "", 0))

	require.NoError(t, c.Start(context.Background(), g))
	waitDone(t, c)
	require.NoError(t, c.Err())

	assert.Equal(t, []string{"P", "after"}, rec.visited())

	afterIdx := rec.index("enter:after")
	require.Positive(t, afterIdx)
	branchLeaves := 0
	for i, e := range rec.all() {
		if strings.HasPrefix(e, "leave[") {
			branchLeaves++
			assert.Less(t, i, afterIdx, "branch event %q after the join", e)
		}
	}
	assert.Equal(t, 7, branchLeaves)
	assert.Less(t, rec.index("leave[1]:le"), rec.index("leave:P"))
	assert.Less(t, rec.index("enter[0]:sa"), rec.index("leave[0]:sb"))
}

func TestParallel_ZeroBranches(t *testing.T) {
	rec := &recorder{}
	c, _ := newController(t, rec)

	g := domain.NewGraph("empty", "P",
		&domain.ParallelNode{Base: domain.Base{NodeID: "P", Next: "after"}},
		wait("after", "", 0))

	require.NoError(t, c.Start(context.Background(), g))
	waitDone(t, c)
	assert.Equal(t, []string{"P", "after"}, rec.visited())
}

func TestParallel_SwallowedInputWaitsOnce(t *testing.T) {
	rec := &recorder{}
	c, p := newController(t, rec)

	par := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "P", Next: "after"},
		BranchStartIDs: []string{"t1", "t2"},
		Nodes:          []domain.Node{text("t1", ""), text("t2", "")},
	}
	g := domain.NewGraph("fork", "P", par, end("after"))

	require.NoError(t, c.Start(context.Background(), g))
	waitIdle(t, c)

	assert.Equal(t, "P", c.CurrentNodeID())
	assert.Equal(t, runtime.SuspendInput, c.Pending().Kind)
	assert.ElementsMatch(t, []string{"text of t1", "text of t2"}, p.texts())

	require.True(t, c.ConfirmAdvance())
	waitDone(t, c)
	assert.Equal(t, []string{"P", "after"}, rec.visited())
}

func TestParallel_BranchFlowControlIsSwallowed(t *testing.T) {
	rec := &recorder{}
	c, _ := newController(t, rec)

	par := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "P", Next: "after"},
		BranchStartIDs: []string{"jump", "w1"},
		Nodes: []domain.Node{
			&domain.ConditionNode{Base: domain.Base{NodeID: "jump"}, TrueNextID: "elsewhere", FalseNextID: "elsewhere"},
			wait("w1", "stop", time.Millisecond),
			end("stop"),
		},
	}
	g := domain.NewGraph("fork", "P", par, wait("after", "", 0), wait("elsewhere", "", 0))

	require.NoError(t, c.Start(context.Background(), g))
	waitDone(t, c)

	require.NoError(t, c.Err())
	assert.Equal(t, []string{"P", "after"}, rec.visited())
	assert.Equal(t, -1, rec.index("enter[0]:elsewhere"))
}

func TestParallel_BranchWritesReachStores(t *testing.T) {
	c, _ := newController(t, &recorder{})

	hit := func(id, next string) domain.Node {
		return &domain.WaitNode{Base: domain.Base{NodeID: id, Next: next,
			VariableChanges: []domain.VariableChange{domain.AddInt("hits", 1), domain.SetString("last", id)}}}
	}
	par := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "P", Next: "hold"},
		BranchStartIDs: []string{"a1", "b1", "c1"},
		Nodes:          []domain.Node{hit("a1", "a2"), hit("a2", ""), hit("b1", ""), hit("c1", "c2"), hit("c2", "")},
	}
	g := domain.NewGraph("fork", "P", par, wait("hold", "", time.Hour))

	require.NoError(t, c.Start(context.Background(), g))
	defer c.End()
	require.Eventually(t, func() bool { return c.CurrentNodeID() == "hold" }, testTimeout, time.Millisecond)

	assert.Equal(t, 5, c.Variables().GetInt("hits"))
	// Concurrent writers to the same name: whichever wrote last wins.
	assert.Contains(t, []string{"a1", "a2", "b1", "c1", "c2"}, c.Variables().GetString("last"))
}

func TestParallel_EndCancelsBranches(t *testing.T) {
	rec := &recorder{}
	c, _ := newController(t, rec)

	par := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "P", Next: "after"},
		BranchStartIDs: []string{"slow1", "slow2"},
		Nodes:          []domain.Node{wait("slow1", "", time.Hour), wait("slow2", "", time.Hour)},
	}
	g := domain.NewGraph("fork", "P", par, wait("after", "", 0))

	require.NoError(t, c.Start(context.Background(), g))
	require.Eventually(t, func() bool {
		return rec.index("enter[0]:slow1") >= 0 && rec.index("enter[1]:slow2") >= 0
	}, testTimeout, time.Millisecond)

	c.End()
	waitDone(t, c)
	waitIdle(t, c)
	assert.Equal(t, -1, rec.index("enter:after"))
}

func TestParallel_EmptyBranchIDEndsRun(t *testing.T) {
	c, _ := newController(t, &recorder{})
	g := domain.NewGraph("fork", "P", &domain.ParallelNode{
		Base:           domain.Base{NodeID: "P"},
		BranchStartIDs: []string{"x", ""},
		Nodes:          []domain.Node{wait("x", "", 0)},
	})

	require.NoError(t, c.Start(context.Background(), g))
	waitDone(t, c)

	var malformed *domain.MalformedNodeError
	assert.ErrorAs(t, c.Err(), &malformed)
}

func TestParallel_NestedJoin(t *testing.T) {
	rec := &recorder{}
	c, _ := newController(t, rec)

	inner := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "inner", Next: "tail"},
		BranchStartIDs: []string{"i1", "i2"},
		Nodes:          []domain.Node{wait("i1", "", time.Millisecond), wait("i2", "", 2*time.Millisecond)},
	}
	outer := &domain.ParallelNode{
		Base:           domain.Base{NodeID: "outer", Next: "after"},
		BranchStartIDs: []string{"inner"},
		Nodes:          []domain.Node{inner, wait("tail", "", 0)},
	}
	g := domain.NewGraph("nested", "outer", outer, wait("after", "", 0))

	require.NoError(t, c.Start(context.Background(), g))
	waitDone(t, c)

	assert.Less(t, rec.index("leave[0]:tail"), rec.index("enter:after"))
	assert.Less(t, rec.index("leave[1]:i2"), rec.index("enter[0]:tail"))
}
