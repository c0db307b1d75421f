package runner_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/dsl"
	"github.com/aretw0/colloquy/pkg/profile"
	"github.com/aretw0/colloquy/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tavern(t *testing.T) *memory.Loader {
	t.Helper()
	b := dsl.New("tavern").GlobalInt("gold", 10)

	b.Text("greet", "Keeper", "Welcome!").Next("menu").Interrupt("brawl", "fight")
	b.Choice("menu").
		Option("Buy ale", "ale", domain.AddInt("gold", -2)).
		Option("Leave", "bye")
	b.Text("ale", "Keeper", "{gold} gold left.").Next("bye")
	b.Text("fight", "", "Chairs fly!").Next("bye")
	b.End("bye")

	loader, err := b.Loader()
	require.NoError(t, err)
	return loader
}

func run(t *testing.T, h runner.IOHandler, opts ...colloquy.Option) (*colloquy.Engine, error) {
	t.Helper()
	opts = append(opts, colloquy.WithCollaborators(h.Collaborators()))
	eng, err := colloquy.New(tavern(t), opts...)
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return eng, runner.NewRunner(runner.WithInputHandler(h)).Run(ctx, eng, "tavern")
}

func TestRunner_Text(t *testing.T) {
	out := &bytes.Buffer{}
	h := runner.NewTextHandler(strings.NewReader("\n1\n\n"), out)

	eng, err := run(t, h)
	require.NoError(t, err)

	assert.Equal(t, colloquy.StatusEnded, eng.Status())
	assert.Contains(t, out.String(), "Keeper: Welcome!")
	assert.Contains(t, out.String(), "  1) Buy ale\n  2) Leave\n")
	assert.Contains(t, out.String(), "Keeper: 8 gold left.")
}

func TestRunner_InvalidCommandIsReported(t *testing.T) {
	out := &bytes.Buffer{}
	h := runner.NewTextHandler(strings.NewReader("dance\n\n7\n2\n"), out)

	_, err := run(t, h)
	require.NoError(t, err)
	assert.Contains(t, out.String(), ">>> unknown command: \"dance\"")
	assert.Contains(t, out.String(), ">>> pick a choice between 1 and 2")
}

func TestRunner_Interrupt(t *testing.T) {
	out := &bytes.Buffer{}
	h := runner.NewTextHandler(strings.NewReader("!nope\n!brawl\n\n"), out)

	_, err := run(t, h)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Interrupt 'nope' is not accepted here.")
	assert.Contains(t, out.String(), "Chairs fly!")
}

func TestRunner_QuitAndEOF(t *testing.T) {
	for _, input := range []string{"q\n", ""} {
		h := runner.NewTextHandler(strings.NewReader(input), &bytes.Buffer{})
		eng, err := run(t, h)
		assert.NoError(t, err)
		assert.Equal(t, colloquy.StatusEnded, eng.Status())
	}
}

func TestRunner_AutoSave(t *testing.T) {
	profiles := profile.NewManager(memory.NewStore())
	h := runner.NewTextHandler(strings.NewReader("\n1\n\n"), &bytes.Buffer{})

	eng, err := colloquy.New(tavern(t),
		colloquy.WithCollaborators(h.Collaborators()),
		colloquy.WithProfile(profiles, "ada"),
	)
	require.NoError(t, err)

	r := runner.NewRunner(runner.WithInputHandler(h), runner.WithAutoSave(true))
	require.NoError(t, r.Run(context.Background(), eng, "tavern"))

	data, err := profiles.Load(context.Background(), "ada")
	require.NoError(t, err)
	assert.Equal(t, []domain.IntEntry{{Key: "gold", Value: 8}}, data.Globals.Ints)
}

func TestRunner_JSON(t *testing.T) {
	out := &bytes.Buffer{}
	in := strings.Join([]string{`{"action":"confirm"}`, `{"choice":1}`}, "\n")
	h := runner.NewJSONHandler(strings.NewReader(in), out)

	eng, err := run(t, h)
	require.NoError(t, err)
	assert.Equal(t, colloquy.StatusEnded, eng.Status())

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	assert.JSONEq(t, `{"type":"text","node_id":"greet","speaker":"Keeper","text":"Welcome!"}`, lines[0])
	assert.JSONEq(t, `{"type":"waiting","node_id":"greet","kind":"input","interruptible":true}`, lines[1])
	assert.Contains(t, lines[2], `"type":"choices"`)
	assert.JSONEq(t, `{"type":"waiting","node_id":"menu","kind":"choice"}`, lines[3])
}

func TestRunner_CtrlCRaisesInterruptThenStops(t *testing.T) {
	b := dsl.New("duel")
	b.Text("taunt", "Rival", "Draw!").Next("bye").Interrupt(runner.DefaultInterruptEvent, "flee")
	b.Text("flee", "", "You run.").Next("bye")
	b.End("bye")
	loader, err := b.Loader()
	require.NoError(t, err)

	stdin, keyboard := io.Pipe()
	t.Cleanup(func() { keyboard.Close() })
	h := runner.NewTextHandler(stdin, &bytes.Buffer{})
	eng, err := colloquy.New(loader, colloquy.WithCollaborators(h.Collaborators()))
	require.NoError(t, err)

	signals := make(chan os.Signal, 1)
	r := runner.NewRunner(runner.WithInputHandler(h), runner.WithSignalSource(signals))

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx, eng, "duel") }()

	waitingAt := func(id string) func() bool {
		return func() bool { return eng.Pending().NodeID == id }
	}
	require.Eventually(t, waitingAt("taunt"), time.Second, 5*time.Millisecond)

	signals <- os.Interrupt
	require.Eventually(t, waitingAt("flee"), time.Second, 5*time.Millisecond)

	signals <- os.Interrupt
	select {
	case err := <-done:
		assert.ErrorIs(t, err, runner.ErrInterrupted)
	case <-time.After(time.Second):
		t.Fatal("second Ctrl+C did not stop the run")
	}
	assert.Equal(t, colloquy.StatusEnded, eng.Status())
}
