package runner_test

import (
	"testing"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCommand(t *testing.T) {
	input := colloquy.Suspension{Kind: colloquy.SuspendInput}
	choice := colloquy.Suspension{Kind: colloquy.SuspendChoice, Choices: []domain.PresentedChoice{
		{ID: 0, Text: "a"}, {ID: 2, Text: "c"},
	}}

	tests := []struct {
		name    string
		line    string
		pending colloquy.Suspension
		want    runner.Command
	}{
		{"Enter Confirms", "", input, runner.Command{Kind: runner.CommandConfirm}},
		{"Next Confirms", "NEXT", input, runner.Command{Kind: runner.CommandConfirm}},
		{"Quit", "exit", choice, runner.Command{Kind: runner.CommandQuit}},
		{"Interrupt", "!alarm", input, runner.Command{Kind: runner.CommandInterrupt, Event: "alarm"}},
		{"Anonymous Interrupt", "!", input, runner.Command{Kind: runner.CommandInterrupt}},
		{"Position Maps To Option ID", "2", choice, runner.Command{Kind: runner.CommandChoose, OptionID: 2}},
		{"Explicit Option ID", "#7", choice, runner.Command{Kind: runner.CommandChoose, OptionID: 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runner.ParseCommand(tt.line, tt.pending)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCommand_Errors(t *testing.T) {
	choice := colloquy.Suspension{Kind: colloquy.SuspendChoice, Choices: []domain.PresentedChoice{{ID: 0}}}

	_, err := runner.ParseCommand("", choice)
	assert.EqualError(t, err, "pick a choice between 1 and 1")
	_, err = runner.ParseCommand("2", choice)
	assert.Error(t, err)
	_, err = runner.ParseCommand("#x", choice)
	assert.ErrorIs(t, err, runner.ErrUnknownCommand)
	_, err = runner.ParseCommand("1", colloquy.Suspension{Kind: colloquy.SuspendInput})
	assert.ErrorIs(t, err, runner.ErrUnknownCommand)
}
