package runner

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/colloquy"
)

// CommandKind is the action a parsed input line asks for.
type CommandKind int

const (
	CommandConfirm CommandKind = iota
	CommandChoose
	CommandInterrupt
	CommandQuit
)

// Command is a parsed input line.
type Command struct {
	Kind     CommandKind
	OptionID int
	Event    string
}

var ErrUnknownCommand = errors.New("unknown command")

// ParseCommand interprets a line of user input against what the run is waiting for.
// Numbers are 1-based positions in the offered choice list.
func ParseCommand(line string, pending colloquy.Suspension) (Command, error) {
	line = strings.TrimSpace(line)

	switch strings.ToLower(line) {
	case "q", "quit", "exit":
		return Command{Kind: CommandQuit}, nil
	}

	if ev, ok := strings.CutPrefix(line, "!"); ok {
		return Command{Kind: CommandInterrupt, Event: strings.TrimSpace(ev)}, nil
	}

	if pending.Kind == colloquy.SuspendChoice {
		if id, ok := strings.CutPrefix(line, "#"); ok {
			n, err := strconv.Atoi(id)
			if err != nil {
				return Command{}, fmt.Errorf("%w: option id must be a number", ErrUnknownCommand)
			}
			return Command{Kind: CommandChoose, OptionID: n}, nil
		}
		n, err := strconv.Atoi(line)
		if err != nil || n < 1 || n > len(pending.Choices) {
			return Command{}, fmt.Errorf("pick a choice between 1 and %d", len(pending.Choices))
		}
		return Command{Kind: CommandChoose, OptionID: pending.Choices[n-1].ID}, nil
	}

	switch strings.ToLower(line) {
	case "", "next", "n":
		return Command{Kind: CommandConfirm}, nil
	}
	return Command{}, fmt.Errorf("%w: %q", ErrUnknownCommand, line)
}
