package runner

import (
	"context"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/pkg/domain"
)

// IOHandler defines the strategy for interacting with the user.
// This allows switching between Text (CLI/TUI) and JSON (Structured) modes.
//
// The handler is also the engine's Presenter, so output flows from the engine
// straight to it while input is pulled by the Runner.
type IOHandler interface {
	domain.Presenter

	// Input reads the next command while the run waits on pending.
	Input(ctx context.Context, pending colloquy.Suspension) (string, error)

	// SystemOutput presents a meta-message to the user (rejected commands, status updates).
	// This is distinct from dialogue content.
	SystemOutput(ctx context.Context, msg string) error

	// Collaborators returns the engine collaborators the handler implements.
	Collaborators() domain.Collaborators
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)
