package cli

import (
	"errors"
	"fmt"
)

// RunOptions contains all the configuration for the Run command.
type RunOptions struct {
	Dir     string
	GraphID string
	// Profile names the player profile holding the global variables.
	// Empty runs without persistence.
	Profile  string
	Fresh    bool
	AutoSave bool
	Watch    bool
	JSON     bool
	Debug    bool
}

// Execute handles the 'run' command logic.
func Execute(opts RunOptions) error {
	if opts.Fresh && opts.Profile == "" {
		return errors.New("--fresh requires --profile")
	}
	if opts.Watch && opts.JSON {
		return fmt.Errorf("--watch and --json cannot be used together")
	}
	return RunSession(opts)
}
