package cli

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/pkg/runner"
)

// RunSession executes a single dialogue of the project.
func RunSession(opts RunOptions) error {
	proj, err := OpenProject(opts.Dir, opts.Debug)
	if err != nil {
		return err
	}
	defer proj.Close()
	logger := proj.Logger

	// Ctrl+C is handled by the runner, which turns it into a dialogue interrupt.
	sigCtx := NewSignalContext(context.Background(), syscall.SIGTERM)
	defer sigCtx.Cancel()

	if opts.Fresh {
		if err := proj.Profiles.Delete(sigCtx, opts.Profile); err != nil {
			return fmt.Errorf("failed to reset profile: %w", err)
		}
	}

	handler := newHandler(opts.JSON)
	engine, err := proj.NewEngine(opts.Profile, colloquy.WithCollaborators(handler.Collaborators()))
	if err != nil {
		return err
	}

	graphID := proj.Entry(opts.GraphID)
	if !opts.JSON {
		tui.PrintBanner(os.Stdout)
		if opts.Profile != "" {
			printSystemMessage("Profile '%s' active.", opts.Profile)
		}
	}
	logger.Info("Session Started", "graph_id", graphID, "profile", opts.Profile)

	if opts.Watch {
		if err := watchGraphs(sigCtx, engine, logger); err != nil {
			logger.Warn("hot reload unavailable", "err", err)
		} else {
			printSystemMessage("Watching '%s' for changes.", proj.Config.GraphsDir())
		}
	}

	r := runner.NewRunner(
		runner.WithLogger(logger),
		runner.WithInputHandler(handler),
		runner.WithAutoSave(opts.AutoSave),
	)
	runErr := r.Run(sigCtx, engine, graphID)

	// If context was canceled (signal received), ensure runErr reflects it if it doesn't already
	if sigCtx.Err() != nil && runErr == nil {
		runErr = sigCtx.Err()
	}

	logCompletion(graphID, runErr, opts.JSON, sigCtx.Signal())
	return handleExecutionError(runErr)
}

func newHandler(jsonMode bool) runner.IOHandler {
	if jsonMode {
		return runner.NewJSONHandler(os.Stdin, os.Stdout)
	}
	color := tui.IsTerminal(os.Stdout)
	opts := []runner.TextHandlerOption{runner.WithSpeakerStyle(tui.SpeakerStyle(color))}
	if color {
		opts = append(opts, runner.WithTextHandlerRenderer(tui.NewRenderer(tui.Width(os.Stdout, 80))))
	}
	return runner.NewTextHandler(os.Stdin, os.Stdout, opts...)
}
