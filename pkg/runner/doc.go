/*
Package runner implements the interactive loop that drives a Colloquy engine
from a terminal or a pipe.

It acts as the bridge between the dialogue engine and the outside world.
The engine pushes lines and choices to an IOHandler (which doubles as the
engine's Presenter); the runner reads commands back from the same handler
and turns them into ConfirmAdvance, SelectChoice, RaiseInterrupt or End calls.

# Key Components

  - Runner: The loop that waits for the engine to settle and applies user commands.
  - IOHandler: Decouples how lines are shown and commands are read (text, JSON).
  - TextHandler: A standard implementation for interactive CLI usage.
  - JSONHandler: NDJSON output and input for headless hosts.

# Commands

	<enter>, next      confirm the current line
	1, 2, ...          pick the n-th offered choice
	#id                pick the choice with option id
	!event             raise an interrupt (a bare "!" raises an anonymous one)
	q, quit, exit      end the dialogue

Pressing Ctrl+C while an interruptible node waits raises the "interrupt" event;
anywhere else it stops the run.

# Usage

	h := runner.NewTextHandler(os.Stdin, os.Stdout)
	eng, _ := colloquy.New(loader, colloquy.WithCollaborators(h.Collaborators()))

	r := runner.NewRunner(runner.WithInputHandler(h))
	if err := r.Run(ctx, eng, "tavern"); err != nil {
		log.Fatal(err)
	}
*/
package runner
