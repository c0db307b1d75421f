/*
Package colloquy is a dialogue graph execution engine for branching conversations in games and interactive fiction.

A dialogue is a graph of nodes: lines of text, player choices, conditional branches, nested sequences,
parallel branches, timed waits and stage directions (transitions, character actions, camera, screen effects).
The engine walks the graph, keeps local and global variables, and hands everything visible to a Presenter
supplied by the host. The host drives the run by confirming text, selecting choices and raising interrupts.

# Key Features

  - Host-agnostic: presentation, localization and stage effects are interfaces (domain.Collaborators).
  - Skip logic: disabled nodes are passed over, sequences return to their caller when exhausted.
  - Parallel branches: branches run concurrently and join before the dialogue continues.
  - Player profiles: global variables persist across runs (memory, file or redis stores).
  - Hot reload: directory loaders watch graph files and swap the running graph in place.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/colloquy"
		"github.com/aretw0/colloquy/pkg/adapters/file"
		"github.com/aretw0/colloquy/pkg/runner"
	)

	func main() {
		handler := runner.NewTextHandler(nil, nil)
		eng, err := colloquy.New(file.NewLoader("./dialogue"),
			colloquy.WithCollaborators(handler.Collaborators()),
		)
		if err != nil {
			log.Fatal(err)
		}

		r := runner.NewRunner(runner.WithInputHandler(handler))
		if err := r.Run(context.Background(), eng, "tavern"); err != nil {
			log.Fatal(err)
		}
	}

Graphs can also be built in Go with package dsl, or served over HTTP with package http under pkg/adapters.
*/
package colloquy
