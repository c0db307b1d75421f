/*
Package domain contains the core models of the Colloquy dialogue engine.

It defines the graph of dialogue beats, the closed set of node variants, the
instruction protocol nodes use to talk to the scheduler, and the narrow
collaborator interfaces (presentation, localization, event bus) that node
processing calls outward. This package is kept pure: it performs no I/O and
holds no execution state.

# Key Entities

  - Graph: the node collection, its start node and the id lookup index.
  - Node: one unit of dialogue behavior (Text, Choice, Condition, Sequence, Parallel, ...).
  - Instruction: a value yielded by node processing (jump, suspend, wait, end).
  - Condition / VariableChange: declarative reads and writes over dialogue variables.
  - LifecycleHooks: observability callbacks fired by the scheduler.
*/
package domain
