/*
Package ports defines the driven ports (interfaces) for the Colloquy engine.

These interfaces decouple the dialogue runtime from external implementations, allowing
graphs to come from various sources and profile saves to live in various backends.

# Key Interfaces

  - GraphLoader: Loads compiled dialogue graphs by id (e.g., from a directory or memory).
  - Watchable: Signals that the graph source changed, for hot reload.
  - SnapshotStore: Persists the global variables of player profiles.
  - DistributedLocker: Provides distributed locking for concurrent profile access.
  - Session: The external re-entry points of a running dialogue, as driven by remote hosts.
*/
package ports
