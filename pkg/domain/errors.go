package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNilGraph is returned by Start when no graph is given.
	ErrNilGraph = errors.New("graph is nil")

	// ErrNoStartNode is returned by Start when the graph has no start node configured.
	ErrNoStartNode = errors.New("graph has no start node configured")

	// ErrAlreadyRunning is returned by Start while a run is in progress.
	ErrAlreadyRunning = errors.New("dialogue already running")

	// ErrNotRunning is returned by external calls made outside a run.
	ErrNotRunning = errors.New("dialogue not running")

	// ErrNotAwaitingChoice is returned by SelectChoice when no choice is pending.
	ErrNotAwaitingChoice = errors.New("dialogue is not waiting for a choice")

	// ErrInvalidChoice is returned by SelectChoice for an option that is not on offer.
	ErrInvalidChoice = errors.New("choice is not available")

	// ErrNodeNotFound marks a link to a node id that does not exist.
	ErrNodeNotFound = errors.New("node not found")

	// ErrGraphNotFound is returned by loaders for unknown graph ids.
	ErrGraphNotFound = errors.New("graph not found")

	// ErrProfileNotFound is returned when a profile id cannot be found in the store.
	ErrProfileNotFound = errors.New("profile not found")
)

// MissingNodeError reports a link that does not resolve.
type MissingNodeError struct {
	NodeID string
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("node '%s' not found", e.NodeID)
}

func (e *MissingNodeError) Unwrap() error { return ErrNodeNotFound }

// SkipLimitError aborts a run whose chain of disabled nodes exceeds the safety bound.
type SkipLimitError struct {
	StartID string
	Limit   int
}

func (e *SkipLimitError) Error() string {
	return fmt.Sprintf("skipping disabled nodes from '%s' exceeded %d hops", e.StartID, e.Limit)
}

// MalformedNodeError reports a branch node whose resolved target is unusable.
type MalformedNodeError struct {
	NodeID string
	Reason string
}

func (e *MalformedNodeError) Error() string {
	return fmt.Sprintf("node '%s' is malformed: %s", e.NodeID, e.Reason)
}
