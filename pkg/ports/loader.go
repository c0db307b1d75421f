package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// GraphLoader defines how the engine retrieves dialogue graphs.
// This allows the storage layer (FS, Memory) to be decoupled.
type GraphLoader interface {
	// Load returns the compiled graph with the given id, with its index built.
	// Returns domain.ErrGraphNotFound if the id is unknown.
	Load(ctx context.Context, id string) (*domain.Graph, error)

	// List returns the ids of every available graph, sorted.
	// This is used for introspection and tooling (e.g. 'colloquy validate').
	List(ctx context.Context) ([]string, error)
}

// Watchable defines an interface for loaders that can notify about backend changes.
// This is typically used for hot-reload or dev-mode functionality.
type Watchable interface {
	// Watch returns a channel that receives the id of every graph whose source changed.
	// It abstracts away the specific event details, signaling only that a reload is required.
	// The channel is closed when ctx is done.
	Watch(ctx context.Context) (<-chan string, error)
}
