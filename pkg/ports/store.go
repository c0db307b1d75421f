package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// SnapshotStore defines the interface for persisting profile saves.
// This is what keeps global variables alive across runs and process restarts.
type SnapshotStore interface {
	// Save persists the save data for a given profile.
	Save(ctx context.Context, profile string, data *domain.SaveData) error

	// Load retrieves the save data for a given profile.
	// Returns domain.ErrProfileNotFound if the profile does not exist.
	Load(ctx context.Context, profile string) (*domain.SaveData, error)

	// Delete removes the save data for a given profile.
	Delete(ctx context.Context, profile string) error

	// List returns the ids of every stored profile.
	List(ctx context.Context) ([]string, error)
}
