// Package tests holds reusable contract suites for port implementations.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GraphLoaderContractTest is a reusable test suite that verifies if an adapter complies with ports.GraphLoader.
// want maps every graph id the loader should serve to its start node id.
func GraphLoaderContractTest(t *testing.T, loader ports.GraphLoader, want map[string]string) {
	t.Helper()
	ctx := context.Background()

	t.Run("Load_Success", func(t *testing.T) {
		for id, start := range want {
			g, err := loader.Load(ctx, id)
			require.NoError(t, err, "loading %s", id)
			assert.Equal(t, id, g.ID)
			assert.Equal(t, start, g.StartNodeID)
			assert.True(t, g.HasNode(start), "start node of %s must be indexed", id)
		}
	})

	t.Run("Load_NotFound", func(t *testing.T) {
		_, err := loader.Load(ctx, "non-existent-graph")
		assert.ErrorIs(t, err, domain.ErrGraphNotFound)
	})

	t.Run("List", func(t *testing.T) {
		ids, err := loader.List(ctx)
		require.NoError(t, err)
		assert.Len(t, ids, len(want))
		assert.IsNonDecreasing(t, ids)
		for id := range want {
			assert.Contains(t, ids, id)
		}
	})
}

// SnapshotStoreContractTest runs a suite of tests to verify that a SnapshotStore implementation
// adheres to the defined interface contract.
func SnapshotStoreContractTest(t *testing.T, store ports.SnapshotStore) {
	t.Helper()
	ctx := context.Background()
	profile := "contract-test-profile-" + time.Now().Format("20060102150405")

	globals := domain.VariableSnapshot{
		Ints:    []domain.IntEntry{{Key: "gold", Value: 42}},
		Bools:   []domain.BoolEntry{{Key: "met_keeper", Value: true}},
		Strings: []domain.StringEntry{{Key: "name", Value: "Ada"}},
	}

	t.Run("Save and Load", func(t *testing.T) {
		err := store.Save(ctx, profile, domain.NewSaveData(profile, globals))
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, profile, loaded.Profile)
		assert.Equal(t, globals, loaded.Globals, "typed values must survive the round trip")
		assert.False(t, loaded.UpdatedAt.IsZero())
	})

	t.Run("Isolation", func(t *testing.T) {
		data := domain.NewSaveData(profile, globals)
		require.NoError(t, store.Save(ctx, profile, data))
		data.Globals.Ints[0].Value = -1

		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, 42, loaded.Globals.Ints[0].Value, "stores must not alias caller memory")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+profile)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, profile, domain.NewSaveData(profile, globals)))

		err := store.Delete(ctx, profile)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, profile)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound, "Load after Delete should return ErrProfileNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := profile + "-1"
		id2 := profile + "-2"
		_ = store.Save(ctx, id1, domain.NewSaveData(id1, globals))
		_ = store.Save(ctx, id2, domain.NewSaveData(id2, globals))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		profiles, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, profiles, id1)
		assert.Contains(t, profiles, id2)
	})
}
