package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/aretw0/colloquy/pkg/adapters/file"
	"github.com/aretw0/colloquy/pkg/domain"
	contract "github.com/aretw0/colloquy/pkg/ports/tests"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestStore_Contract(t *testing.T) {
	contract.SnapshotStoreContractTest(t, file.NewStore(t.TempDir()))
}

func TestStore_RejectsPathTraversal(t *testing.T) {
	store := file.NewStore(t.TempDir())
	err := store.Save(context.Background(), "../escape", domain.NewSaveData("x", domain.VariableSnapshot{}))
	assert.Error(t, err)
	_, err = store.Load(context.Background(), "")
	assert.Error(t, err)
}

func TestStore_ListSkipsTempFiles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "tmp-ada-123.json"), "{}")
	writeFile(t, filepath.Join(dir, "notes.txt"), "")

	profiles, err := file.NewStore(dir).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}

func TestLoader_Contract(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "intro.yaml"), "id: intro\nnodes:\n  - {id: hello, text: Hi}\n")
	writeFile(t, filepath.Join(dir, "act1", "tavern.json"), `{"id": "act1/tavern", "start": "door", "nodes": [{"id": "door", "type": "end"}]}`)
	writeFile(t, filepath.Join(dir, "README.md"), "# not a graph")

	contract.GraphLoaderContractTest(t, file.NewLoader(dir), map[string]string{
		"intro":       "hello",
		"act1/tavern": "door",
	})
}

func TestLoader_IDMismatch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "intro.yaml"), "id: other\nnodes: []\n")

	_, err := file.NewLoader(dir).Load(context.Background(), "intro")
	assert.ErrorIs(t, err, compiler.ErrInvalidDocument)
}

func TestLoader_RejectsTraversal(t *testing.T) {
	_, err := file.NewLoader(t.TempDir()).Load(context.Background(), "../etc/passwd")
	assert.ErrorIs(t, err, domain.ErrGraphNotFound)
}

func TestLoader_MissingRoot(t *testing.T) {
	ids, err := file.NewLoader(filepath.Join(t.TempDir(), "nope")).List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestLoader_Watch(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "intro.yaml"), "id: intro\nnodes: []\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes, err := file.NewLoader(dir).Watch(ctx)
	require.NoError(t, err)

	writeFile(t, filepath.Join(dir, "intro.yaml"), "id: intro\nnodes:\n  - {id: a, text: changed}\n")

	select {
	case id := <-changes:
		assert.Equal(t, "intro", id)
	case <-time.After(2 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	require.Eventually(t, func() bool {
		select {
		case _, ok := <-changes:
			return !ok
		default:
			return false
		}
	}, 2*time.Second, 10*time.Millisecond, "channel closes after cancel")
}
