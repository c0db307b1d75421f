package memory_test

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/memory"
	contract "github.com/aretw0/colloquy/pkg/ports/tests"
	"github.com/stretchr/testify/require"
)

func TestLoader_Contract(t *testing.T) {
	loader, err := memory.NewFromDocuments(
		"id: intro\nnodes:\n  - {id: hello, text: Hi}\n",
		`{"id": "outro", "start": "bye", "nodes": [{"id": "bye", "type": "end"}]}`,
	)
	require.NoError(t, err)

	contract.GraphLoaderContractTest(t, loader, map[string]string{
		"intro": "hello",
		"outro": "bye",
	})
}

func TestLoader_BadDocument(t *testing.T) {
	_, err := memory.NewFromDocuments("nodes: []")
	require.Error(t, err)
}

func TestStore_Contract(t *testing.T) {
	contract.SnapshotStoreContractTest(t, memory.NewStore())
}
