package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Loader implements ports.GraphLoader using an in-memory map.
// Safe for concurrent use.
type Loader struct {
	mu     sync.RWMutex
	graphs map[string]*domain.Graph
}

// NewLoader creates a loader serving the given graphs, keyed by their ids.
func NewLoader(graphs ...*domain.Graph) *Loader {
	l := &Loader{graphs: make(map[string]*domain.Graph)}
	for _, g := range graphs {
		l.Put(g)
	}
	return l
}

// NewFromDocuments compiles raw YAML/JSON documents into a loader.
// This improves DX for tests and embedded content.
func NewFromDocuments(docs ...string) (*Loader, error) {
	p := compiler.NewParser()
	l := NewLoader()
	for i, doc := range docs {
		g, err := p.Parse([]byte(doc))
		if err != nil {
			return nil, fmt.Errorf("document #%d: %w", i, err)
		}
		l.Put(g)
	}
	return l, nil
}

// Put adds or replaces a graph.
func (l *Loader) Put(g *domain.Graph) {
	g.BuildIndex()
	l.mu.Lock()
	defer l.mu.Unlock()
	l.graphs[g.ID] = g
}

// Load returns the graph with the given id.
func (l *Loader) Load(ctx context.Context, id string) (*domain.Graph, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	g, ok := l.graphs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGraphNotFound, id)
	}
	return g, nil
}

// List returns all available graph ids.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	keys := make([]string, 0, len(l.graphs))
	for k := range l.graphs {
		keys = append(keys, k)
	}
	sort.Strings(keys) // Deterministic order
	return keys, nil
}
