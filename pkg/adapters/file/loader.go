package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/fsnotify/fsnotify"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Loader implements ports.GraphLoader and ports.Watchable over a directory tree
// of graph documents. A graph's id is its path relative to the root, without
// extension and with forward slashes (e.g. "act1/tavern"), and must match the
// id declared inside the document.
type Loader struct {
	Root   string
	parser *compiler.Parser
	logger *slog.Logger
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

// WithLoaderLogger sets the logger used by the watcher.
func WithLoaderLogger(l *slog.Logger) LoaderOption {
	return func(ld *Loader) {
		ld.logger = l
	}
}

// NewLoader creates a loader rooted at dir.
func NewLoader(dir string, opts ...LoaderOption) *Loader {
	l := &Loader{Root: dir, parser: compiler.NewParser(), logger: logging.NewNop()}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load reads and compiles the graph with the given id. Files are read on every
// call, so edits are picked up without restarting.
func (l *Loader) Load(ctx context.Context, id string) (*domain.Graph, error) {
	path, err := l.find(id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}
	g, err := l.parser.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if g.ID != id {
		return nil, fmt.Errorf("%s: declares id '%s' but its path implies '%s': %w", path, g.ID, id, compiler.ErrInvalidDocument)
	}
	return g, nil
}

func (l *Loader) find(id string) (string, error) {
	if id == "" || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: %q", domain.ErrGraphNotFound, id)
	}
	base := filepath.Join(l.Root, filepath.FromSlash(id))
	for _, ext := range extensions {
		if _, err := os.Stat(base + ext); err == nil {
			return base + ext, nil
		}
	}
	return "", fmt.Errorf("%w: %s", domain.ErrGraphNotFound, id)
}

// List returns the ids of every graph document under the root.
func (l *Loader) List(ctx context.Context) ([]string, error) {
	var ids []string
	err := filepath.WalkDir(l.Root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if id, ok := l.idOf(path); ok {
			ids = append(ids, id)
		}
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list graphs: %w", err)
	}
	sort.Strings(ids)
	return ids, nil
}

// idOf maps a file path under the root to a graph id.
func (l *Loader) idOf(path string) (string, bool) {
	ext := filepath.Ext(path)
	known := false
	for _, e := range extensions {
		if ext == e {
			known = true
		}
	}
	if !known {
		return "", false
	}
	rel, err := filepath.Rel(l.Root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", false
	}
	return filepath.ToSlash(strings.TrimSuffix(rel, ext)), true
}

// Watch implements ports.Watchable using fsnotify. Every directory under the
// root is watched, including ones created later.
func (l *Loader) Watch(ctx context.Context) (<-chan string, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to start watcher: %w", err)
	}
	if err := l.addTree(w, l.Root); err != nil {
		_ = w.Close()
		return nil, err
	}

	ch := make(chan string, 1)

	go func() {
		defer close(ch)
		defer w.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				l.logger.Warn("graph watcher error", "err", err)
			case evt, ok := <-w.Events:
				if !ok {
					return
				}
				if evt.Has(fsnotify.Create) {
					if info, err := os.Stat(evt.Name); err == nil && info.IsDir() {
						if err := l.addTree(w, evt.Name); err != nil {
							l.logger.Warn("failed to watch new directory", "dir", evt.Name, "err", err)
						}
						continue
					}
				}
				if evt.Op == fsnotify.Chmod {
					continue
				}
				id, ok := l.idOf(evt.Name)
				if !ok {
					continue
				}
				l.logger.Debug("graph changed", "graph_id", id, "op", evt.Op.String())
				select {
				case ch <- id:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}

func (l *Loader) addTree(w *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if err := w.Add(path); err != nil {
				return fmt.Errorf("failed to watch %s: %w", path, err)
			}
		}
		return nil
	})
}
