package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aretw0/colloquy/internal/presentation/graph"
	"github.com/aretw0/colloquy/internal/validator"
)

// Validate checks the given graphs, or every graph of the project when ids is
// empty. Warnings are written to w; errors are returned joined.
func Validate(ctx context.Context, dir string, ids []string, w io.Writer) error {
	proj, err := OpenProject(dir, false)
	if err != nil {
		return err
	}
	defer proj.Close()

	if len(ids) == 0 {
		if ids, err = proj.Loader.List(ctx); err != nil {
			return err
		}
		if len(ids) == 0 {
			return fmt.Errorf("no graphs found in %s", proj.Config.GraphsDir())
		}
	}

	var errs []error
	for _, id := range ids {
		g, err := proj.Loader.Load(ctx, id)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		report := validator.Validate(g)
		for _, issue := range report.Warnings() {
			fmt.Fprintf(w, "warning: %s: %s\n", id, issue)
		}
		if err := report.Err(); err != nil {
			errs = append(errs, fmt.Errorf("graph '%s': %w", id, err))
			continue
		}
		fmt.Fprintf(w, "%s: ok\n", id)
	}
	return errors.Join(errs...)
}

// Graph writes the Mermaid flowchart of a graph to w.
func Graph(ctx context.Context, dir, id string, w io.Writer) error {
	proj, err := OpenProject(dir, false)
	if err != nil {
		return err
	}
	defer proj.Close()

	g, err := proj.Loader.Load(ctx, proj.Entry(id))
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, graph.GenerateMermaid(g, nil))
	return err
}
