package cli

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy"
)

// settleDelay lets editors finish writing before the graph is parsed again.
const settleDelay = 100 * time.Millisecond

// watchGraphs reloads the running graph whenever its document changes, until
// ctx is done. A broken edit keeps the previous graph active.
func watchGraphs(ctx context.Context, engine *colloquy.Engine, logger *slog.Logger) error {
	changes, err := engine.Watch(ctx)
	if err != nil {
		return err
	}

	go func() {
		for id := range changes {
			current := engine.Graph()
			if current == nil || current.ID != id {
				logger.Debug("ignoring change", "graph_id", id)
				continue
			}

			select {
			case <-ctx.Done():
				return
			case <-time.After(settleDelay):
			}

			printSystemMessage("Change detected in '%s'.", id)
			if err := engine.Reload(ctx); err != nil {
				logger.Error("reload failed, keeping previous graph", "graph_id", id, "err", err)
				printSystemMessage("Reload failed: %v", err)
				continue
			}
			if node := engine.CurrentNodeID(); node != "" {
				printSystemMessage("Reloaded, resuming at '%s' node.", node)
			}
		}
	}()
	return nil
}
