package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/colloquy/pkg/domain"
)

// LogHooks logs every lifecycle event at debug level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnDialogueStart: func(ctx context.Context, e *domain.DialogueEvent) {
			logger.DebugContext(ctx, "Dialogue Start", "graph_id", e.GraphID, "run_id", e.RunID)
		},
		OnDialogueEnd: func(ctx context.Context, e *domain.DialogueEvent) {
			logger.DebugContext(ctx, "Dialogue End", "graph_id", e.GraphID, "run_id", e.RunID, "reason", e.Reason)
		},
		OnNodeEnter: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "Enter Node", "node_id", e.NodeID, "kind", e.NodeKind, "branch", e.Branch)
		},
		OnNodeLeave: func(ctx context.Context, e *domain.NodeEvent) {
			logger.DebugContext(ctx, "Leave Node", "node_id", e.NodeID, "branch", e.Branch)
		},
		OnChoiceSelected: func(ctx context.Context, e *domain.ChoiceEvent) {
			logger.DebugContext(ctx, "Choice Selected", "node_id", e.NodeID, "option_id", e.OptionID, "target_id", e.TargetID)
		},
		OnInterrupt: func(ctx context.Context, e *domain.InterruptEvent) {
			logger.DebugContext(ctx, "Interrupt", "node_id", e.NodeID, "event_id", e.EventID, "target_id", e.TargetID)
		},
	}
}
