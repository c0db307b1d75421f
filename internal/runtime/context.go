package runtime

import (
	"context"
	"log/slog"

	"github.com/aretw0/colloquy/pkg/domain"
)

// nodeContext is the domain.ProcessContext handed to one node's processing.
// Branch contexts (branch != domain.MainBranch) ignore PushReturn and OfferChoices.
type nodeContext struct {
	c       *Controller
	ctx     context.Context
	node    domain.Node
	branch  int
	logger  *slog.Logger
	offered []domain.PresentedChoice
}

func (c *Controller) newNodeContext(ctx context.Context, node domain.Node, branch int) *nodeContext {
	logger := c.logger
	if branch != domain.MainBranch {
		logger = logger.With("branch", branch)
	}
	return &nodeContext{c: c, ctx: ctx, node: node, branch: branch, logger: logger}
}

func (n *nodeContext) Variables() domain.Variables { return n.c.vars }
func (n *nodeContext) Collaborators() domain.Collaborators { return n.c.collab }
func (n *nodeContext) Logger() *slog.Logger { return n.logger }

func (n *nodeContext) AutoAdvance() domain.AutoAdvance {
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	if n.c.graph == nil {
		return domain.AutoAdvance{}
	}
	return n.c.graph.AutoAdvance
}

func (n *nodeContext) PushReturn(nodeID string) {
	if n.branch != domain.MainBranch {
		n.logger.Debug("return address ignored inside parallel branch", "node_id", n.node.ID())
		return
	}
	n.c.mu.Lock()
	defer n.c.mu.Unlock()
	if n.ctx.Err() != nil {
		return
	}
	n.c.stack = append(n.c.stack, nodeID)
}

func (n *nodeContext) OfferChoices(choices []domain.PresentedChoice) {
	if n.branch != domain.MainBranch {
		n.logger.Debug("choices ignored inside parallel branch", "node_id", n.node.ID())
		return
	}
	n.offered = choices
}
