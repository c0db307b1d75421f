package runtime

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
	"golang.org/x/sync/errgroup"
)

// join runs one branch runner per start id and waits for all of them.
// It returns a non-nil error only when ctx was cancelled.
func (c *Controller) join(ctx context.Context, parent domain.Node, j *domain.Join) error {
	if j == nil || len(j.BranchStartIDs) == 0 {
		return nil
	}

	c.logger.Debug("forking parallel branches", "node_id", parent.ID(), "branches", len(j.BranchStartIDs))

	g, gctx := errgroup.WithContext(ctx)
	for i, id := range j.BranchStartIDs {
		g.Go(func() error {
			return c.runBranch(gctx, i, id, j)
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	c.logger.Debug("parallel branches joined",
		"node_id", parent.ID(),
		"completed", j.Completed(),
		"input_requested", j.InputRequested())
	return ctx.Err()
}

// runBranch walks a branch chain from startID until it runs out of next ids.
// Branches have no return-address stack and cannot redirect the main run:
// AdvanceTo and EndDialogue terminate the branch, input waits are recorded on j.
func (c *Controller) runBranch(ctx context.Context, branch int, startID string, j *domain.Join) error {
	id := startID
	for {
		node, err := c.resolveBranch(id)
		if err != nil {
			c.logger.Warn("parallel branch stopped", "branch", branch, "err", err)
			return nil
		}
		if node == nil {
			j.MarkCompleted()
			return nil
		}

		c.mu.Lock()
		if ctx.Err() != nil {
			c.mu.Unlock()
			return ctx.Err()
		}
		c.vars.ApplyAll(node.Changes())
		c.emitNodeEnter(node, branch)
		c.mu.Unlock()

		next, cont, err := c.processBranchNode(ctx, node, branch, j)

		c.mu.Lock()
		if ctx.Err() == nil {
			c.emitNodeLeave(node, branch)
		}
		c.mu.Unlock()

		if err != nil {
			return err
		}
		if !cont {
			return nil
		}
		id = next
	}
}

func (c *Controller) resolveBranch(target string) (domain.Node, error) {
	c.mu.Lock()
	g := c.graph
	c.mu.Unlock()

	id := target
	for hops := 0; id != ""; {
		node, ok := g.GetNode(id)
		if !ok {
			return nil, &domain.MissingNodeError{NodeID: id}
		}
		if node.Enabled() {
			return node, nil
		}
		hops++
		if hops > c.maxSkip {
			return nil, &domain.SkipLimitError{StartID: target, Limit: c.maxSkip}
		}
		id = node.NextNodeID()
	}
	return nil, nil
}

func (c *Controller) processBranchNode(ctx context.Context, node domain.Node, branch int, j *domain.Join) (next string, cont bool, err error) {
	pc := c.newNodeContext(ctx, node, branch)

	for ins := range node.Process(pc) {
		switch ins.Kind {
		case domain.InstrAdvanceTo, domain.InstrEndDialogue:
			pc.Logger().Warn("flow control inside parallel branch swallowed, branch terminates",
				"node_id", node.ID(),
				"instruction", ins.Kind.String(),
				"target", ins.Target)
			return "", false, nil

		case domain.InstrWaitForInput, domain.InstrWaitForChoice:
			j.RequestInput()

		case domain.InstrWaitFor:
			if !sleep(ctx, ins.Duration) {
				return "", false, ctx.Err()
			}

		case domain.InstrAwait:
			if ins.Await == nil {
				continue
			}
			if aerr := ins.Await(ctx); aerr != nil {
				if ctx.Err() != nil {
					return "", false, ctx.Err()
				}
				pc.Logger().Warn("awaited collaborator call failed", "node_id", node.ID(), "err", aerr)
			}

		case domain.InstrWaitForAll:
			if jerr := c.join(ctx, node, ins.Join); jerr != nil {
				return "", false, jerr
			}
		}

		if ctx.Err() != nil {
			return "", false, ctx.Err()
		}
	}
	return node.NextNodeID(), true, nil
}
