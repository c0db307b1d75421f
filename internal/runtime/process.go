package runtime

import (
	"context"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
)

// process interprets the instruction stream of a top-level node.
// Every state change is made under mu and only while ctx is live, so a
// cancelled node can never act on the run after it has been left.
func (c *Controller) process(ctx context.Context, node domain.Node) {
	pc := c.newNodeContext(ctx, node, domain.MainBranch)

	for ins := range node.Process(pc) {
		switch ins.Kind {
		case domain.InstrAdvanceTo:
			c.mu.Lock()
			if ctx.Err() == nil {
				c.advanceLocked(ins.Target)
			}
			c.mu.Unlock()
			return

		case domain.InstrWaitForInput:
			s := Suspension{Kind: SuspendInput, NodeID: node.ID()}
			if in, ok := node.(domain.Interruptible); ok {
				s.InterruptEventID, _, s.Interruptible = in.InterruptTarget()
			}
			c.suspend(ctx, s)
			return

		case domain.InstrWaitForChoice:
			c.suspend(ctx, Suspension{Kind: SuspendChoice, NodeID: node.ID(), Choices: pc.offered})
			return

		case domain.InstrWaitFor:
			if !sleep(ctx, ins.Duration) {
				return
			}

		case domain.InstrEndDialogue:
			c.mu.Lock()
			if ctx.Err() == nil {
				c.endLocked(ins.Err)
			}
			c.mu.Unlock()
			return

		case domain.InstrAwait:
			if ins.Await == nil {
				continue
			}
			if err := ins.Await(ctx); err != nil {
				if ctx.Err() != nil {
					return
				}
				pc.Logger().Warn("awaited collaborator call failed", "node_id", node.ID(), "err", err)
			}

		case domain.InstrWaitForAll:
			if err := c.join(ctx, node, ins.Join); err != nil {
				return
			}

		default:
			pc.Logger().Warn("unknown instruction ignored", "node_id", node.ID(), "instruction", ins.Kind.String())
		}

		if ctx.Err() != nil {
			return
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if ctx.Err() == nil {
		c.advanceLocked(node.NextNodeID())
	}
}

// sleep waits for d and reports false if ctx was cancelled first.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
