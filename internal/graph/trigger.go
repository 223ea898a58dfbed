package graph

import (
	"fmt"
	"slices"
)

// Trigger fires the event outputs of n named action, or all of them when
// action is empty. Delivery is synchronous and depth-first: every target's
// action handler runs, or its tick callback when it is in ModeOnTrigger,
// before Trigger returns.
//
// Chains deeper than Config.MaxTriggerDepth are cut with
// ErrTriggerDepthExceeded.
func (n *Node) Trigger(action string, param any) error {
	g := n.graph
	if g == nil {
		return nil
	}
	if g.triggerDepth >= g.config.MaxTriggerDepth {
		g.logger.Warn("Trigger depth exceeded, dropping event.", "node", n.String(), "action", action, "depth", g.triggerDepth)
		return fmt.Errorf("%w: %s at depth %d", ErrTriggerDepthExceeded, n, g.triggerDepth)
	}
	g.triggerDepth++
	defer func() { g.triggerDepth-- }()

	for _, out := range slices.Clone(n.outputs) {
		if !out.IsEvent() || (action != "" && out.Name != action) {
			continue
		}
		if err := g.fire(out, param); err != nil {
			return err
		}
	}
	return nil
}

// TriggerSlot fires a single output by index, optionally only along the link
// with id only.
func (n *Node) TriggerSlot(slot int, param any, only *LinkID) error {
	g := n.graph
	out := n.Output(slot)
	if g == nil || out == nil {
		return nil
	}
	if g.triggerDepth >= g.config.MaxTriggerDepth {
		g.logger.Warn("Trigger depth exceeded, dropping event.", "node", n.String(), "slot", slot, "depth", g.triggerDepth)
		return fmt.Errorf("%w: %s at depth %d", ErrTriggerDepthExceeded, n, g.triggerDepth)
	}
	g.triggerDepth++
	defer func() { g.triggerDepth-- }()

	if only == nil {
		return g.fire(out, param)
	}
	if !slices.Contains(out.Links, *only) {
		return nil
	}
	return g.deliver(*only, param)
}

// fire walks a snapshot of the output's links; callbacks may rewire it.
func (g *Graph) fire(out *Slot, param any) error {
	for _, id := range slices.Clone(out.Links) {
		if err := g.deliver(id, param); err != nil {
			return err
		}
	}
	return nil
}

func (g *Graph) deliver(id LinkID, param any) error {
	l := g.resolveLink(id)
	if l == nil {
		return nil
	}
	target := g.byID[l.TargetID]
	in := target.Input(l.TargetSlot)
	if in == nil {
		return nil
	}
	l.LastFired = g.now()
	g.metrics.trigger()

	if h, ok := target.behavior.(ActionHandler); ok {
		if err := h.OnAction(target, in.Name, param); err != nil {
			return executionError(target, err)
		}
		return nil
	}
	if target.Mode != ModeOnTrigger {
		return nil
	}
	if ex, ok := target.behavior.(Executor); ok {
		if err := ex.OnExecute(target, param); err != nil {
			return executionError(target, err)
		}
	}
	return nil
}
