package graph

import "slices"

// ComputeExecutionOrder sorts nodes so that every link's origin comes before
// its target. With onlyExecutable set only nodes with a tick callback take
// part and links from other nodes are ignored.
//
// Nodes sitting on a cycle are never released by the sort; they are appended
// afterwards in insertion order. For them the order is best effort only.
// Every node's position is stamped on it.
func (g *Graph) ComputeExecutionOrder(onlyExecutable bool) []*Node {
	candidates := make([]*Node, 0, len(g.nodes))
	member := make(map[NodeID]bool, len(g.nodes))
	for _, n := range g.nodes {
		if onlyExecutable {
			if _, ok := n.behavior.(Executor); !ok {
				continue
			}
		}
		candidates = append(candidates, n)
		member[n.id] = true
	}

	remaining := make(map[NodeID]int, len(candidates))
	var ready []*Node
	for _, n := range candidates {
		count := 0
		for _, in := range n.inputs {
			if in.Link == nil {
				continue
			}
			if l := g.resolveLink(*in.Link); l != nil && member[l.OriginID] {
				count++
			}
		}
		if count == 0 {
			ready = append(ready, n)
			continue
		}
		remaining[n.id] = count
	}

	order := make([]*Node, 0, len(candidates))
	placed := make(map[NodeID]bool, len(candidates))
	visited := make(map[LinkID]bool)
	for len(ready) > 0 {
		n := ready[0]
		ready = ready[1:]
		order = append(order, n)
		placed[n.id] = true

		for _, out := range n.outputs {
			for _, id := range out.Links {
				if visited[id] {
					continue
				}
				visited[id] = true
				l := g.resolveLink(id)
				if l == nil || !member[l.TargetID] || placed[l.TargetID] {
					continue
				}
				// The target only counted links whose input still holds them.
				target := g.byID[l.TargetID]
				if in := target.Input(l.TargetSlot); in == nil || in.Link == nil || *in.Link != id {
					continue
				}
				remaining[l.TargetID]--
				if remaining[l.TargetID] == 0 {
					ready = append(ready, target)
				}
			}
		}
	}

	if len(order) < len(candidates) {
		for _, n := range candidates {
			if !placed[n.id] {
				order = append(order, n)
			}
		}
		g.logger.Debug("Execution order contains a cycle, appended remaining nodes.", "cyclic", len(candidates)-len(placed))
	}

	for i, n := range order {
		n.order = i
	}
	return order
}

// UpdateExecutionOrder recomputes the cached order and the executable
// sublist the scheduler walks on every step.
func (g *Graph) UpdateExecutionOrder() {
	g.order = g.ComputeExecutionOrder(false)
	g.executable = g.executable[:0:0]
	for _, n := range g.order {
		if _, ok := n.behavior.(Executor); ok {
			g.executable = append(g.executable, n)
		}
	}
}

// Order returns the cached execution order.
func (g *Graph) Order() []*Node {
	return slices.Clone(g.order)
}
