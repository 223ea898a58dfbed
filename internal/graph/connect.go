package graph

import (
	"fmt"
	"slices"
)

// Connect links an output of n to an input of target. A link already held
// by the input is disconnected first. Rejections are returned as errors
// matching ErrNotFound or ErrInvalidOperation and leave no link behind.
func (n *Node) Connect(out SlotRef, target *Node, in SlotRef) (*Link, error) {
	g := n.graph
	if g == nil {
		return nil, ErrDetached
	}
	outIdx, err := resolveSlot(n.outputs, out)
	if err != nil {
		return nil, fmt.Errorf("output of %s: %w", n, err)
	}
	if target == nil {
		return nil, fmt.Errorf("%w: connect target is nil", ErrNodeNotFound)
	}
	if target == n {
		return nil, ErrSelfLoop
	}
	if target.graph == nil {
		return nil, fmt.Errorf("target %s: %w", target, ErrDetached)
	}
	if target.graph != g {
		return nil, ErrForeignNode
	}
	inIdx, err := resolveSlot(target.inputs, in)
	if err != nil {
		return nil, fmt.Errorf("input of %s: %w", target, err)
	}

	output := n.outputs[outIdx]
	input := target.inputs[inIdx]
	if !IsValidConnection(output.Type, input.Type) {
		return nil, fmt.Errorf("%w: %s(%q) -> %s(%q)", ErrIncompatibleTypes, n, output.Type, target, input.Type)
	}

	if input.Link != nil {
		if err := target.DisconnectInput(At(inIdx)); err != nil {
			return nil, err
		}
	}

	// The previous occupant stays disconnected when the target vetoes.
	if v, ok := target.behavior.(InputConnectVetoer); ok {
		if !v.OnConnectInput(target, inIdx, output.Type, n, outIdx) {
			return nil, ErrConnectionVetoed
		}
	}

	g.lastLinkID++
	link := &Link{
		ID:         g.lastLinkID,
		Type:       input.Type,
		OriginID:   n.id,
		OriginSlot: outIdx,
		TargetID:   target.id,
		TargetSlot: inIdx,
	}
	g.links[link.ID] = link
	output.Links = append(output.Links, link.ID)
	id := link.ID
	input.Link = &id

	if h, ok := n.behavior.(ConnectionsChangeHandler); ok {
		h.OnConnectionsChange(n, Output, outIdx, true, link)
	}
	if h, ok := target.behavior.(ConnectionsChangeHandler); ok {
		h.OnConnectionsChange(target, Input, inIdx, true, link)
	}
	g.logger.Debug("Nodes connected.", "link", link.String())
	g.connectionChange(n)
	return link, nil
}

// DisconnectInput removes the link held by an input. Disconnecting an empty
// input is not an error.
func (n *Node) DisconnectInput(in SlotRef) error {
	idx, err := resolveSlot(n.inputs, in)
	if err != nil {
		return fmt.Errorf("input of %s: %w", n, err)
	}
	input := n.inputs[idx]
	if input.Link == nil {
		return nil
	}
	id := *input.Link
	input.Link = nil

	g := n.graph
	if g == nil {
		return nil
	}
	link := g.links[id]
	if link == nil {
		return nil
	}
	delete(g.links, id)

	origin := g.byID[link.OriginID]
	if origin != nil {
		if out := origin.Output(link.OriginSlot); out != nil {
			out.Links = slices.DeleteFunc(out.Links, func(l LinkID) bool { return l == id })
		}
		if h, ok := origin.behavior.(ConnectionsChangeHandler); ok {
			h.OnConnectionsChange(origin, Output, link.OriginSlot, false, link)
		}
	}
	if h, ok := n.behavior.(ConnectionsChangeHandler); ok {
		h.OnConnectionsChange(n, Input, idx, false, link)
	}
	g.logger.Debug("Input disconnected.", "link", link.String())
	g.connectionChange(n)
	return nil
}

// DisconnectOutput severs links leaving an output. With a non-nil target
// only the first link to that target is removed, otherwise all of them.
func (n *Node) DisconnectOutput(out SlotRef, target *Node) error {
	idx, err := resolveSlot(n.outputs, out)
	if err != nil {
		return fmt.Errorf("output of %s: %w", n, err)
	}
	g := n.graph
	output := n.outputs[idx]
	if g == nil {
		output.Links = nil
		return nil
	}

	// Hooks may mutate output.Links, walk a copy.
	ids := slices.Clone(output.Links)
	changed := false
	for _, id := range ids {
		link := g.links[id]
		if link == nil {
			output.Links = slices.DeleteFunc(output.Links, func(l LinkID) bool { return l == id })
			continue
		}
		if target != nil && link.TargetID != target.id {
			continue
		}

		delete(g.links, id)
		output.Links = slices.DeleteFunc(output.Links, func(l LinkID) bool { return l == id })
		changed = true

		if dst := g.byID[link.TargetID]; dst != nil {
			if in := dst.Input(link.TargetSlot); in != nil && in.Link != nil && *in.Link == id {
				in.Link = nil
			}
			if h, ok := dst.behavior.(ConnectionsChangeHandler); ok {
				h.OnConnectionsChange(dst, Input, link.TargetSlot, false, link)
			}
		}
		if h, ok := n.behavior.(ConnectionsChangeHandler); ok {
			h.OnConnectionsChange(n, Output, idx, false, link)
		}
		g.logger.Debug("Output disconnected.", "link", link.String())

		if target != nil {
			break
		}
	}
	if changed {
		g.connectionChange(n)
	}
	return nil
}
