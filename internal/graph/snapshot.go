package graph

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Snapshot is the persisted form of a graph. It is plain JSON without a
// version marker; absent fields keep their current or default values on
// load.
type Snapshot struct {
	Iteration     int64             `json:"iteration"`
	Frame         int64             `json:"frame"`
	LastNodeID    NodeID            `json:"last_node_id"`
	LastLinkID    LinkID            `json:"last_link_id"`
	Links         []LinkTuple       `json:"links"`
	Config        *Config           `json:"config,omitempty"`
	Nodes         []NodeSnapshot    `json:"nodes"`
	GlobalInputs  map[string]Global `json:"global_inputs,omitempty"`
	GlobalOutputs map[string]Global `json:"global_outputs,omitempty"`
}

// NodeSnapshot is the persisted form of a node. Pointer and nil-able fields
// are optional.
type NodeSnapshot struct {
	ID         NodeID          `json:"id"`
	Type       string          `json:"type"`
	Title      *string         `json:"title,omitempty"`
	Pos        *Vec2           `json:"pos,omitempty"`
	Size       *Vec2           `json:"size,omitempty"`
	Mode       *Mode           `json:"mode,omitempty"`
	Flags      map[string]bool `json:"flags,omitempty"`
	Properties map[string]any  `json:"properties,omitempty"`
	Inputs     []SlotSnapshot  `json:"inputs,omitempty"`
	Outputs    []SlotSnapshot  `json:"outputs,omitempty"`
	// Extra is owned by the node's SerializeHook and ConfigureHook.
	Extra map[string]any `json:"extra,omitempty"`
}

// SlotSnapshot is the persisted form of a slot, without the payload cache.
type SlotSnapshot struct {
	Name  string         `json:"name"`
	Type  string         `json:"type"`
	Label string         `json:"label,omitempty"`
	Link  *LinkRef       `json:"link,omitempty"`
	Links []LinkRef      `json:"links,omitempty"`
	Extra map[string]any `json:"extra,omitempty"`
}

// --- Node ---

// Serialize captures the node as a snapshot. Flags and properties are
// deep-copied.
func (n *Node) Serialize() NodeSnapshot {
	title, pos, size, mode := n.Title, n.Pos, n.Size, n.Mode
	s := NodeSnapshot{
		ID:         n.id,
		Type:       n.typ,
		Title:      &title,
		Pos:        &pos,
		Size:       &size,
		Mode:       &mode,
		Properties: cloneMap(n.properties),
		Inputs:     snapshotSlots(n.inputs),
		Outputs:    snapshotSlots(n.outputs),
	}
	if len(n.flags) > 0 {
		s.Flags = n.Flags()
	}
	if h, ok := n.behavior.(SerializeHook); ok {
		h.OnSerialize(n, &s)
	}
	return s
}

func snapshotSlots(slots []*Slot) []SlotSnapshot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]SlotSnapshot, len(slots))
	for i, s := range slots {
		ss := SlotSnapshot{Name: s.Name, Type: s.Type, Label: s.Label, Extra: cloneMap(s.Extra)}
		if s.Link != nil {
			ss.Link = &LinkRef{ID: *s.Link}
		}
		for _, id := range s.Links {
			ss.Links = append(ss.Links, LinkRef{ID: id})
		}
		out[i] = ss
	}
	return out
}

// Configure loads a snapshot into the node. Present scalars overwrite,
// flags are replaced by a copy and properties are merged one key at a time
// through SetProperty. Slots present in the snapshot replace the current
// ones; tuple-encoded link references are reduced to ids and their link
// records synthesized when the graph lacks them.
func (n *Node) Configure(s NodeSnapshot) {
	if n.graph == nil && s.ID > 0 {
		n.id = s.ID
	}
	if s.Title != nil {
		n.Title = *s.Title
	}
	if s.Pos != nil {
		n.Pos = *s.Pos
	}
	if s.Mode != nil {
		n.Mode = *s.Mode
	}
	if s.Flags != nil {
		n.flags = make(map[string]bool, len(s.Flags))
		for k, v := range s.Flags {
			n.SetFlag(k, v)
		}
	}
	if s.Properties != nil {
		keys := make([]string, 0, len(s.Properties))
		for k := range s.Properties {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			n.SetProperty(k, cloneValue(s.Properties[k]))
		}
	}
	if s.Inputs != nil {
		n.inputs = n.restoreSlots(s.Inputs)
	}
	if s.Outputs != nil {
		n.outputs = n.restoreSlots(s.Outputs)
	}
	if s.Size != nil {
		n.Size = *s.Size
	} else if s.Inputs != nil || s.Outputs != nil {
		n.Size = n.ComputeSize()
	}

	if h, ok := n.behavior.(ConnectionsChangeHandler); ok && n.graph != nil {
		for i, in := range n.inputs {
			if in.Link == nil {
				continue
			}
			if l := n.graph.links[*in.Link]; l != nil {
				h.OnConnectionsChange(n, Input, i, true, l)
			}
		}
		for i, out := range n.outputs {
			for _, id := range out.Links {
				if l := n.graph.links[id]; l != nil {
					h.OnConnectionsChange(n, Output, i, true, l)
				}
			}
		}
	}
	if h, ok := n.behavior.(ConfigureHook); ok {
		h.OnConfigure(n, &s)
	}
}

func (n *Node) restoreSlots(in []SlotSnapshot) []*Slot {
	out := make([]*Slot, len(in))
	for i, ss := range in {
		s := &Slot{Name: ss.Name, Type: ss.Type, Label: ss.Label, Extra: cloneMap(ss.Extra)}
		if ss.Link != nil {
			id := n.adoptLinkRef(*ss.Link, ss.Type)
			s.Link = &id
		}
		for _, ref := range ss.Links {
			s.Links = append(s.Links, n.adoptLinkRef(ref, ""))
		}
		out[i] = s
	}
	return out
}

// adoptLinkRef reduces a reference to its id, creating the link record for
// legacy tuples the graph does not know yet.
func (n *Node) adoptLinkRef(ref LinkRef, typ string) LinkID {
	if ref.Legacy == nil || n.graph == nil {
		return ref.ID
	}
	if _, ok := n.graph.links[ref.ID]; !ok {
		l := ref.Legacy.link()
		l.Type = typ
		n.graph.links[l.ID] = l
		if l.ID > n.graph.lastLinkID {
			n.graph.lastLinkID = l.ID
		}
	}
	return ref.ID
}

// Clone creates a fresh detached node of the same type through f and
// configures it from this node's snapshot with links and id stripped.
func (n *Node) Clone(f Factory) (*Node, error) {
	if f == nil {
		return nil, ErrNoFactory
	}
	s := n.Serialize()
	s.ID = 0
	for i := range s.Inputs {
		s.Inputs[i].Link = nil
	}
	for i := range s.Outputs {
		s.Outputs[i].Links = nil
	}
	m, err := f.Create(n.typ, n.Title)
	if err != nil {
		return nil, fmt.Errorf("cloning %s: %w", n, err)
	}
	m.Configure(s)
	return m, nil
}

// --- Graph ---

// Serialize captures the whole graph. Links are packed as tuples and
// orphaned links are left out.
func (g *Graph) Serialize() Snapshot {
	cfg := g.config
	s := Snapshot{
		Iteration:     g.iteration,
		Frame:         g.frame,
		LastNodeID:    g.lastNodeID,
		LastLinkID:    g.lastLinkID,
		Config:        &cfg,
		Links:         make([]LinkTuple, 0, len(g.links)),
		Nodes:         make([]NodeSnapshot, 0, len(g.nodes)),
		GlobalInputs:  g.globalInputs.snapshot(),
		GlobalOutputs: g.globalOutputs.snapshot(),
	}
	for _, l := range g.Links() {
		s.Links = append(s.Links, l.Tuple())
	}
	for _, n := range g.nodes {
		s.Nodes = append(s.Nodes, n.Serialize())
	}
	return s
}

// Configure loads a snapshot, replacing the current content unless
// keepExisting is set. Every node is created and added before any node is
// configured, so configure hooks can resolve all link endpoints.
//
// A merge into existing content gives every loaded node and link a fresh
// id, so existing records are never overwritten. A node whose type is not
// registered is loaded as an Unresolved placeholder that keeps its slots,
// links and data; the returned error joins one ErrUnknownNodeType per
// such node.
func (g *Graph) Configure(ctx context.Context, s Snapshot, keepExisting bool) error {
	_, span := tracer.Start(ctx, "graph.Configure", trace.WithAttributes(
		attribute.Int("nodes", len(s.Nodes)),
		attribute.Int("links", len(s.Links)),
		attribute.Bool("keep_existing", keepExisting),
	))
	defer span.End()

	if g.factory == nil {
		span.SetStatus(codes.Error, ErrNoFactory.Error())
		return ErrNoFactory
	}
	if keepExisting {
		s = g.remap(s)
	} else {
		g.Clear()
	}

	for _, t := range s.Links {
		l := t.link()
		g.links[l.ID] = l
	}
	g.iteration = s.Iteration
	g.frame = s.Frame
	g.lastNodeID = max(g.lastNodeID, s.LastNodeID)
	g.lastLinkID = max(g.lastLinkID, s.LastLinkID)
	if s.Config != nil {
		g.config = s.Config.withDefaults()
	}
	g.globalInputs.restore(s.GlobalInputs)
	g.globalOutputs.restore(s.GlobalOutputs)

	var errs []error
	created := make([]*Node, 0, len(s.Nodes))
	snaps := make([]NodeSnapshot, 0, len(s.Nodes))
	for _, ns := range s.Nodes {
		title := ""
		if ns.Title != nil {
			title = *ns.Title
		}
		n, err := g.factory.Create(ns.Type, title)
		if err != nil {
			errs = append(errs, fmt.Errorf("node %d: %w", ns.ID, err))
			if !errors.Is(err, ErrUnknownNodeType) {
				continue
			}
			n = NewNode(ns.Type, title, &Unresolved{raw: ns})
		}
		if ns.ID > 0 {
			n.id = ns.ID
		}
		if err := g.Add(n, DeferOrder()); err != nil {
			errs = append(errs, fmt.Errorf("node %d: %w", ns.ID, err))
			continue
		}
		created = append(created, n)
		snaps = append(snaps, ns)
	}
	for i, n := range created {
		n.Configure(snaps[i])
	}

	g.reconcileLinks()
	g.UpdateExecutionOrder()

	g.logger.Debug("Graph configured from snapshot.", "nodes", len(g.nodes), "links", len(g.links), "errors", len(errs))
	g.broadcast(EventConfigure)

	err := errors.Join(errs...)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	span.SetStatus(codes.Ok, "")
	return nil
}

// reconcileLinks drops link records whose endpoints are missing, clears
// slot references to records that do not exist and fills in link types
// from the target slot.
func (g *Graph) reconcileLinks() {
	for id, l := range g.links {
		if g.resolveLink(id) == nil {
			delete(g.links, id)
			continue
		}
		if l.Type == "" {
			if in := g.byID[l.TargetID].Input(l.TargetSlot); in != nil {
				l.Type = in.Type
			}
		}
		g.lastLinkID = max(g.lastLinkID, id)
	}
	for _, n := range g.nodes {
		for _, in := range n.inputs {
			if in.Link != nil && g.links[*in.Link] == nil {
				in.Link = nil
			}
		}
		for _, out := range n.outputs {
			out.Links = slices.DeleteFunc(out.Links, func(id LinkID) bool { return g.links[id] == nil })
		}
	}
}

// remap returns a copy of s whose node and link ids all follow the graph's
// current counters. Links referring to nodes outside the snapshot point at
// Detached and are pruned on load.
func (g *Graph) remap(s Snapshot) Snapshot {
	nodeIDs := make(map[NodeID]NodeID, len(s.Nodes))
	nextNode := g.lastNodeID
	nodes := make([]NodeSnapshot, len(s.Nodes))
	for i, ns := range s.Nodes {
		id, seen := nodeIDs[ns.ID]
		if !seen || ns.ID <= 0 {
			nextNode++
			id = nextNode
			if ns.ID > 0 {
				nodeIDs[ns.ID] = id
			}
		}
		ns.ID = id
		nodes[i] = ns
	}

	linkIDs := make(map[LinkID]LinkID, len(s.Links))
	nextLink := g.lastLinkID
	linkID := func(old LinkID) LinkID {
		id, ok := linkIDs[old]
		if !ok {
			nextLink++
			id = nextLink
			linkIDs[old] = id
		}
		return id
	}
	nodeID := func(old int) int {
		if id, ok := nodeIDs[NodeID(old)]; ok {
			return int(id)
		}
		return int(Detached)
	}
	tuple := func(t LinkTuple) LinkTuple {
		t[0] = int(linkID(LinkID(t[0])))
		t[1] = nodeID(t[1])
		t[3] = nodeID(t[3])
		return t
	}
	ref := func(r LinkRef) LinkRef {
		if r.Legacy != nil {
			t := tuple(*r.Legacy)
			return LinkRef{ID: LinkID(t[0]), Legacy: &t}
		}
		return LinkRef{ID: linkID(r.ID)}
	}
	slots := func(in []SlotSnapshot) []SlotSnapshot {
		if in == nil {
			return nil
		}
		out := make([]SlotSnapshot, len(in))
		for i, ss := range in {
			if ss.Link != nil {
				r := ref(*ss.Link)
				ss.Link = &r
			}
			if ss.Links != nil {
				links := make([]LinkRef, len(ss.Links))
				for j, r := range ss.Links {
					links[j] = ref(r)
				}
				ss.Links = links
			}
			out[i] = ss
		}
		return out
	}

	out := s
	out.LastNodeID, out.LastLinkID = 0, 0
	out.Links = make([]LinkTuple, len(s.Links))
	for i, t := range s.Links {
		out.Links[i] = tuple(t)
	}
	for i := range nodes {
		nodes[i].Inputs = slots(nodes[i].Inputs)
		nodes[i].Outputs = slots(nodes[i].Outputs)
	}
	out.Nodes = nodes
	return out
}

// Unresolved stands in for a node whose type was not registered when a
// snapshot was loaded. It keeps the node's snapshot and writes its extra
// data back on Serialize, so saving the graph again loses nothing.
type Unresolved struct {
	raw NodeSnapshot
}

func (u *Unresolved) Setup(*Node) {}

// Snapshot returns the snapshot the placeholder was loaded from.
func (u *Unresolved) Snapshot() NodeSnapshot { return u.raw }

func (u *Unresolved) OnSerialize(_ *Node, s *NodeSnapshot) {
	s.Extra = cloneMap(u.raw.Extra)
}

// HasErrors reports whether n is a placeholder for an unregistered type.
func (n *Node) HasErrors() bool {
	_, ok := n.behavior.(*Unresolved)
	return ok
}
