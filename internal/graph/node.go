package graph

import (
	"fmt"
	"math"
	"unicode/utf8"
)

// PropertyInfo describes a declared property.
type PropertyInfo struct {
	Name    string         `json:"name"`
	Type    string         `json:"type,omitempty"`
	Default any            `json:"default,omitempty"`
	Extra   map[string]any `json:"extra,omitempty"`
}

// Node is a unit of computation with ordered input and output slots.
//
// A node is created detached (id Detached) and receives its id from
// Graph.Add. Pos, Size and Title belong to the presentation layer and are
// stored as given.
type Node struct {
	Title string
	Pos   Vec2
	Size  Vec2
	Mode  Mode

	id       NodeID
	typ      string
	order    int
	behavior Behavior
	graph    *Graph

	inputs       []*Slot
	outputs      []*Slot
	properties   map[string]any
	propertyInfo []PropertyInfo
	flags        map[string]bool
}

// NodeOption overrides a field of a freshly created node.
type NodeOption func(*Node)

func WithPos(x, y float64) NodeOption {
	return func(n *Node) { n.Pos = Vec2{x, y} }
}

func WithSize(w, h float64) NodeOption {
	return func(n *Node) { n.Size = Vec2{w, h} }
}

func WithMode(m Mode) NodeOption {
	return func(n *Node) { n.Mode = m }
}

// WithProperty assigns a property without firing change hooks.
func WithProperty(name string, value any) NodeOption {
	return func(n *Node) { n.properties[name] = value }
}

func WithFlag(name string, value bool) NodeOption {
	return func(n *Node) { n.SetFlag(name, value) }
}

// WithID requests an explicit id. Graph.Add keeps it and advances its
// counter past it.
func WithID(id NodeID) NodeOption {
	return func(n *Node) { n.id = id }
}

// NewNode builds a detached node around b. Defaults are filled in for
// anything Setup left unset and opts are applied last.
func NewNode(typeName, title string, b Behavior, opts ...NodeOption) *Node {
	n := &Node{
		Title:      title,
		id:         Detached,
		typ:        typeName,
		order:      -1,
		behavior:   b,
		properties: make(map[string]any),
		flags:      make(map[string]bool),
	}
	if b != nil {
		b.Setup(n)
	}
	if n.Size == (Vec2{}) {
		n.Size = n.ComputeSize()
	}
	if n.Pos == (Vec2{}) {
		n.Pos = DefaultPosition
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Node) ID() NodeID         { return n.id }
func (n *Node) Type() string       { return n.typ }
func (n *Node) Behavior() Behavior { return n.behavior }
func (n *Node) Graph() *Graph      { return n.graph }

// Order is the node's position in the last computed execution order, -1 if
// it was never ordered.
func (n *Node) Order() int { return n.order }

func (n *Node) String() string {
	return fmt.Sprintf("%s#%d", n.typ, n.id)
}

// --- Slots ---

func (n *Node) Inputs() []*Slot  { return n.inputs }
func (n *Node) Outputs() []*Slot { return n.outputs }

// Input returns the input at index i, or nil.
func (n *Node) Input(i int) *Slot {
	if i < 0 || i >= len(n.inputs) {
		return nil
	}
	return n.inputs[i]
}

// Output returns the output at index i, or nil.
func (n *Node) Output(i int) *Slot {
	if i < 0 || i >= len(n.outputs) {
		return nil
	}
	return n.outputs[i]
}

// AddInput appends an input slot and recomputes the node size.
func (n *Node) AddInput(name, typ string, opts ...SlotOption) *Slot {
	s := &Slot{Name: name, Type: typ}
	for _, opt := range opts {
		opt(s)
	}
	n.inputs = append(n.inputs, s)
	n.Size = n.ComputeSize()
	return s
}

// AddOutput appends an output slot and recomputes the node size.
func (n *Node) AddOutput(name, typ string, opts ...SlotOption) *Slot {
	s := &Slot{Name: name, Type: typ}
	for _, opt := range opts {
		opt(s)
	}
	n.outputs = append(n.outputs, s)
	n.Size = n.ComputeSize()
	return s
}

// RemoveInput severs the link on input i and splices the slot out. Links
// on later inputs are renumbered so they keep pointing at the same slot.
func (n *Node) RemoveInput(i int) error {
	if i < 0 || i >= len(n.inputs) {
		return fmt.Errorf("%w: input %d of %d", ErrSlotOutOfRange, i, len(n.inputs))
	}
	if n.inputs[i].Link != nil {
		if err := n.DisconnectInput(At(i)); err != nil {
			return err
		}
	}
	n.inputs = append(n.inputs[:i], n.inputs[i+1:]...)
	if n.graph != nil {
		for j := i; j < len(n.inputs); j++ {
			if id := n.inputs[j].Link; id != nil {
				if l := n.graph.links[*id]; l != nil {
					l.TargetSlot = j
				}
			}
		}
	}
	n.Size = n.ComputeSize()
	return nil
}

// RemoveOutput severs every link on output i and splices the slot out.
// Links on later outputs are renumbered.
func (n *Node) RemoveOutput(i int) error {
	if i < 0 || i >= len(n.outputs) {
		return fmt.Errorf("%w: output %d of %d", ErrSlotOutOfRange, i, len(n.outputs))
	}
	if len(n.outputs[i].Links) > 0 {
		if err := n.DisconnectOutput(At(i), nil); err != nil {
			return err
		}
	}
	n.outputs = append(n.outputs[:i], n.outputs[i+1:]...)
	if n.graph != nil {
		for j := i; j < len(n.outputs); j++ {
			for _, id := range n.outputs[j].Links {
				if l := n.graph.links[id]; l != nil {
					l.OriginSlot = j
				}
			}
		}
	}
	n.Size = n.ComputeSize()
	return nil
}

// FindInputSlot returns the index of the named input or -1.
func (n *Node) FindInputSlot(name string) int {
	for i, s := range n.inputs {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// FindOutputSlot returns the index of the named output or -1.
func (n *Node) FindOutputSlot(name string) int {
	for i, s := range n.outputs {
		if s.Name == name {
			return i
		}
	}
	return -1
}

// --- Properties ---

// AddProperty declares a property with its default value.
func (n *Node) AddProperty(name string, def any, typ string, extra map[string]any) {
	n.properties[name] = def
	n.propertyInfo = append(n.propertyInfo, PropertyInfo{Name: name, Type: typ, Default: def, Extra: extra})
}

// PropertyInfo returns the declared property descriptors.
func (n *Node) PropertyInfo() []PropertyInfo { return n.propertyInfo }

func (n *Node) Property(name string) (any, bool) {
	v, ok := n.properties[name]
	return v, ok
}

// Properties returns a deep copy of the property map.
func (n *Node) Properties() map[string]any {
	return cloneMap(n.properties)
}

// SetProperty writes a property and notifies the behavior, which may
// reject the write.
func (n *Node) SetProperty(name string, value any) {
	prev, had := n.properties[name]
	n.properties[name] = value
	h, ok := n.behavior.(PropertyChangeHandler)
	if !ok || h.OnPropertyChanged(n, name, value, prev) {
		return
	}
	if had {
		n.properties[name] = prev
	} else {
		delete(n.properties, name)
	}
}

// --- Flags ---

func (n *Node) Flag(name string) bool { return n.flags[name] }

func (n *Node) SetFlag(name string, v bool) {
	if v {
		n.flags[name] = true
		return
	}
	delete(n.flags, name)
}

func (n *Node) Flags() map[string]bool {
	out := make(map[string]bool, len(n.flags))
	for k, v := range n.flags {
		out[k] = v
	}
	return out
}

func (n *Node) Collapse(collapsed bool) { n.SetFlag(FlagCollapsed, collapsed) }
func (n *Node) IsCollapsed() bool       { return n.flags[FlagCollapsed] }
func (n *Node) Pin(pinned bool)         { n.SetFlag(FlagPinned, pinned) }
func (n *Node) IsPinned() bool          { return n.flags[FlagPinned] }

// --- Geometry ---

// ComputeSize derives a size from the slot labels and the title. A Sizer
// behavior gets the last word.
func (n *Node) ComputeSize() Vec2 {
	rows := max(len(n.inputs), len(n.outputs), 1)
	textWidth := func(s string) float64 {
		return float64(utf8.RuneCountInString(s)) * NodeTextSize * 0.6
	}

	var inWidth, outWidth float64
	for _, s := range n.inputs {
		inWidth = max(inWidth, textWidth(s.DisplayName()))
	}
	for _, s := range n.outputs {
		outWidth = max(outWidth, textWidth(s.DisplayName()))
	}
	width := max(inWidth+outWidth+10, textWidth(n.Title), NodeWidth)
	size := Vec2{width, float64(rows*NodeSlotHeight + 6)}

	if s, ok := n.behavior.(Sizer); ok {
		return s.Size(n, size)
	}
	return size
}

// AlignToGrid snaps the position to a grid of the given cell size.
func (n *Node) AlignToGrid(cell float64) {
	if cell <= 0 {
		return
	}
	n.Pos[0] = cell * math.Round(n.Pos[0]/cell)
	n.Pos[1] = cell * math.Round(n.Pos[1]/cell)
}

// --- Data plumbing ---

// SetOutputData caches v on output slot and on every link leaving it.
func (n *Node) SetOutputData(slot int, v any) {
	out := n.Output(slot)
	if out == nil {
		return
	}
	out.data = v
	if n.graph == nil {
		return
	}
	for _, id := range out.Links {
		if l := n.graph.links[id]; l != nil {
			l.Data = v
		}
	}
}

// OutputData returns the value last written to an output.
func (n *Node) OutputData(slot int) any {
	if out := n.Output(slot); out != nil {
		return out.data
	}
	return nil
}

// InputData reads the payload on an input link. With force set the origin
// is refreshed first. The second result is false when the input is not
// connected.
func (n *Node) InputData(slot int, force bool) (any, bool) {
	l := n.InputLink(slot)
	if l == nil {
		return nil, false
	}
	if force {
		if origin := n.graph.byID[l.OriginID]; origin != nil {
			switch b := origin.behavior.(type) {
			case OutputUpdater:
				b.UpdateOutputData(origin, l.OriginSlot)
			case Executor:
				if err := b.OnExecute(origin, nil); err != nil {
					n.graph.logger.Warn("Forced refresh of origin failed.", "node", origin.String(), "error", err)
				}
			}
		}
	}
	return l.Data, true
}

// InputDataByName is InputData addressed by slot name.
func (n *Node) InputDataByName(name string, force bool) (any, bool) {
	i := n.FindInputSlot(name)
	if i < 0 {
		return nil, false
	}
	return n.InputData(i, force)
}

// InputLink resolves the live link on an input, nil if there is none.
func (n *Node) InputLink(slot int) *Link {
	in := n.Input(slot)
	if in == nil || in.Link == nil || n.graph == nil {
		return nil
	}
	return n.graph.resolveLink(*in.Link)
}

// IsInputConnected reports whether an input holds a live link.
func (n *Node) IsInputConnected(slot int) bool {
	return n.InputLink(slot) != nil
}

// IsOutputConnected reports whether an output has at least one live link.
func (n *Node) IsOutputConnected(slot int) bool {
	out := n.Output(slot)
	if out == nil || n.graph == nil {
		return false
	}
	for _, id := range out.Links {
		if n.graph.resolveLink(id) != nil {
			return true
		}
	}
	return false
}

// InputNode returns the node feeding an input.
func (n *Node) InputNode(slot int) *Node {
	l := n.InputLink(slot)
	if l == nil {
		return nil
	}
	return n.graph.byID[l.OriginID]
}

// OutputNodes returns the nodes fed by an output.
func (n *Node) OutputNodes(slot int) []*Node {
	out := n.Output(slot)
	if out == nil || n.graph == nil {
		return nil
	}
	var nodes []*Node
	for _, id := range out.Links {
		if l := n.graph.resolveLink(id); l != nil {
			nodes = append(nodes, n.graph.byID[l.TargetID])
		}
	}
	return nodes
}
