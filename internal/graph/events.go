package graph

import "slices"

// Broadcast event names.
const (
	EventNodeAdded        = "node_added"
	EventNodeRemoved      = "node_removed"
	EventConnectionChange = "connection_change"
	EventClear            = "clear"
	EventConfigure        = "configure"
	EventStart            = "start"
	EventStop             = "stop"
	EventFault            = "fault"
	EventGlobalsChange    = "globals_change"
)

// Node-level events fanned out by SendEventToAllNodes.
const (
	NodeEventStart = "start"
	NodeEventStop  = "stop"
)

// Listener observes structural changes. Arguments depend on the event:
// nodes for node and connection events, the error for faults, the global
// kind and name for globals changes.
type Listener func(event string, args ...any)

type listener struct {
	fn Listener
}

// AddListener registers l and returns a function removing it again.
func (g *Graph) AddListener(l Listener) (remove func()) {
	entry := &listener{fn: l}
	g.listeners = append(g.listeners, entry)
	return func() {
		g.listeners = slices.DeleteFunc(g.listeners, func(e *listener) bool { return e == entry })
	}
}

func (g *Graph) broadcast(event string, args ...any) {
	for _, l := range slices.Clone(g.listeners) {
		l.fn(event, args...)
	}
}

// SendEventToAllNodes delivers an event to every node that can receive it.
func (g *Graph) SendEventToAllNodes(event string, param any) {
	for _, n := range slices.Clone(g.nodes) {
		switch event {
		case NodeEventStart:
			if h, ok := n.behavior.(Starter); ok {
				h.OnStart(n)
			}
		case NodeEventStop:
			if h, ok := n.behavior.(Stopper); ok {
				h.OnStop(n)
			}
		default:
			if h, ok := n.behavior.(EventReceiver); ok {
				h.OnEvent(n, event, param)
			}
		}
	}
}
