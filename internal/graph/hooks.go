package graph

// Behavior is the type-specific part of a node. The registry calls its
// constructor once per node and Setup once on the fresh node, where the
// behavior declares slots and properties.
//
// Everything else a node type can do is opt-in: the graph probes the
// behavior for the capability interfaces below and invokes them only when
// present. Node supplies the base implementation of every capability that
// has one (size computation, serialization), so a behavior overrides only
// what it implements.
type Behavior interface {
	Setup(n *Node)
}

// Executor is implemented by behaviors with a per-tick callback. param is
// nil on scheduler ticks and carries the trigger payload when the node runs
// in ModeOnTrigger.
type Executor interface {
	OnExecute(n *Node, param any) error
}

// ActionHandler receives triggers arriving on event inputs.
type ActionHandler interface {
	OnAction(n *Node, action string, param any) error
}

type AddedHook interface {
	OnAdded(n *Node)
}

type RemovedHook interface {
	OnRemoved(n *Node)
}

type Starter interface {
	OnStart(n *Node)
}

type Stopper interface {
	OnStop(n *Node)
}

// EventReceiver receives events broadcast with Graph.SendEventToAllNodes
// other than start and stop.
type EventReceiver interface {
	OnEvent(n *Node, event string, param any)
}

// ConnectionsChangeHandler is notified after a link on one of the node's
// slots is created or removed.
type ConnectionsChangeHandler interface {
	OnConnectionsChange(n *Node, dir Direction, slot int, connected bool, link *Link)
}

// InputConnectVetoer may refuse an incoming connection by returning false.
type InputConnectVetoer interface {
	OnConnectInput(n *Node, slot int, originType string, origin *Node, originSlot int) bool
}

// PropertyChangeHandler observes property writes. Returning false restores
// the previous value.
type PropertyChangeHandler interface {
	OnPropertyChanged(n *Node, name string, value, prev any) bool
}

// SerializeHook may decorate a node snapshot before it is emitted.
type SerializeHook interface {
	OnSerialize(n *Node, s *NodeSnapshot)
}

// ConfigureHook runs after a node has been configured from a snapshot.
type ConfigureHook interface {
	OnConfigure(n *Node, s *NodeSnapshot)
}

// Sizer overrides the size computed from slot geometry.
type Sizer interface {
	Size(n *Node, base Vec2) Vec2
}

// OutputUpdater refreshes a single output on demand when a consumer forces
// a read.
type OutputUpdater interface {
	UpdateOutputData(n *Node, slot int)
}
