// Package graph is the dataflow runtime: nodes with typed slots, the links
// between them, the execution order and the step scheduler.
//
// # Data Model
//
// A Node is created detached by a Factory (normally the registry) and gets
// its id from Graph.Add. Its type-specific part is a Behavior; everything a
// behavior can do beyond Setup is expressed by optional capability
// interfaces (Executor, ActionHandler, Starter, ...) that the graph probes
// before invoking them.
//
// Links are owned by the graph's link table. The ids held by slots are a
// cache of that table:
//
//	output slot ──Links[]──┐            ┌──Link── input slot
//	                       ▼            ▼
//	                 graph.links[id] = Link{origin, target}
//
// Every mutation keeps both sides consistent. A link whose origin or target
// is not indexed is treated as absent by every traversal.
//
// # Connection Protocol
//
// Node.Connect resolves slots by name (Named) or index (At), rejects
// self-loops and incompatible types (see IsValidConnection), replaces a
// link already held by the input and lets the target veto. Failures are
// returned as errors matching ErrNotFound or ErrInvalidOperation; they never
// panic.
//
// # Scheduling
//
// The execution order is a cycle-tolerant topological sort recomputed after
// every structural change. RunStep walks the executable sublist of that
// order; Start drives RunStep from a ticker on its own goroutine:
//
//	STOPPED ──Start──▶ RUNNING
//	   ▲                  │
//	   └──Stop / fault────┘
//
// Triggers travel synchronously along event links, depth-first, bounded by
// Config.MaxTriggerDepth.
//
// # Thread-Safety
//
// A Graph is single-threaded. While a timer is armed, the tick goroutine
// holds the graph's loop lock for the duration of each step and any other
// goroutine must use Graph.Do to read or mutate the graph.
//
// # Persistence
//
// Snapshot is the only durable format: plain JSON, links packed as
// [id, originId, originSlot, targetId, targetSlot] tuples.
package graph
