// Package app contains the core application logic. It wires the logger,
// the node type registry, the graph definition loader, telemetry, the
// presentation relay and the health server around one graph, and drives
// that graph either for a fixed number of steps or on a timer. It is
// decoupled from any specific entrypoint like a CLI.
package app
