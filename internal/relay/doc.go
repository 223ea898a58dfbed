// Package relay forwards graph broadcast events to a remote presentation
// layer over socket.io.
//
// A Client is a graph.Listener source: every broadcast becomes a
// "graph:<event>" message whose arguments are reduced to JSON-safe values.
// Nodes travel as {id, type, title}, links as their five-element tuple and
// errors as their message. Delivery is fire-and-forget; a lost connection
// never reaches the scheduler.
package relay
