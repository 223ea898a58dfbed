// Package telemetry wires the OpenTelemetry SDK for the flowgrid binary.
//
// Library packages (graph, builder, hcl) only ever talk to the otel global
// API; spans and instruments created there are no-ops until Init installs
// real providers. Init supports:
//
//   - traces: "stdout" (pretty-printed spans) or "none"
//   - metrics: "prometheus" (served by Stack.MetricsHandler), "stdout"
//     (periodic dump) or "none"
//
// The Prometheus exporter registers with a private registry, so Init can be
// called more than once in one process (tests do).
package telemetry
