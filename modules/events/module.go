package events

import (
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegister("events/timer", func() graph.Behavior { return &Timer{} },
		registry.WithTitle("Timer"),
		registry.WithDescription("Fires on_tick every interval of virtual time"),
	)
	r.MustRegister("events/sequence", func() graph.Behavior { return &Sequence{} },
		registry.WithTitle("Sequence"),
		registry.WithDescription("Fires each of its outputs in order"),
	)
	r.MustRegister("events/log", func() graph.Behavior { return &Log{} },
		registry.WithTitle("Log Events"),
	)
}
