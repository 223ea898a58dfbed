package math

import (
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegister("math/operation", func() graph.Behavior { return &Operation{} },
		registry.WithTitle("Operation"),
		registry.WithDescription("Applies a binary operator to its inputs"),
	)
	r.MustRegister("math/counter", func() graph.Behavior { return &Counter{} },
		registry.WithTitle("Counter"),
		registry.WithDescription("Counts inc actions until reset"),
	)
}
