package basic

import (
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// Module implements the registry.Module interface for this package.
type Module struct{}

// Register registers the node types with the registry.
func (m *Module) Register(r *registry.Registry) {
	r.MustRegister("basic/const", func() graph.Behavior { return &Const{} },
		registry.WithTitle("Const"),
		registry.WithDescription("Publishes its value property"),
	)
	r.MustRegister("basic/watch", func() graph.Behavior { return &Watch{} },
		registry.WithTitle("Watch"),
		registry.WithDescription("Keeps the last value it received"),
	)
	r.MustRegister("basic/console", func() graph.Behavior { return &Console{} },
		registry.WithTitle("Console"),
		registry.WithDescription("Logs its input on every tick or on the log action"),
	)
	r.MustRegister("basic/env", func() graph.Behavior { return &Env{} },
		registry.WithTitle("Environment"),
		registry.WithDescription("Outputs the process environment as a map"),
	)
	r.MustRegister("basic/global_input", func() graph.Behavior { return &GlobalInput{} },
		registry.WithTitle("Global Input"),
	)
	r.MustRegister("basic/global_output", func() graph.Behavior { return &GlobalOutput{} },
		registry.WithTitle("Global Output"),
	)
}
