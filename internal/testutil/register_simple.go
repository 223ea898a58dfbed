package testutil

import (
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
)

// SimpleModule registers a fixed set of node types. Handy for wiring test
// behaviors into code paths that expect registry modules.
type SimpleModule struct {
	Types map[string]registry.Constructor
}

// Register implements the registry.Module interface.
func (m *SimpleModule) Register(r *registry.Registry) {
	for name, ctor := range m.Types {
		r.MustRegister(name, ctor)
	}
}

// TestModule returns the behaviors of this package under the "test/"
// category.
func TestModule() *SimpleModule {
	return &SimpleModule{Types: map[string]registry.Constructor{
		"test/source":      func() graph.Behavior { return &Source{} },
		"test/sink":        func() graph.Behavior { return &Sink{} },
		"test/passthrough": func() graph.Behavior { return &Passthrough{} },
		"test/probe":       func() graph.Behavior { return &Probe{} },
		"test/emitter":     func() graph.Behavior { return &Emitter{} },
		"test/relay":       func() graph.Behavior { return &Relay{} },
		"test/failing":     func() graph.Behavior { return &Failing{} },
	}}
}

// Registry returns a registry holding TestModule.
func Registry() *registry.Registry {
	r := registry.New()
	r.RegisterModules(TestModule())
	return r
}
