package basic

import (
	"errors"

	"github.com/vk/flowgrid/internal/graph"
)

// GlobalInput publishes the graph global input named by its "name"
// property. An undeclared global yields nil.
type GlobalInput struct{}

func (gi *GlobalInput) Setup(n *graph.Node) {
	n.AddOutput("value", "")
	n.AddProperty("name", "input", "string", nil)
}

func (gi *GlobalInput) OnExecute(n *graph.Node, _ any) error {
	gi.UpdateOutputData(n, 0)
	return nil
}

func (gi *GlobalInput) UpdateOutputData(n *graph.Node, _ int) {
	g := n.Graph()
	if g == nil {
		return
	}
	v, _ := g.GlobalInputData(globalName(n))
	n.SetOutputData(0, v)
}

// The output slot takes the type of the declared global.
func (gi *GlobalInput) OnAdded(n *graph.Node) { gi.adoptType(n, globalName(n)) }

func (gi *GlobalInput) OnPropertyChanged(n *graph.Node, name string, value, _ any) bool {
	if name == "name" {
		s, ok := value.(string)
		if !ok {
			return false
		}
		gi.adoptType(n, s)
	}
	return true
}

func (gi *GlobalInput) adoptType(n *graph.Node, name string) {
	g := n.Graph()
	if g == nil {
		return
	}
	if gl, ok := g.GlobalInput(name); ok && gl.Type != "" {
		n.Output(0).Type = gl.Type
	}
}

// GlobalOutput writes its input into the graph global output named by its
// "name" property, declaring the global on first write.
type GlobalOutput struct{}

func (o *GlobalOutput) Setup(n *graph.Node) {
	n.AddInput("value", "")
	n.AddProperty("name", "output", "string", nil)
}

func (o *GlobalOutput) OnExecute(n *graph.Node, _ any) error {
	g := n.Graph()
	v, ok := n.InputData(0, false)
	if g == nil || !ok {
		return nil
	}
	name := globalName(n)
	err := g.SetGlobalOutputData(name, v)
	if errors.Is(err, graph.ErrNotFound) {
		g.AddGlobalOutput(name, n.Input(0).Type, v)
		return nil
	}
	return err
}

func globalName(n *graph.Node) string {
	prop, _ := n.Property("name")
	name, _ := prop.(string)
	return name
}
