package basic

import "github.com/vk/flowgrid/internal/graph"

// Const publishes its "value" property.
type Const struct{}

func (c *Const) Setup(n *graph.Node) {
	n.AddOutput("value", "")
	n.AddProperty("value", 1.0, "number", nil)
}

func (c *Const) OnExecute(n *graph.Node, _ any) error {
	c.UpdateOutputData(n, 0)
	return nil
}

// UpdateOutputData lets consumers pull the value without waiting for a
// tick.
func (c *Const) UpdateOutputData(n *graph.Node, _ int) {
	v, _ := n.Property("value")
	n.SetOutputData(0, v)
}
