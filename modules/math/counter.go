package math

import (
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/modules/internal/value"
)

// Counter counts "inc" actions, adding the "step" property each time, and
// returns to zero on "reset". Every change fires "on_change" with the new
// count.
type Counter struct {
	count float64
}

func (c *Counter) Setup(n *graph.Node) {
	n.AddInput("inc", graph.EventType)
	n.AddInput("reset", graph.EventType)
	n.AddOutput("count", "number")
	n.AddOutput("on_change", graph.EventType)
	n.AddProperty("step", 1.0, "number", nil)
}

func (c *Counter) OnAction(n *graph.Node, action string, _ any) error {
	switch action {
	case "inc":
		step, _ := n.Property("step")
		d, ok := value.Float(step)
		if !ok {
			d = 1
		}
		c.count += d
	case "reset":
		c.count = 0
	default:
		return nil
	}
	n.SetOutputData(0, c.count)
	return n.Trigger("on_change", c.count)
}

func (c *Counter) OnExecute(n *graph.Node, _ any) error {
	n.SetOutputData(0, c.count)
	return nil
}

func (c *Counter) Count() float64 { return c.count }

func (c *Counter) OnSerialize(_ *graph.Node, s *graph.NodeSnapshot) {
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra["count"] = c.count
}

func (c *Counter) OnConfigure(_ *graph.Node, s *graph.NodeSnapshot) {
	if f, ok := value.Float(s.Extra["count"]); ok {
		c.count = f
	}
}
