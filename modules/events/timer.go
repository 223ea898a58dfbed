package events

import (
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/modules/internal/value"
)

// Timer fires "on_tick" with the tick count each time "interval" seconds
// of fixed time have passed since it was armed. It arms on its first tick
// and again when the graph starts.
type Timer struct {
	next  float64
	armed bool
	ticks int
}

func (t *Timer) Setup(n *graph.Node) {
	n.AddOutput("on_tick", graph.EventType)
	n.AddOutput("ticks", "number")
	n.AddProperty("interval", 1.0, "number", nil)
}

func (t *Timer) OnStart(*graph.Node) { t.armed = false }

func (t *Timer) OnExecute(n *graph.Node, _ any) error {
	now := n.Graph().FixedTime()
	if !t.armed {
		t.next, t.armed = now+interval(n), true
		return nil
	}
	if now < t.next {
		return nil
	}
	t.next = now + interval(n)
	t.ticks++
	n.SetOutputData(1, t.ticks)
	return n.Trigger("on_tick", t.ticks)
}

func (t *Timer) Ticks() int { return t.ticks }

// Non-positive intervals are rejected.
func (t *Timer) OnPropertyChanged(_ *graph.Node, name string, v, _ any) bool {
	if name != "interval" {
		return true
	}
	f, ok := value.Float(v)
	return ok && f > 0
}

func interval(n *graph.Node) float64 {
	prop, _ := n.Property("interval")
	if f, ok := value.Float(prop); ok && f > 0 {
		return f
	}
	return 1
}
