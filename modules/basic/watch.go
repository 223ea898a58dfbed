package basic

import "github.com/vk/flowgrid/internal/graph"

// Watch keeps the last value seen on its input. A disconnected input leaves
// the previous value in place.
type Watch struct {
	value any
	seen  bool
}

func (w *Watch) Setup(n *graph.Node) {
	n.AddInput("value", "")
}

func (w *Watch) OnExecute(n *graph.Node, _ any) error {
	if v, ok := n.InputData(0, false); ok {
		w.value, w.seen = v, true
	}
	return nil
}

// Value returns the last value and whether anything was received yet.
func (w *Watch) Value() (any, bool) { return w.value, w.seen }

func (w *Watch) OnSerialize(_ *graph.Node, s *graph.NodeSnapshot) {
	if !w.seen {
		return
	}
	if s.Extra == nil {
		s.Extra = make(map[string]any)
	}
	s.Extra["value"] = w.value
}

func (w *Watch) OnConfigure(_ *graph.Node, s *graph.NodeSnapshot) {
	if v, ok := s.Extra["value"]; ok {
		w.value, w.seen = v, true
	}
}
