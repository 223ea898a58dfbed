package events

import (
	"fmt"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/modules/internal/value"
)

const maxSequenceOutputs = 16

// Sequence forwards every action on "in" to its outputs, first to last.
// The "outputs" property sets how many there are.
type Sequence struct{}

func (s *Sequence) Setup(n *graph.Node) {
	n.AddInput("in", graph.EventType)
	for i := range 3 {
		n.AddOutput(outputName(i), graph.EventType)
	}
	n.AddProperty("outputs", 3, "number", map[string]any{"min": 1, "max": maxSequenceOutputs})
}

func (s *Sequence) OnAction(n *graph.Node, _ string, param any) error {
	for i := range n.Outputs() {
		if err := n.TriggerSlot(i, param, nil); err != nil {
			return err
		}
	}
	return nil
}

// OnPropertyChanged grows or shrinks the outputs. Removed outputs drop
// their links.
func (s *Sequence) OnPropertyChanged(n *graph.Node, name string, v, _ any) bool {
	if name != "outputs" {
		return true
	}
	count, ok := value.Int(v)
	if !ok || count < 1 || count > maxSequenceOutputs {
		return false
	}
	for len(n.Outputs()) < count {
		n.AddOutput(outputName(len(n.Outputs())), graph.EventType)
	}
	for len(n.Outputs()) > count {
		if err := n.RemoveOutput(len(n.Outputs()) - 1); err != nil {
			return false
		}
	}
	return true
}

func outputName(i int) string { return fmt.Sprintf("out%d", i) }
