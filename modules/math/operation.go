package math

import (
	"errors"
	"fmt"
	stdmath "math"
	"slices"

	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/modules/internal/value"
)

var ErrNotNumber = errors.New("value is not a number")

// Operators lists the supported values of the "op" property.
var Operators = []string{"+", "-", "*", "/", "max", "min", "pow"}

// Operation computes result = a op b. A disconnected input falls back to
// the property of the same name.
type Operation struct{}

func (o *Operation) Setup(n *graph.Node) {
	n.AddInput("a", "number")
	n.AddInput("b", "number")
	n.AddOutput("result", "number")
	n.AddProperty("a", 1.0, "number", nil)
	n.AddProperty("b", 1.0, "number", nil)
	n.AddProperty("op", "+", "enum", map[string]any{"values": Operators})
}

func (o *Operation) OnExecute(n *graph.Node, _ any) error {
	a, err := operand(n, 0, "a")
	if err != nil {
		return err
	}
	b, err := operand(n, 1, "b")
	if err != nil {
		return err
	}
	prop, _ := n.Property("op")
	op, _ := prop.(string)
	n.SetOutputData(0, Apply(op, a, b))
	return nil
}

// Only known operators are accepted.
func (o *Operation) OnPropertyChanged(_ *graph.Node, name string, v, _ any) bool {
	if name != "op" {
		return true
	}
	s, ok := v.(string)
	return ok && slices.Contains(Operators, s)
}

// Apply evaluates one operator. Division by zero follows IEEE 754.
func Apply(op string, a, b float64) float64 {
	switch op {
	case "-":
		return a - b
	case "*":
		return a * b
	case "/":
		return a / b
	case "max":
		return stdmath.Max(a, b)
	case "min":
		return stdmath.Min(a, b)
	case "pow":
		return stdmath.Pow(a, b)
	default:
		return a + b
	}
}

func operand(n *graph.Node, slot int, prop string) (float64, error) {
	v, ok := n.InputData(slot, false)
	if !ok || v == nil {
		v, _ = n.Property(prop)
	}
	f, ok := value.Float(v)
	if !ok {
		return 0, fmt.Errorf("input %q: %w: %v", prop, ErrNotNumber, v)
	}
	return f, nil
}
