package math_test

import (
	"context"
	stdmath "math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/testutil"
	"github.com/vk/flowgrid/modules/basic"
	"github.com/vk/flowgrid/modules/math"
)

func setup(t *testing.T) (context.Context, *registry.Registry, *graph.Graph) {
	t.Helper()
	ctx, _ := testutil.Context(t)
	reg := registry.New()
	reg.RegisterModules(&basic.Module{}, &math.Module{}, testutil.TestModule())
	return ctx, reg, graph.New(ctx, reg)
}

func add(t *testing.T, reg *registry.Registry, g *graph.Graph, typeName string, opts ...graph.NodeOption) *graph.Node {
	t.Helper()
	n, err := reg.Create(typeName, "", opts...)
	require.NoError(t, err)
	require.NoError(t, g.Add(n))
	return n
}

func link(t *testing.T, from *graph.Node, out string, to *graph.Node, in string) {
	t.Helper()
	_, err := from.Connect(graph.Named(out), to, graph.Named(in))
	require.NoError(t, err)
}

func TestApply(t *testing.T) {
	testCases := []struct {
		op   string
		a, b float64
		want float64
	}{
		{"+", 2, 3, 5},
		{"-", 2, 3, -1},
		{"*", 2, 3, 6},
		{"/", 3, 2, 1.5},
		{"max", 2, 3, 3},
		{"min", 2, 3, 2},
		{"pow", 2, 3, 8},
		{"?", 2, 3, 5},
	}
	for _, tc := range testCases {
		t.Run(tc.op, func(t *testing.T) {
			assert.Equal(t, tc.want, math.Apply(tc.op, tc.a, tc.b))
		})
	}
	assert.True(t, stdmath.IsInf(math.Apply("/", 1, 0), 1))
}

func TestOperation_WiredInputs(t *testing.T) {
	// --- Arrange ---
	_, reg, g := setup(t)
	a := add(t, reg, g, "basic/const", graph.WithProperty("value", 6.0))
	b := add(t, reg, g, "basic/const", graph.WithProperty("value", 4.0))
	op := add(t, reg, g, "math/operation", graph.WithProperty("op", "*"))
	w := add(t, reg, g, "basic/watch")
	link(t, a, "value", op, "a")
	link(t, b, "value", op, "b")
	link(t, op, "result", w, "value")

	// --- Act ---
	require.NoError(t, g.RunStep(1, false))

	// --- Assert ---
	v, _ := w.Behavior().(*basic.Watch).Value()
	assert.Equal(t, 24.0, v)
}

func TestOperation_PropertyFallbackAndValidation(t *testing.T) {
	_, reg, g := setup(t)
	op := add(t, reg, g, "math/operation", graph.WithProperty("a", 2.0), graph.WithProperty("b", 10.0))

	op.SetProperty("op", "modulo")
	got, _ := op.Property("op")
	assert.Equal(t, "+", got)

	op.SetProperty("op", "pow")
	require.NoError(t, g.RunStep(1, false))
	assert.Equal(t, 1024.0, op.OutputData(0))
}

func TestOperation_NonNumericInputFaults(t *testing.T) {
	_, reg, g := setup(t)
	c := add(t, reg, g, "basic/const", graph.WithProperty("value", "seven"))
	op := add(t, reg, g, "math/operation")
	link(t, c, "value", op, "a")

	err := g.RunStep(1, true)

	require.ErrorIs(t, err, math.ErrNotNumber)
	require.ErrorIs(t, err, graph.ErrExecutionFault)
}

func TestCounter(t *testing.T) {
	// --- Arrange ---
	ctx, reg, g := setup(t)
	src := add(t, reg, g, "test/emitter")
	cnt := add(t, reg, g, "math/counter", graph.WithProperty("step", 2.0))
	relay := add(t, reg, g, "test/relay")
	link(t, src, "fire", cnt, "inc")
	link(t, cnt, "on_change", relay, "in")

	// --- Act ---
	require.NoError(t, g.RunStep(3, false))

	// --- Assert ---
	counter := cnt.Behavior().(*math.Counter)
	assert.Equal(t, 6.0, counter.Count())
	assert.Equal(t, 6.0, cnt.OutputData(0))
	assert.Equal(t, []any{2.0, 4.0, 6.0}, relay.Behavior().(*testutil.Relay).Received)

	restored := graph.New(ctx, reg)
	require.NoError(t, restored.Configure(ctx, g.Serialize(), false))
	assert.Equal(t, 6.0, restored.NodeByID(cnt.ID()).Behavior().(*math.Counter).Count())

	require.NoError(t, cnt.Behavior().(*math.Counter).OnAction(cnt, "reset", nil))
	assert.Equal(t, 0.0, counter.Count())
}
