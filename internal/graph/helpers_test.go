package graph_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/registry"
	"github.com/vk/flowgrid/internal/testutil"
)

type fixture struct {
	ctx context.Context
	reg *registry.Registry
	g   *graph.Graph
}

func newFixture(t *testing.T, opts ...graph.Option) *fixture {
	t.Helper()
	ctx, _ := testutil.Context(t)
	reg := testutil.Registry()
	return &fixture{ctx: ctx, reg: reg, g: graph.New(ctx, reg, opts...)}
}

// add creates a node of typeName and adds it to the fixture graph.
func (f *fixture) add(t *testing.T, typeName, title string, opts ...graph.NodeOption) *graph.Node {
	t.Helper()
	n, err := f.reg.Create(typeName, title, opts...)
	require.NoError(t, err)
	require.NoError(t, f.g.Add(n))
	return n
}

func connect(t *testing.T, from *graph.Node, out int, to *graph.Node, in int) *graph.Link {
	t.Helper()
	l, err := from.Connect(graph.At(out), to, graph.At(in))
	require.NoError(t, err)
	require.NotNil(t, l)
	return l
}

func positions(order []*graph.Node) map[graph.NodeID]int {
	pos := make(map[graph.NodeID]int, len(order))
	for i, n := range order {
		pos[n.ID()] = i
	}
	return pos
}
