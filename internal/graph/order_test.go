package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/graph"
)

func TestComputeExecutionOrder_RespectsEveryLink(t *testing.T) {
	f := newFixture(t)
	// Added in reverse so insertion order alone would be wrong.
	d := f.add(t, "test/sink", "D")
	c := f.add(t, "test/passthrough", "C")
	b := f.add(t, "test/passthrough", "B")
	a := f.add(t, "test/source", "A")
	connect(t, a, 0, b, 0)
	connect(t, b, 0, c, 0)
	connect(t, c, 0, d, 0)
	connect(t, a, 0, d, 1)

	order := f.g.ComputeExecutionOrder(false)
	require.Len(t, order, 4)

	pos := positions(order)
	for _, l := range f.g.Links() {
		assert.Less(t, pos[l.OriginID], pos[l.TargetID], "link %s", l)
	}
	for i, n := range order {
		assert.Equal(t, i, n.Order())
	}
}

func TestComputeExecutionOrder_CycleKeepsEveryNode(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "test/passthrough", "A")
	b := f.add(t, "test/passthrough", "B")
	c := f.add(t, "test/passthrough", "C")
	connect(t, a, 0, b, 0)
	connect(t, b, 0, c, 0)
	connect(t, c, 0, a, 0)

	order := f.g.ComputeExecutionOrder(false)

	require.Len(t, order, 3)
	assert.ElementsMatch(t, []*graph.Node{a, b, c}, order)
}

func TestComputeExecutionOrder_OnlyExecutable(t *testing.T) {
	f := newFixture(t)
	r1 := f.add(t, "test/relay", "R1")
	s := f.add(t, "test/source", "S")
	c := f.add(t, "test/sink", "C")
	connect(t, s, 0, c, 0)

	all := f.g.ComputeExecutionOrder(false)
	executable := f.g.ComputeExecutionOrder(true)

	assert.Len(t, all, 3)
	assert.Equal(t, []*graph.Node{s, c}, executable)
	assert.NotContains(t, executable, r1)
}

func TestUpdateExecutionOrder_FollowsTopology(t *testing.T) {
	f := newFixture(t)
	c := f.add(t, "test/sink", "C")
	a := f.add(t, "test/source", "A")
	assert.Equal(t, []*graph.Node{c, a}, f.g.Order())

	connect(t, a, 0, c, 0)
	assert.Equal(t, []*graph.Node{a, c}, f.g.Order())

	f.g.Remove(a)
	assert.Equal(t, []*graph.Node{c}, f.g.Order())
}
