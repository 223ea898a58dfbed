package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/testutil"
)

func TestConnect_SharesLinkIDBetweenEndpoints(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "test/source", "A")
	c := f.add(t, "test/sink", "C")

	link := connect(t, a, 0, c, 1)

	require.NotNil(t, c.Input(1).Link)
	assert.Equal(t, link.ID, *c.Input(1).Link)
	assert.Equal(t, []graph.LinkID{link.ID}, a.Output(0).Links)
	assert.Equal(t, "number", link.Type)
	assert.Equal(t, link, f.g.Link(link.ID))
	assert.Equal(t, a, c.InputNode(1))
	assert.Equal(t, []*graph.Node{c}, a.OutputNodes(0))

	t.Run("disconnect from input side", func(t *testing.T) {
		require.NoError(t, c.DisconnectInput(graph.At(1)))
		assert.Nil(t, c.Input(1).Link)
		assert.Empty(t, a.Output(0).Links)
		assert.Zero(t, f.g.LinkCount())
	})

	t.Run("disconnect from output side", func(t *testing.T) {
		link := connect(t, a, 0, c, 1)
		require.NoError(t, a.DisconnectOutput(graph.Named("out"), nil))
		assert.Nil(t, c.Input(1).Link)
		assert.Empty(t, a.Output(0).Links)
		assert.Nil(t, f.g.Link(link.ID))
	})
}

func TestConnect_SelfLoopFails(t *testing.T) {
	f := newFixture(t)
	p := f.add(t, "test/passthrough", "P")

	link, err := p.Connect(graph.At(0), p, graph.At(0))

	require.ErrorIs(t, err, graph.ErrSelfLoop)
	require.ErrorIs(t, err, graph.ErrInvalidOperation)
	assert.Nil(t, link)
	assert.Zero(t, f.g.LinkCount())
	assert.Nil(t, p.Input(0).Link)
}

func TestConnect_EventToNumberFails(t *testing.T) {
	f := newFixture(t)
	e := f.add(t, "test/emitter", "E")
	c := f.add(t, "test/sink", "C")

	link, err := e.Connect(graph.Named("fire"), c, graph.Named("a"))

	require.ErrorIs(t, err, graph.ErrIncompatibleTypes)
	assert.Nil(t, link)
	assert.Zero(t, f.g.LinkCount())
	assert.Empty(t, e.Output(0).Links)
}

func TestConnect_ResolutionErrors(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "test/source", "A")
	c := f.add(t, "test/sink", "C")
	detached, err := f.reg.Create("test/sink", "D")
	require.NoError(t, err)

	other := newFixture(t)
	foreign := other.add(t, "test/sink", "F")

	testCases := []struct {
		name    string
		out     graph.SlotRef
		target  *graph.Node
		in      graph.SlotRef
		wantErr error
	}{
		{"unknown output name", graph.Named("nope"), c, graph.At(0), graph.ErrSlotNotFound},
		{"output index out of range", graph.At(3), c, graph.At(0), graph.ErrSlotOutOfRange},
		{"unknown input name", graph.At(0), c, graph.Named("nope"), graph.ErrNotFound},
		{"input index out of range", graph.At(0), c, graph.At(-1), graph.ErrInvalidOperation},
		{"nil target", graph.At(0), nil, graph.At(0), graph.ErrNodeNotFound},
		{"detached target", graph.At(0), detached, graph.At(0), graph.ErrDetached},
		{"target in another graph", graph.At(0), foreign, graph.At(0), graph.ErrForeignNode},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			link, err := a.Connect(tc.out, tc.target, tc.in)
			require.ErrorIs(t, err, tc.wantErr)
			assert.Nil(t, link)
			assert.Zero(t, f.g.LinkCount())
		})
	}
}

func TestConnect_ReplacesExistingInputLink(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "test/source", "A")
	b := f.add(t, "test/source", "B")
	c := f.add(t, "test/sink", "C")

	first := connect(t, a, 0, c, 0)
	second := connect(t, b, 0, c, 0)

	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, second.ID, *c.Input(0).Link)
	assert.Empty(t, a.Output(0).Links)
	assert.Nil(t, f.g.Link(first.ID))
	assert.Equal(t, 1, f.g.LinkCount())
}

func TestConnect_VetoLeavesPreviousOccupantDisconnected(t *testing.T) {
	f := newFixture(t)
	p1 := f.add(t, "test/probe", "P1")
	p2 := f.add(t, "test/probe", "P2")
	p3 := f.add(t, "test/probe", "P3")
	connect(t, p1, 0, p2, 0)

	p2.SetProperty("veto", true)
	link, err := p3.Connect(graph.At(0), p2, graph.At(0))

	require.ErrorIs(t, err, graph.ErrConnectionVetoed)
	assert.Nil(t, link)
	assert.Nil(t, p2.Input(0).Link)
	assert.Zero(t, f.g.LinkCount())

	probe := p2.Behavior().(*testutil.Probe)
	assert.Equal(t, []string{
		"added",
		"connections:input:0:true",
		"property:veto",
		"connections:input:0:false",
	}, probe.Calls)
}

func TestDisconnectOutput_SingleTarget(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "test/source", "A")
	c1 := f.add(t, "test/sink", "C1")
	c2 := f.add(t, "test/sink", "C2")
	connect(t, a, 0, c1, 0)
	kept := connect(t, a, 0, c2, 0)

	require.NoError(t, a.DisconnectOutput(graph.At(0), c1))

	assert.Nil(t, c1.Input(0).Link)
	assert.Equal(t, []graph.LinkID{kept.ID}, a.Output(0).Links)
	assert.Equal(t, 1, f.g.LinkCount())
}

func TestDisconnectInput_EmptySlotIsNoop(t *testing.T) {
	f := newFixture(t)
	c := f.add(t, "test/sink", "C")

	require.NoError(t, c.DisconnectInput(graph.At(0)))
	require.ErrorIs(t, c.DisconnectInput(graph.At(5)), graph.ErrSlotOutOfRange)
}

func TestIsValidConnection(t *testing.T) {
	testCases := []struct {
		a, b string
		want bool
	}{
		{"", "number", true},
		{"number", "", true},
		{"", graph.EventType, true},
		{"number", "number", true},
		{"Number", "NUMBER", true},
		{"number", "string", false},
		{graph.EventType, "number", false},
		{"number", graph.EventType, false},
		{graph.EventType, "Event", true},
	}
	for _, tc := range testCases {
		assert.Equal(t, tc.want, graph.IsValidConnection(tc.a, tc.b), "%q -> %q", tc.a, tc.b)
	}
}
