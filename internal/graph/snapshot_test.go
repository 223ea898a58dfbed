package graph_test

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/testutil"
)

func buildSample(t *testing.T, f *fixture) (a, c, p *graph.Node) {
	t.Helper()
	a = f.add(t, "test/source", "A", graph.WithProperty("value", 5))
	c = f.add(t, "test/sink", "C", graph.WithPos(300, 120))
	p = f.add(t, "test/probe", "P", graph.WithMode(graph.ModeNever))
	connect(t, a, 0, c, 1)
	p.Behavior().(*testutil.Probe).Ticks = 7
	f.g.AddGlobalInput("gain", "number", 2.0)
	return a, c, p
}

func TestSnapshot_RoundTripInMemory(t *testing.T) {
	src := newFixture(t)
	a, c, p := buildSample(t, src)
	snap := src.g.Serialize()

	dst := newFixture(t)
	require.NoError(t, dst.g.Configure(dst.ctx, snap, false))

	assert.Equal(t, src.g.NodeCount(), dst.g.NodeCount())
	require.Equal(t, src.g.LinkCount(), dst.g.LinkCount())
	for i, l := range src.g.Links() {
		assert.Equal(t, l.Tuple(), dst.g.Links()[i].Tuple())
	}
	for _, n := range []*graph.Node{a, c, p} {
		m := dst.g.NodeByID(n.ID())
		require.NotNil(t, m, "node %s", n)
		assert.Equal(t, n.Type(), m.Type())
		assert.Equal(t, n.Title, m.Title)
		assert.Equal(t, n.Pos, m.Pos)
		assert.Equal(t, n.Mode, m.Mode)
		if diff := cmp.Diff(n.Properties(), m.Properties()); diff != "" {
			t.Errorf("properties of %s mismatch (-want +got):\n%s", n, diff)
		}
	}

	probe := dst.g.NodeByID(p.ID()).Behavior().(*testutil.Probe)
	assert.Equal(t, 7, probe.Ticks)
	assert.Equal(t, []string{"added", "property:veto", "configured"}, probe.Calls)

	gain, ok := dst.g.GlobalInput("gain")
	require.True(t, ok)
	assert.Equal(t, 2.0, gain.Value)

	next := dst.add(t, "test/source", "next")
	assert.Greater(t, next.ID(), p.ID())
}

func TestSnapshot_RoundTripJSON(t *testing.T) {
	src := newFixture(t)
	a, _, p := buildSample(t, src)

	raw, err := json.Marshal(src.g.Serialize())
	require.NoError(t, err)

	var generic map[string]any
	require.NoError(t, json.Unmarshal(raw, &generic))
	assert.Equal(t, []any{[]any{1.0, 1.0, 0.0, 2.0, 1.0}}, generic["links"])

	var snap graph.Snapshot
	require.NoError(t, json.Unmarshal(raw, &snap))
	dst := newFixture(t)
	require.NoError(t, dst.g.Configure(dst.ctx, snap, false))

	assert.Equal(t, 3, dst.g.NodeCount())
	require.Equal(t, 1, dst.g.LinkCount())
	assert.Equal(t, graph.LinkTuple{1, 1, 0, 2, 1}, dst.g.Links()[0].Tuple())
	v, _ := dst.g.NodeByID(a.ID()).Property("value")
	assert.Equal(t, 5.0, v)
	assert.Equal(t, 7, dst.g.NodeByID(p.ID()).Behavior().(*testutil.Probe).Ticks)
	assert.Equal(t, graph.ModeNever, dst.g.NodeByID(p.ID()).Mode)
}

func TestSnapshot_LegacyTupleLinks(t *testing.T) {
	const doc = `{
		"last_node_id": 2,
		"last_link_id": 0,
		"links": [],
		"nodes": [
			{"id": 1, "type": "test/source", "outputs": [{"name": "out", "type": "number", "links": [7]}]},
			{"id": 2, "type": "test/sink", "inputs": [
				{"name": "a", "type": "number", "link": [7, 1, 0, 2, 0, "number"]},
				{"name": "b", "type": "number", "link": null}
			]}
		]
	}`
	var snap graph.Snapshot
	require.NoError(t, json.Unmarshal([]byte(doc), &snap))

	f := newFixture(t)
	require.NoError(t, f.g.Configure(f.ctx, snap, false))

	link := f.g.Link(7)
	require.NotNil(t, link)
	assert.Equal(t, graph.LinkTuple{7, 1, 0, 2, 0}, link.Tuple())
	assert.Equal(t, "number", link.Type)

	sink := f.g.NodeByID(2)
	assert.Equal(t, graph.LinkID(7), *sink.Input(0).Link)
	assert.Nil(t, sink.Input(1).Link)

	next := connect(t, f.g.NodeByID(1), 0, sink, 1)
	assert.Equal(t, graph.LinkID(8), next.ID)
}

func TestSnapshot_UnknownTypesBecomePlaceholders(t *testing.T) {
	// --- Arrange ---
	const doc = `{
		"last_node_id": 2,
		"last_link_id": 3,
		"links": [[3, 1, 0, 2, 0]],
		"nodes": [
			{"id": 1, "type": "test/missing", "title": "lost",
			 "outputs": [{"name": "out", "type": "number", "links": [3]}],
			 "extra": {"blob": "kept"}},
			{"id": 2, "type": "test/sink", "inputs": [
				{"name": "a", "type": "number", "link": 3},
				{"name": "b", "type": "number"}
			]}
		]
	}`
	var snap graph.Snapshot
	require.NoError(t, json.Unmarshal([]byte(doc), &snap))
	f := newFixture(t)

	// --- Act ---
	err := f.g.Configure(f.ctx, snap, false)

	// --- Assert ---
	require.ErrorIs(t, err, graph.ErrUnknownNodeType)
	require.ErrorIs(t, err, graph.ErrNotFound)
	assert.Equal(t, 2, f.g.NodeCount())
	assert.Equal(t, 1, f.g.LinkCount())

	lost := f.g.NodeByID(1)
	require.NotNil(t, lost)
	assert.True(t, lost.HasErrors())
	assert.False(t, f.g.NodeByID(2).HasErrors())
	assert.Equal(t, "test/missing", lost.Type())
	assert.Equal(t, "lost", lost.Title)
	require.NotNil(t, f.g.NodeByID(2).Input(0).Link)
	assert.Equal(t, graph.LinkID(3), *f.g.NodeByID(2).Input(0).Link)

	require.NoError(t, f.g.RunStep(1, false))
	assert.False(t, f.g.Faulted())

	out := f.g.Serialize()
	assert.Equal(t, []graph.LinkTuple{{3, 1, 0, 2, 0}}, out.Links)
	var saved *graph.NodeSnapshot
	for i := range out.Nodes {
		if out.Nodes[i].ID == 1 {
			saved = &out.Nodes[i]
		}
	}
	require.NotNil(t, saved)
	assert.Equal(t, "test/missing", saved.Type)
	assert.Equal(t, map[string]any{"blob": "kept"}, saved.Extra)
	require.Len(t, saved.Outputs, 1)
	assert.Equal(t, []graph.LinkRef{{ID: 3}}, saved.Outputs[0].Links)
}

func TestSnapshot_KeepExisting(t *testing.T) {
	// --- Arrange ---
	src := newFixture(t)
	a := src.add(t, "test/source", "A", graph.WithProperty("value", 5))
	c := src.add(t, "test/sink", "C")
	connect(t, a, 0, c, 0)
	snap := src.g.Serialize()

	f := newFixture(t)
	x := f.add(t, "test/source", "X", graph.WithProperty("value", 1))
	y := f.add(t, "test/sink", "Y")
	xy := connect(t, x, 0, y, 1)
	require.Equal(t, graph.LinkID(1), xy.ID)

	// --- Act ---
	require.NoError(t, f.g.Configure(f.ctx, snap, true))

	// --- Assert ---
	assert.Equal(t, 4, f.g.NodeCount())
	assert.Equal(t, 2, f.g.LinkCount())
	assert.Equal(t, x, f.g.NodeByID(1))
	assert.Equal(t, y, f.g.NodeByID(2))

	require.NotNil(t, y.Input(1).Link)
	assert.Equal(t, xy.ID, *y.Input(1).Link)
	assert.Nil(t, y.Input(0).Link)
	assert.Equal(t, graph.LinkTuple{1, 1, 0, 2, 1}, f.g.Link(xy.ID).Tuple())

	loadedA := f.g.FindNodesByTitle("A")
	loadedC := f.g.FindNodesByTitle("C")
	require.Len(t, loadedA, 1)
	require.Len(t, loadedC, 1)
	assert.Equal(t, graph.NodeID(3), loadedA[0].ID())
	assert.Equal(t, graph.NodeID(4), loadedC[0].ID())
	require.NotNil(t, loadedC[0].Input(0).Link)
	merged := *loadedC[0].Input(0).Link
	assert.Equal(t, graph.LinkID(2), merged)
	assert.Equal(t, []graph.LinkID{merged}, loadedA[0].Output(0).Links)
	assert.Equal(t, graph.LinkTuple{2, 3, 0, 4, 0}, f.g.Link(merged).Tuple())

	require.NoError(t, f.g.RunStep(1, true))
	assert.Equal(t, [2]any{nil, 1}, y.Behavior().(*testutil.Sink).Last)
	assert.Equal(t, [2]any{5, nil}, loadedC[0].Behavior().(*testutil.Sink).Last)

	next := connect(t, x, 0, loadedC[0], 1)
	assert.Equal(t, graph.LinkID(3), next.ID)
}

func TestSnapshot_ConfigureWithoutFactory(t *testing.T) {
	ctx, _ := testutil.Context(t)
	g := graph.New(ctx, nil)

	require.ErrorIs(t, g.Configure(ctx, graph.Snapshot{}, false), graph.ErrNoFactory)
}

func TestNode_Clone(t *testing.T) {
	f := newFixture(t)
	a := f.add(t, "test/source", "A", graph.WithProperty("value", 5), graph.WithFlag(graph.FlagPinned, true))
	c := f.add(t, "test/sink", "C")
	connect(t, a, 0, c, 0)

	clone, err := a.Clone(f.reg)
	require.NoError(t, err)

	assert.Nil(t, clone.Graph())
	assert.Equal(t, graph.Detached, clone.ID())
	assert.Equal(t, a.Title, clone.Title)
	assert.True(t, clone.IsPinned())
	v, _ := clone.Property("value")
	assert.Equal(t, 5, v)
	assert.Empty(t, clone.Output(0).Links)

	require.NoError(t, f.g.Add(clone))
	assert.NotEqual(t, a.ID(), clone.ID())
	assert.Equal(t, 1, f.g.LinkCount())
}
