package graph_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/flowgrid/internal/graph"
	"github.com/vk/flowgrid/internal/testutil"
)

func TestTrigger_DeliversActionsAndOnTriggerTicks(t *testing.T) {
	f := newFixture(t)
	e := f.add(t, "test/emitter", "E")
	r := f.add(t, "test/relay", "R")
	p := f.add(t, "test/probe", "P", graph.WithMode(graph.ModeOnTrigger))
	connect(t, e, 0, r, 0)
	connect(t, r, 0, p, 0)

	require.NoError(t, f.g.RunStep(2, false))

	assert.Equal(t, []any{1, 2}, r.Behavior().(*testutil.Relay).Received)
	assert.Equal(t, 2, p.Behavior().(*testutil.Probe).Ticks)
	link := f.g.Link(*r.Input(0).Link)
	require.NotNil(t, link)
	assert.False(t, link.LastFired.IsZero())
}

func TestTrigger_FiltersByActionName(t *testing.T) {
	f := newFixture(t)
	r := f.add(t, "test/relay", "R")
	target := f.add(t, "test/relay", "T")
	connect(t, r, 0, target, 0)

	require.NoError(t, r.Trigger("other", "x"))
	assert.Empty(t, target.Behavior().(*testutil.Relay).Received)

	require.NoError(t, r.Trigger("out", "y"))
	require.NoError(t, r.Trigger("", "z"))
	assert.Equal(t, []any{"y", "z"}, target.Behavior().(*testutil.Relay).Received)
}

func TestTriggerSlot_SingleLink(t *testing.T) {
	f := newFixture(t)
	r := f.add(t, "test/relay", "R")
	t1 := f.add(t, "test/relay", "T1")
	t2 := f.add(t, "test/relay", "T2")
	connect(t, r, 0, t1, 0)
	only := connect(t, r, 0, t2, 0)

	require.NoError(t, r.TriggerSlot(0, "p", &only.ID))

	assert.Empty(t, t1.Behavior().(*testutil.Relay).Received)
	assert.Equal(t, []any{"p"}, t2.Behavior().(*testutil.Relay).Received)
}

func TestTrigger_DepthGuardCutsRings(t *testing.T) {
	f := newFixture(t, graph.WithConfig(graph.Config{MaxTriggerDepth: 8}))
	r1 := f.add(t, "test/relay", "R1")
	r2 := f.add(t, "test/relay", "R2")
	connect(t, r1, 0, r2, 0)
	connect(t, r2, 0, r1, 0)

	received := func() int {
		return len(r1.Behavior().(*testutil.Relay).Received) + len(r2.Behavior().(*testutil.Relay).Received)
	}

	err := r1.Trigger("out", "ping")
	require.ErrorIs(t, err, graph.ErrTriggerDepthExceeded)
	require.ErrorIs(t, err, graph.ErrExecutionFault)
	assert.Equal(t, 8, received())

	// The depth counter unwinds, so the next chain gets the full budget.
	err = r1.Trigger("out", "ping")
	require.ErrorIs(t, err, graph.ErrTriggerDepthExceeded)
	assert.Equal(t, 16, received())
}

func TestTrigger_RingFaultsGraphDuringStep(t *testing.T) {
	f := newFixture(t, graph.WithConfig(graph.Config{MaxTriggerDepth: 4}))
	e := f.add(t, "test/emitter", "E")
	r1 := f.add(t, "test/relay", "R1")
	r2 := f.add(t, "test/relay", "R2")
	connect(t, e, 0, r1, 0)
	connect(t, r1, 0, r2, 0)
	connect(t, r2, 0, r1, 0)

	require.NoError(t, f.g.RunStep(1, false))

	assert.True(t, f.g.Faulted())
	assert.ErrorIs(t, f.g.LastFault(), graph.ErrTriggerDepthExceeded)
}
