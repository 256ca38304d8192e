// Package virtual_test validates edge splitting, endpoint snapping,
// the split/remove round-trip law, pinning, and effect-membership
// redistribution across splits.
package virtual_test

import (
	"testing"

	"github.com/dynroute/dynroute/core"
	"github.com/dynroute/dynroute/effects"
	"github.com/dynroute/dynroute/geom"
	"github.com/dynroute/dynroute/virtual"
	"github.com/stretchr/testify/require"
)

// twoWayGraph builds A(0,0) ↔ B(100,0), weight 10 each direction.
func twoWayGraph(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()
	err := g.Load(
		[]core.NodeSpec{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 100, Y: 0}},
		[]core.EdgeSpec{{From: "A", To: "B", Weight: 10}, {From: "B", To: "A", Weight: 10}},
	)
	require.NoError(t, err)

	return g
}

func TestInsert_SplitsBothDirections(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	id, err := m.Insert("A", "B", 0.25)
	require.NoError(t, err)
	require.Equal(t, "virtual:A:B:0.250", id)

	n, err := g.Node(id)
	require.NoError(t, err)
	require.Equal(t, core.NodeVirtual, n.Kind)
	require.Equal(t, geom.Point{X: 25, Y: 0}, n.At)
	require.Equal(t, &core.SplitOrigin{From: "A", To: "B", Ratio: 0.25}, n.Origin)

	// Original edges are gone; sub-edges carry the divided weights.
	require.False(t, g.HasEdge("A", "B"))
	require.False(t, g.HasEdge("B", "A"))

	av, err := g.Edge("A", id)
	require.NoError(t, err)
	require.Equal(t, 2.5, av.Weight)
	vb, err := g.Edge(id, "B")
	require.NoError(t, err)
	require.Equal(t, 7.5, vb.Weight)

	bv, err := g.Edge("B", id)
	require.NoError(t, err)
	require.Equal(t, 7.5, bv.Weight)
	va, err := g.Edge(id, "A")
	require.NoError(t, err)
	require.Equal(t, 2.5, va.Weight)
}

func TestInsert_OneWayEdge(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.Load(
		[]core.NodeSpec{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 100, Y: 0}},
		[]core.EdgeSpec{{From: "A", To: "B", Weight: 10}},
	))
	m := virtual.NewManager(g, nil)

	id, err := m.Insert("A", "B", 0.5)
	require.NoError(t, err)
	require.True(t, g.HasEdge("A", id))
	require.True(t, g.HasEdge(id, "B"))
	require.False(t, g.HasEdge(id, "A"))
	require.False(t, g.HasEdge("B", id))
}

func TestInsert_RatioOutsideUnitInterval(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	for _, r := range []float64{-0.5, 0, 1, 1.5} {
		_, err := m.Insert("A", "B", r)
		require.ErrorIs(t, err, virtual.ErrBadRatio)
	}
	// Rejected calls leave topology untouched.
	require.True(t, g.HasEdge("A", "B"))
	require.Equal(t, 2, g.NodeCount())
}

func TestInsert_SnapsToNearerEndpoint(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	id, err := m.Insert("A", "B", 0.02)
	require.NoError(t, err)
	require.Equal(t, "A", id)

	id, err = m.Insert("A", "B", 0.99)
	require.NoError(t, err)
	require.Equal(t, "B", id)

	// Snapping creates nothing.
	require.Equal(t, 2, g.NodeCount())
	require.True(t, g.HasEdge("A", "B"))
}

func TestInsert_CustomBand(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil, virtual.WithRatioBand(0.2, 0.8))

	id, err := m.Insert("A", "B", 0.1)
	require.NoError(t, err)
	require.Equal(t, "A", id)
}

func TestInsert_UnknownEdge(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)
	_, err := m.Insert("A", "Z", 0.5)
	require.ErrorIs(t, err, core.ErrEdgeNotFound)
}

func TestInsert_DuplicateID(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	_, err := m.Insert("A", "B", 0.5)
	require.NoError(t, err)

	// The first split consumed edge A→B, so a repeat fails on the
	// missing edge before it can collide on the ID.
	_, err = m.Insert("A", "B", 0.5)
	require.ErrorIs(t, err, core.ErrEdgeNotFound)
}

func TestRemove_RoundTripRestoresOriginal(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	id, err := m.Insert("A", "B", 0.3)
	require.NoError(t, err)
	require.True(t, m.Remove(id))

	// Exactly the pre-split topology and base weights.
	require.False(t, g.HasNode(id))
	require.Equal(t, 2, g.NodeCount())
	require.Equal(t, 2, g.EdgeCount())

	ab, err := g.Edge("A", "B")
	require.NoError(t, err)
	require.Equal(t, 10.0, ab.Weight)
	ba, err := g.Edge("B", "A")
	require.NoError(t, err)
	require.Equal(t, 10.0, ba.Weight)
}

func TestRemove_NestedSplitsUndoneOutOfOrder(t *testing.T) {
	g := core.NewGraph()
	require.NoError(t, g.Load(
		[]core.NodeSpec{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 100, Y: 0}},
		[]core.EdgeSpec{{From: "A", To: "B", Weight: 8}},
	))
	reg := effects.NewRegistry(g, effects.DefaultConfig())
	m := virtual.NewManager(g, reg)

	// Congestion along the whole road keeps every sub-edge a member.
	stroke := geom.Segment{A: geom.Point{X: 0, Y: -5}, B: geom.Point{X: 100, Y: -5}}
	_, err := reg.ApplyCongestion(stroke, effects.Heavy)
	require.NoError(t, err)

	outer, err := m.Insert("A", "B", 0.5)
	require.NoError(t, err)
	inner, err := m.Insert("A", outer, 0.5)
	require.NoError(t, err)

	// Undo the outer split first: its node vanishes while the inner
	// record still names it as an endpoint, so the inner removal
	// cannot reconstitute A → outer.
	require.True(t, m.Remove(outer))
	require.True(t, m.Remove(inner))

	// Topology converged back to the single original edge.
	require.Equal(t, 2, g.NodeCount())
	require.Equal(t, 1, g.EdgeCount())
	ab, err := g.Edge("A", "B")
	require.NoError(t, err)
	require.Equal(t, 8.0, ab.Weight)
	require.Equal(t, 208.0, reg.EffectiveWeight(ab))

	// No membership keys left pointing at edges that never came back.
	efs := reg.Effects()
	require.Len(t, efs, 1)
	require.Equal(t, []core.EdgeKey{{From: "A", To: "B"}}, efs[0].Edges)
}

func TestRemove_NoOpOnPersistentAndUnknown(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	require.False(t, m.Remove("A"))
	require.False(t, m.Remove("ghost"))
	require.True(t, g.HasNode("A"))
}

func TestPin_BlocksRemoval(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	id, err := m.Insert("A", "B", 0.5)
	require.NoError(t, err)

	m.Pin(id)
	m.Pin(id)
	require.False(t, m.IsRemovable(id))
	require.False(t, m.Remove(id))
	require.True(t, g.HasNode(id))

	m.Unpin(id)
	require.False(t, m.IsRemovable(id))
	m.Unpin(id)
	require.True(t, m.IsRemovable(id))
	require.True(t, m.Remove(id))
}

func TestIsRemovable_States(t *testing.T) {
	g := twoWayGraph(t)
	m := virtual.NewManager(g, nil)

	require.False(t, m.IsRemovable("A"))     // persistent
	require.False(t, m.IsRemovable("ghost")) // unknown

	id, err := m.Insert("A", "B", 0.5)
	require.NoError(t, err)
	require.True(t, m.IsRemovable(id))
	require.True(t, m.IsVirtual(id))
	require.False(t, m.IsVirtual("A"))
}

func TestInsert_RedistributesEffectMembership(t *testing.T) {
	g := twoWayGraph(t)
	reg := effects.NewRegistry(g, effects.DefaultConfig())
	m := virtual.NewManager(g, reg)

	// Heavy congestion across the middle of A↔B.
	stroke := geom.Segment{A: geom.Point{X: 50, Y: -10}, B: geom.Point{X: 50, Y: 10}}
	_, err := reg.ApplyCongestion(stroke, effects.Heavy)
	require.NoError(t, err)

	id, err := m.Insert("A", "B", 0.4)
	require.NoError(t, err)

	// Splitting preserves effect coverage on all four sub-edges.
	for _, k := range []core.EdgeKey{
		{From: "A", To: id}, {From: id, To: "B"},
		{From: "B", To: id}, {From: id, To: "A"},
	} {
		e, err := g.Edge(k.From, k.To)
		require.NoError(t, err)
		require.Equal(t, e.Weight+200, reg.EffectiveWeight(e), "edge %s→%s", k.From, k.To)
	}

	// Undoing the split moves coverage back to the whole edge.
	require.True(t, m.Remove(id))
	ab, err := g.Edge("A", "B")
	require.NoError(t, err)
	require.Equal(t, 210.0, reg.EffectiveWeight(ab))
}
