// Package effects_test validates effect membership resolution, the
// incremental effective-weight cache, and the apply-then-remove
// restoration law.
package effects_test

import (
	"testing"

	"github.com/dynroute/dynroute/core"
	"github.com/dynroute/dynroute/effects"
	"github.com/dynroute/dynroute/geom"
	"github.com/stretchr/testify/require"
)

// lineGraph builds A(0,0) ↔ B(100,0) ↔ C(200,0), weight 5 per
// direction. Distances are large relative to the default proximity
// threshold (20), so effects drawn near one edge do not leak onto the
// other.
func lineGraph(t *testing.T) *core.Graph {
	t.Helper()
	g := core.NewGraph()
	err := g.Load(
		[]core.NodeSpec{{ID: "A", X: 0, Y: 0}, {ID: "B", X: 100, Y: 0}, {ID: "C", X: 200, Y: 0}},
		[]core.EdgeSpec{
			{From: "A", To: "B", Weight: 5}, {From: "B", To: "A", Weight: 5},
			{From: "B", To: "C", Weight: 5}, {From: "C", To: "B", Weight: 5},
		},
	)
	require.NoError(t, err)

	return g
}

// nearAB is a short stroke crossing the middle of edge A↔B.
var nearAB = geom.Segment{A: geom.Point{X: 50, Y: -10}, B: geom.Point{X: 50, Y: 10}}

// nearBC crosses the middle of edge B↔C.
var nearBC = geom.Segment{A: geom.Point{X: 150, Y: -10}, B: geom.Point{X: 150, Y: 10}}

func weight(t *testing.T, g *core.Graph, r *effects.Registry, from, to string) float64 {
	t.Helper()
	e, err := g.Edge(from, to)
	require.NoError(t, err)

	return r.EffectiveWeight(e)
}

func TestApplyCongestion_TouchesNearbyEdgesOnly(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	id, err := r.ApplyCongestion(nearAB, effects.Heavy)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	// Both directions of A↔B gain the heavy penalty; B↔C untouched.
	require.Equal(t, 205.0, weight(t, g, r, "A", "B"))
	require.Equal(t, 205.0, weight(t, g, r, "B", "A"))
	require.Equal(t, 5.0, weight(t, g, r, "B", "C"))
	require.Equal(t, 5.0, weight(t, g, r, "C", "B"))
}

func TestApplyCongestion_UnknownIntensity(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	_, err := r.ApplyCongestion(nearAB, effects.Intensity(42))
	require.ErrorIs(t, err, effects.ErrBadIntensity)
	require.Equal(t, 0, r.Count())
	require.Equal(t, 5.0, weight(t, g, r, "A", "B"))
}

func TestApplyBlockage_SetsImpassable(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	_, err := r.ApplyBlockage(nearBC)
	require.NoError(t, err)
	require.Equal(t, effects.Impassable, weight(t, g, r, "B", "C"))
	require.Equal(t, effects.Impassable, weight(t, g, r, "C", "B"))
	require.Equal(t, 5.0, weight(t, g, r, "A", "B"))
}

func TestBlockage_WinsOverCongestion(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	_, err := r.ApplyCongestion(nearAB, effects.Light)
	require.NoError(t, err)
	_, err = r.ApplyBlockage(nearAB)
	require.NoError(t, err)

	require.Equal(t, effects.Impassable, weight(t, g, r, "A", "B"))
}

func TestRemove_RestoresRemainingLayering(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	lightID, err := r.ApplyCongestion(nearAB, effects.Light)
	require.NoError(t, err)
	heavyID, err := r.ApplyCongestion(nearAB, effects.Heavy)
	require.NoError(t, err)
	require.Equal(t, 5.0+50+200, weight(t, g, r, "A", "B"))

	// Removing one layer leaves the other intact.
	require.NoError(t, r.Remove(heavyID))
	require.Equal(t, 55.0, weight(t, g, r, "A", "B"))

	// Removing the last layer restores the base weight exactly.
	require.NoError(t, r.Remove(lightID))
	require.Equal(t, 5.0, weight(t, g, r, "A", "B"))
	require.Equal(t, 0, r.Count())
}

func TestRemove_UnknownID(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())
	require.ErrorIs(t, r.Remove("nope"), effects.ErrUnknownEffect)
}

func TestEffectiveWeight_NeverBelowBase(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	_, err := r.ApplyCongestion(nearAB, effects.Moderate)
	require.NoError(t, err)
	_, err = r.ApplySignal(geom.Point{X: 150, Y: 5}, effects.SignalDurations{Red: 10, Green: 10, Yellow: 3})
	require.NoError(t, err)

	for _, e := range g.Edges() {
		w := r.EffectiveWeight(e)
		require.GreaterOrEqual(t, w, e.Weight, "edge %s→%s", e.From, e.To)
	}
}

func TestSignalEffect_AdvanceUpdatesPenalty(t *testing.T) {
	g := lineGraph(t)
	cfg := effects.DefaultConfig()
	r := effects.NewRegistry(g, cfg)

	_, err := r.ApplySignal(geom.Point{X: 50, Y: 5}, effects.SignalDurations{Red: 10, Green: 10, Yellow: 4})
	require.NoError(t, err)

	// Red with 10 remaining.
	require.InDelta(t, 5+cfg.RedRate*10, weight(t, g, r, "A", "B"), 1e-9)

	// Advance 6: red with 4 remaining.
	r.Advance(6)
	require.InDelta(t, 5+cfg.RedRate*4, weight(t, g, r, "A", "B"), 1e-9)

	// Advance 4: transition into green, full 10 remaining.
	r.Advance(4)
	require.InDelta(t, 5+cfg.GreenRate*10, weight(t, g, r, "A", "B"), 1e-9)
}

func TestRemoveNear_RemovesWithinRadius(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	_, err := r.ApplyCongestion(nearAB, effects.Light)
	require.NoError(t, err)
	_, err = r.ApplyBlockage(nearBC)
	require.NoError(t, err)

	removed, err := r.RemoveNear(geom.Point{X: 50, Y: 0}, 15)
	require.NoError(t, err)
	require.Equal(t, 1, removed)
	require.Equal(t, 5.0, weight(t, g, r, "A", "B"))
	require.Equal(t, effects.Impassable, weight(t, g, r, "B", "C"))
}

func TestRemoveNear_BadRadius(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())
	_, err := r.RemoveNear(geom.Point{}, 0)
	require.ErrorIs(t, err, effects.ErrBadRadius)
}

func TestRemoveOfKind_And_Clear(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	_, err := r.ApplyCongestion(nearAB, effects.Light)
	require.NoError(t, err)
	_, err = r.ApplyCongestion(nearBC, effects.Heavy)
	require.NoError(t, err)
	_, err = r.ApplyBlockage(nearAB)
	require.NoError(t, err)

	require.Equal(t, 2, r.RemoveOfKind(effects.KindCongestion))
	require.Equal(t, 1, r.Count())

	r.Clear()
	require.Equal(t, 0, r.Count())
	require.Equal(t, 5.0, weight(t, g, r, "A", "B"))
}

func TestReassign_MovesMembershipToSubEdges(t *testing.T) {
	g := lineGraph(t)
	r := effects.NewRegistry(g, effects.DefaultConfig())

	_, err := r.ApplyCongestion(nearAB, effects.Heavy)
	require.NoError(t, err)

	// Simulate a split of A→B into A→V and V→B.
	require.NoError(t, g.AddNode(&core.Node{
		ID:     "V",
		At:     geom.Point{X: 50, Y: 0},
		Kind:   core.NodeVirtual,
		Origin: &core.SplitOrigin{From: "A", To: "B", Ratio: 0.5},
	}))
	require.NoError(t, g.RemoveEdge("A", "B"))
	require.NoError(t, g.AddEdge("A", "V", 2.5))
	require.NoError(t, g.AddEdge("V", "B", 2.5))

	r.Reassign(
		[]core.EdgeKey{{From: "A", To: "B"}},
		[]core.EdgeKey{{From: "A", To: "V"}, {From: "V", To: "B"}},
	)

	// Both sub-edges inherit the congestion penalty.
	require.Equal(t, 202.5, weight(t, g, r, "A", "V"))
	require.Equal(t, 202.5, weight(t, g, r, "V", "B"))
}
