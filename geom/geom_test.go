package geom_test

import (
	"math"
	"testing"

	"github.com/dynroute/dynroute/geom"
	"github.com/stretchr/testify/require"
)

func TestDist_Basic(t *testing.T) {
	// 3-4-5 triangle.
	d := geom.Dist(geom.Point{X: 0, Y: 0}, geom.Point{X: 3, Y: 4})
	require.Equal(t, 5.0, d)
}

func TestLerp_Endpoints(t *testing.T) {
	a := geom.Point{X: 2, Y: 2}
	b := geom.Point{X: 10, Y: 6}
	require.Equal(t, a, geom.Lerp(a, b, 0))
	require.Equal(t, b, geom.Lerp(a, b, 1))
	require.Equal(t, geom.Point{X: 6, Y: 4}, geom.Lerp(a, b, 0.5))
}

func TestDistToSegment_Perpendicular(t *testing.T) {
	// Horizontal segment y=0 from x=0..10; point above the middle.
	s := geom.Segment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}}
	require.Equal(t, 3.0, geom.DistToSegment(geom.Point{X: 5, Y: 3}, s))
}

func TestDistToSegment_BeyondEndpointClamps(t *testing.T) {
	// Point beyond B projects to B, not onto the infinite line.
	s := geom.Segment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 10, Y: 0}}
	d := geom.DistToSegment(geom.Point{X: 13, Y: 4}, s)
	require.Equal(t, 5.0, d)
}

func TestDistToSegment_Degenerate(t *testing.T) {
	// Zero-length segment behaves like a point.
	p := geom.Point{X: 1, Y: 1}
	s := geom.Segment{A: geom.Point{X: 4, Y: 5}, B: geom.Point{X: 4, Y: 5}}
	require.Equal(t, 5.0, geom.DistToSegment(p, s))
}

func TestProjectOnSegment_Ratio(t *testing.T) {
	s := geom.Segment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 8, Y: 0}}
	ratio, closest := geom.ProjectOnSegment(geom.Point{X: 2, Y: 7}, s)
	require.InDelta(t, 0.25, ratio, 1e-12)
	require.InDelta(t, 2.0, closest.X, 1e-12)
	require.Equal(t, 0.0, closest.Y)
}

func TestProjectOnSegment_ClampsOutside(t *testing.T) {
	s := geom.Segment{A: geom.Point{X: 0, Y: 0}, B: geom.Point{X: 8, Y: 0}}
	ratio, _ := geom.ProjectOnSegment(geom.Point{X: -3, Y: 0}, s)
	require.Equal(t, 0.0, ratio)
	ratio, _ = geom.ProjectOnSegment(geom.Point{X: 99, Y: 0}, s)
	require.Equal(t, 1.0, ratio)
	require.False(t, math.IsNaN(ratio))
}
