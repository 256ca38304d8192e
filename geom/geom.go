// Package geom provides the small set of 2D primitives the routing
// engine needs: points, segments, Euclidean distance, point-to-segment
// distance, and linear interpolation along a segment.
//
// All coordinates are plain float64 pairs in an arbitrary planar unit
// system (the engine never assumes pixels, metres, or degrees).
package geom

import "math"

// degenerateLenSq is the squared-length floor below which a segment is
// treated as a single point when projecting onto it.
const degenerateLenSq = 1e-9

// Point is a location in the plane.
type Point struct {
	X float64
	Y float64
}

// Segment is a straight line between two points.
type Segment struct {
	A Point
	B Point
}

// Dist returns the Euclidean distance between p and q.
// Complexity: O(1).
func Dist(p, q Point) float64 {
	return math.Hypot(q.X-p.X, q.Y-p.Y)
}

// Lerp returns the point at parameter t ∈ [0,1] along the segment from
// a to b; t=0 yields a, t=1 yields b.
// Complexity: O(1).
func Lerp(a, b Point, t float64) Point {
	return Point{
		X: a.X + t*(b.X-a.X),
		Y: a.Y + t*(b.Y-a.Y),
	}
}

// DistToSegment returns the shortest Euclidean distance from p to the
// segment s. Degenerate segments (A ≈ B) fall back to point distance.
// Complexity: O(1).
func DistToSegment(p Point, s Segment) float64 {
	_, closest := ProjectOnSegment(p, s)

	return Dist(p, closest)
}

// DistSegments returns the shortest Euclidean distance between the two
// segments: zero when they intersect, otherwise the minimum of the
// four endpoint-to-segment distances.
// Complexity: O(1).
func DistSegments(s, t Segment) float64 {
	if SegmentsIntersect(s, t) {
		return 0
	}

	d := DistToSegment(s.A, t)
	d = math.Min(d, DistToSegment(s.B, t))
	d = math.Min(d, DistToSegment(t.A, s))
	d = math.Min(d, DistToSegment(t.B, s))

	return d
}

// SegmentsIntersect reports whether the two segments share at least
// one point, using orientation tests with collinear special cases.
// Complexity: O(1).
func SegmentsIntersect(s, t Segment) bool {
	d1 := cross(t.A, t.B, s.A)
	d2 := cross(t.A, t.B, s.B)
	d3 := cross(s.A, s.B, t.A)
	d4 := cross(s.A, s.B, t.B)

	if ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0)) {
		return true
	}

	// Collinear touching cases.
	switch {
	case d1 == 0 && onSegment(t.A, t.B, s.A):
		return true
	case d2 == 0 && onSegment(t.A, t.B, s.B):
		return true
	case d3 == 0 && onSegment(s.A, s.B, t.A):
		return true
	case d4 == 0 && onSegment(s.A, s.B, t.B):
		return true
	}

	return false
}

// cross returns the z-component of (b-a) × (p-a).
func cross(a, b, p Point) float64 {
	return (b.X-a.X)*(p.Y-a.Y) - (b.Y-a.Y)*(p.X-a.X)
}

// onSegment reports whether p, known collinear with ab, lies within
// the bounding box of ab.
func onSegment(a, b, p Point) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// ProjectOnSegment projects p onto s and returns the clamped parameter
// t ∈ [0,1] along with the closest point on the segment.
// Complexity: O(1).
func ProjectOnSegment(p Point, s Segment) (float64, Point) {
	// Segment direction vector.
	abX := s.B.X - s.A.X
	abY := s.B.Y - s.A.Y

	lenSq := abX*abX + abY*abY
	if lenSq < degenerateLenSq {
		// Degenerate segment: closest point is the (shared) endpoint.
		return 0, s.A
	}

	// Project AP onto AB and clamp to the segment.
	t := ((p.X-s.A.X)*abX + (p.Y-s.A.Y)*abY) / lenSq
	t = math.Max(0, math.Min(1, t))

	return t, Lerp(s.A, s.B, t)
}
