package burn

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Predicate decides whether a geometry is visible in a rectangle.
type Predicate func(b Bounds, geom orb.MultiPolygon) bool

// Intersects is the default Predicate: the closed rectangle b and the polygon
// share at least one point.
//
// This covers boundary crossings, containment in either direction, and
// polygons that only touch an edge or corner of the rectangle. Only the outer
// ring of each polygon is considered.
func Intersects(b Bounds, geom orb.MultiPolygon) bool {
	if len(geom) == 0 {
		return false
	}
	if !b.Intersects(boundsFromOrb(geom.Bound())) {
		return false
	}
	for _, poly := range geom {
		if len(poly) == 0 || len(poly[0]) == 0 {
			continue
		}
		if ringIntersectsRect(b, poly[0]) {
			return true
		}
	}
	return false
}

func ringIntersectsRect(b Bounds, ring orb.Ring) bool {
	// Polygon vertex inside the rectangle (polygon inside, or overlapping)
	for _, p := range ring {
		if b.Contains(p[0], p[1]) {
			return true
		}
	}

	// Rectangle corner inside the polygon (rectangle inside the polygon)
	corners := b.corners()
	for _, c := range corners {
		if planar.RingContains(ring, c) {
			return true
		}
	}

	// Edges crossing without any vertex inside the other shape
	n := len(ring)
	for i := 0; i < n; i++ {
		a1, a2 := ring[i], ring[(i+1)%n]
		for j := 0; j < 4; j++ {
			if segmentsIntersect(a1, a2, corners[j], corners[(j+1)%4]) {
				return true
			}
		}
	}
	return false
}

// orientation returns >0 for counter-clockwise, <0 for clockwise, 0 for collinear.
func orientation(p, q, r orb.Point) float64 {
	return (q[0]-p[0])*(r[1]-p[1]) - (q[1]-p[1])*(r[0]-p[0])
}

// onSegment reports whether r, known to be collinear with p-q, lies on p-q.
func onSegment(p, q, r orb.Point) bool {
	return r[0] >= min(p[0], q[0]) && r[0] <= max(p[0], q[0]) &&
		r[1] >= min(p[1], q[1]) && r[1] <= max(p[1], q[1])
}

func sign(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	default:
		return 0
	}
}

// segmentsIntersect reports whether segments p1-p2 and p3-p4 share a point.
func segmentsIntersect(p1, p2, p3, p4 orb.Point) bool {
	d1 := sign(orientation(p3, p4, p1))
	d2 := sign(orientation(p3, p4, p2))
	d3 := sign(orientation(p1, p2, p3))
	d4 := sign(orientation(p1, p2, p4))

	if d1 != d2 && d3 != d4 && d1 != 0 && d2 != 0 && d3 != 0 && d4 != 0 {
		return true
	}

	switch {
	case d1 == 0 && onSegment(p3, p4, p1):
		return true
	case d2 == 0 && onSegment(p3, p4, p2):
		return true
	case d3 == 0 && onSegment(p1, p2, p3):
		return true
	case d4 == 0 && onSegment(p1, p2, p4):
		return true
	}
	return false
}
