package burn

import (
	"math"

	"github.com/paulmach/orb"
)

// Bounds represents a geographic bounding box in WGS-84 coordinates.
//
// Coordinates are in decimal degrees.
type Bounds struct {
	MinLon float64 // Western edge
	MaxLon float64 // Eastern edge
	MinLat float64 // Southern edge
	MaxLat float64 // Northern edge
}

// Contains returns true if the point (lon, lat) is within the bounds.
//
// Points on the edge are inside.
func (b Bounds) Contains(lon, lat float64) bool {
	return lon >= b.MinLon && lon <= b.MaxLon &&
		lat >= b.MinLat && lat <= b.MaxLat
}

// Intersects returns true if the given bounds intersects with this bounds.
//
// Bounds that only share an edge or a corner intersect.
func (b Bounds) Intersects(other Bounds) bool {
	return !(other.MaxLon < b.MinLon ||
		other.MinLon > b.MaxLon ||
		other.MaxLat < b.MinLat ||
		other.MinLat > b.MaxLat)
}

// Expand returns a new Bounds expanded by the given margin in all directions.
//
// Margin is in decimal degrees.
func (b Bounds) Expand(margin float64) Bounds {
	return Bounds{
		MinLon: b.MinLon - margin,
		MaxLon: b.MaxLon + margin,
		MinLat: b.MinLat - margin,
		MaxLat: b.MaxLat + margin,
	}
}

// Union returns the smallest Bounds containing both b and other.
func (b Bounds) Union(other Bounds) Bounds {
	return Bounds{
		MinLon: math.Min(b.MinLon, other.MinLon),
		MaxLon: math.Max(b.MaxLon, other.MaxLon),
		MinLat: math.Min(b.MinLat, other.MinLat),
		MaxLat: math.Max(b.MaxLat, other.MaxLat),
	}
}

// Valid reports whether all edges are finite and min ≤ max on both axes.
func (b Bounds) Valid() bool {
	for _, v := range []float64{b.MinLon, b.MaxLon, b.MinLat, b.MaxLat} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return b.MinLon <= b.MaxLon && b.MinLat <= b.MaxLat
}

// Bound converts to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{b.MinLon, b.MinLat},
		Max: orb.Point{b.MaxLon, b.MaxLat},
	}
}

// corners returns the rectangle corners counter-clockwise from south-west.
func (b Bounds) corners() [4]orb.Point {
	return [4]orb.Point{
		{b.MinLon, b.MinLat},
		{b.MaxLon, b.MinLat},
		{b.MaxLon, b.MaxLat},
		{b.MinLon, b.MaxLat},
	}
}

// boundsFromOrb converts an orb.Bound.
func boundsFromOrb(ob orb.Bound) Bounds {
	return Bounds{
		MinLon: ob.Min[0],
		MaxLon: ob.Max[0],
		MinLat: ob.Min[1],
		MaxLat: ob.Max[1],
	}
}

// Viewport is the rectangle currently visible on the map.
//
// Each edge is optional so that a partially reported viewport can be
// represented; such a viewport selects nothing.
type Viewport struct {
	West  *float64 `json:"west,omitempty"`
	South *float64 `json:"south,omitempty"`
	East  *float64 `json:"east,omitempty"`
	North *float64 `json:"north,omitempty"`
}

// NewViewport returns a viewport with all four edges set.
func NewViewport(west, south, east, north float64) Viewport {
	return Viewport{West: &west, South: &south, East: &east, North: &north}
}

// Bounds returns the viewport rectangle.
//
// ok is false when any edge is missing or non-finite, or when west > east or
// south > north.
func (v Viewport) Bounds() (b Bounds, ok bool) {
	if v.West == nil || v.South == nil || v.East == nil || v.North == nil {
		return Bounds{}, false
	}
	b = Bounds{
		MinLon: *v.West,
		MaxLon: *v.East,
		MinLat: *v.South,
		MaxLat: *v.North,
	}
	if !b.Valid() {
		return Bounds{}, false
	}
	return b, true
}
