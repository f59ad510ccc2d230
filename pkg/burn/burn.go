package burn

import (
	"github.com/beetlebugorg/burnview/internal/parser"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Default attribute names read from burned-area feature properties.
const (
	// DefaultValueField holds the burned area in hectares.
	DefaultValueField = "area"

	// DefaultGroupField holds the nearest locality name.
	DefaultGroupField = "locality"
)

// GeometryType is the GeoJSON geometry type a feature was loaded from.
type GeometryType int

const (
	// GeometryTypePolygon is a single polygon.
	GeometryTypePolygon GeometryType = iota + 1

	// GeometryTypeMultiPolygon is a union of polygons.
	GeometryTypeMultiPolygon
)

// String returns the GeoJSON name of the geometry type.
func (g GeometryType) String() string {
	switch g {
	case GeometryTypePolygon:
		return "Polygon"
	case GeometryTypeMultiPolygon:
		return "MultiPolygon"
	default:
		return "Unknown"
	}
}

// Feature is one burned-area record.
//
// Features are created by the loader and never modified afterwards, so they
// can be shared between tables and goroutines.
type Feature struct {
	index      int
	id         string
	source     string
	geomType   GeometryType
	geometry   orb.MultiPolygon
	bounds     Bounds
	attributes map[string]interface{}
}

// Index returns the position of the feature in the base table.
func (f *Feature) Index() int { return f.index }

// ID returns the "id" property, the GeoJSON feature id, or "#<n>" when absent.
func (f *Feature) ID() string { return f.id }

// Source returns the path or label the feature was loaded from.
func (f *Feature) Source() string { return f.source }

// GeometryType returns the source geometry type.
func (f *Feature) GeometryType() GeometryType { return f.geomType }

// Geometry returns the outer rings of the feature, one polygon per ring.
//
// A Polygon source yields a single-member MultiPolygon.
func (f *Feature) Geometry() orb.MultiPolygon { return f.geometry }

// Bounds returns the bounding box of the geometry.
func (f *Feature) Bounds() Bounds { return f.bounds }

// Attributes returns all feature attributes as a map.
//
// The map must not be modified.
func (f *Feature) Attributes() map[string]interface{} { return f.attributes }

// Attribute returns a specific attribute value by name.
//
// Returns the value and true if the attribute exists, or nil and false if not found.
func (f *Feature) Attribute(name string) (interface{}, bool) {
	v, ok := f.attributes[name]
	return v, ok
}

// Contains reports whether the point (lon, lat) lies inside or on the feature.
func (f *Feature) Contains(lon, lat float64) bool {
	if !f.bounds.Contains(lon, lat) {
		return false
	}
	return planar.MultiPolygonContains(f.geometry, orb.Point{lon, lat})
}

// newFeature converts a parsed feature, assigning its base-table position.
func newFeature(index int, source string, pf *parser.Feature) *Feature {
	attrs := make(map[string]interface{}, len(pf.Properties)+1)
	for k, v := range pf.Properties {
		attrs[k] = v
	}
	gt := GeometryTypePolygon
	if pf.Type == parser.GeometryTypeMultiPolygon {
		gt = GeometryTypeMultiPolygon
	}
	return &Feature{
		index:      index,
		id:         pf.ID,
		source:     source,
		geomType:   gt,
		geometry:   pf.Geometry,
		bounds:     boundsFromOrb(pf.Geometry.Bound()),
		attributes: attrs,
	}
}

// Table is an ordered, read-only collection of features.
//
// The base table produced by the loader is shared by every viewport query;
// subsets produced by Filter share Feature values with it.
type Table struct {
	features  []*Feature
	bounds    Bounds
	index     Index
	indexKind IndexKind
	predicate Predicate
}

// NewTable creates a table over features, in the given order, with a linear
// candidate index and the default Intersects predicate.
func NewTable(features []*Feature) *Table {
	t := &Table{
		features:  features,
		predicate: Intersects,
	}
	for i, f := range features {
		if i == 0 {
			t.bounds = f.bounds
			continue
		}
		t.bounds = t.bounds.Union(f.bounds)
	}
	t.index = newIndex(IndexLinear, features)
	t.indexKind = IndexLinear
	return t
}

// EmptyTable returns a table with no features.
func EmptyTable() *Table {
	return NewTable(nil)
}

// WithIndex returns a table over the same features using the given candidate
// index. Results of Filter are identical for every index kind.
func (t *Table) WithIndex(kind IndexKind) *Table {
	c := *t
	c.index = newIndex(kind, t.features)
	c.indexKind = kind
	return &c
}

// WithPredicate returns a table over the same features using p as the exact
// visibility test.
func (t *Table) WithPredicate(p Predicate) *Table {
	c := *t
	if p == nil {
		p = Intersects
	}
	c.predicate = p
	return &c
}

// IndexKind returns the kind of candidate index in use.
func (t *Table) IndexKind() IndexKind {
	if t == nil {
		return IndexLinear
	}
	return t.indexKind
}

// Features returns all features in table order.
//
// The slice must not be modified.
func (t *Table) Features() []*Feature {
	if t == nil {
		return nil
	}
	return t.features
}

// Len returns the number of features.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.features)
}

// Bounds returns the union of all feature bounds, or zero Bounds when empty.
func (t *Table) Bounds() Bounds {
	if t == nil {
		return Bounds{}
	}
	return t.bounds
}

// HasColumn reports whether any feature carries the attribute name.
func (t *Table) HasColumn(name string) bool {
	for _, f := range t.Features() {
		if _, ok := f.attributes[name]; ok {
			return true
		}
	}
	return false
}

// At returns the first feature, in table order, containing the point.
func (t *Table) At(lon, lat float64) (*Feature, bool) {
	for _, f := range t.Features() {
		if f.Contains(lon, lat) {
			return f, true
		}
	}
	return nil, false
}
