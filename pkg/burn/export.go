package burn

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// FeatureCollection converts the table to a GeoJSON FeatureCollection.
//
// Polygon sources are written back as Polygon, MultiPolygon sources as
// MultiPolygon. Only outer rings are kept, since that is all a Feature stores.
func (t *Table) FeatureCollection() *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range t.Features() {
		fc.Append(f.GeoJSON())
	}
	return fc
}

// GeoJSON converts the feature to a GeoJSON feature with a copy of its
// attributes as properties.
func (f *Feature) GeoJSON() *geojson.Feature {
	var geom orb.Geometry = f.geometry
	if f.geomType == GeometryTypePolygon && len(f.geometry) == 1 {
		geom = f.geometry[0]
	}

	gf := geojson.NewFeature(geom)
	gf.ID = f.id
	gf.Properties = make(geojson.Properties, len(f.attributes))
	for k, v := range f.attributes {
		gf.Properties[k] = v
	}
	return gf
}
