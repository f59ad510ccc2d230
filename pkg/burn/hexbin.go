package burn

import (
	"fmt"

	"github.com/paulmach/orb/planar"
	"github.com/uber/h3-go/v4"
)

// H3CellField is the derived attribute holding the H3 cell of a feature's
// centroid. It can be used as the group field of Aggregate.
const H3CellField = "h3_cell"

// MaxH3Resolution is the finest resolution H3 supports.
const MaxH3Resolution = 15

// assignH3Cells sets H3CellField on every feature.
func assignH3Cells(features []*Feature, resolution int) error {
	if resolution < 0 || resolution > MaxH3Resolution {
		return fmt.Errorf("h3 resolution %d out of range 0..%d", resolution, MaxH3Resolution)
	}
	for _, f := range features {
		f.attributes[H3CellField] = CellOf(f, resolution).String()
	}
	return nil
}

// CellOf returns the H3 cell containing the centroid of f.
//
// Features with zero area use the center of their bounding box.
func CellOf(f *Feature, resolution int) h3.Cell {
	center, area := planar.CentroidArea(f.geometry)
	if area == 0 {
		center = f.geometry.Bound().Center()
	}
	return h3.LatLngToCell(h3.NewLatLng(center[1], center[0]), resolution)
}
