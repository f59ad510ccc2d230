package parser

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
)

// GeometryType identifies the GeoJSON geometry a feature was read from
type GeometryType int

const (
	// GeometryTypeUnknown is any geometry other than Polygon or MultiPolygon
	GeometryTypeUnknown GeometryType = iota

	// GeometryTypePolygon is a single polygon; only its outer ring is kept
	GeometryTypePolygon

	// GeometryTypeMultiPolygon is a set of polygons; each member's outer ring is kept
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

func geometryTypeFromName(name string) GeometryType {
	switch name {
	case "Polygon":
		return GeometryTypePolygon
	case "MultiPolygon":
		return GeometryTypeMultiPolygon
	default:
		return GeometryTypeUnknown
	}
}

// rawGeometry is the undecoded "geometry" member of a feature
type rawGeometry struct {
	Type        string          `json:"type"`
	Coordinates json.RawMessage `json:"coordinates"`
}

// constructGeometry builds a multipolygon from a raw GeoJSON geometry.
//
// Polygon: one polygon from coordinates[0].
// MultiPolygon: one polygon per member from member[0], unioned.
// Holes are not kept.
func constructGeometry(g *rawGeometry, opts ParseOptions) (GeometryType, orb.MultiPolygon, error) {
	if g == nil {
		return GeometryTypeUnknown, nil, &ErrUnsupportedGeometry{}
	}

	gt := geometryTypeFromName(g.Type)
	switch gt {
	case GeometryTypePolygon:
		var rings [][][]float64
		if err := json.Unmarshal(g.Coordinates, &rings); err != nil {
			return gt, nil, &ErrInvalidGeometry{Type: gt, Reason: "malformed coordinates", Err: err}
		}
		if len(rings) == 0 {
			return gt, nil, &ErrInvalidGeometry{Type: gt, Reason: "polygon has no rings"}
		}
		ring, err := constructRing(gt, rings[0], opts)
		if err != nil {
			return gt, nil, err
		}
		return gt, orb.MultiPolygon{orb.Polygon{ring}}, nil

	case GeometryTypeMultiPolygon:
		var polys [][][][]float64
		if err := json.Unmarshal(g.Coordinates, &polys); err != nil {
			return gt, nil, &ErrInvalidGeometry{Type: gt, Reason: "malformed coordinates", Err: err}
		}
		if len(polys) == 0 {
			return gt, nil, &ErrInvalidGeometry{Type: gt, Reason: "multipolygon has no members"}
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for i, rings := range polys {
			if len(rings) == 0 {
				return gt, nil, &ErrInvalidGeometry{Type: gt, Reason: fmt.Sprintf("member %d has no rings", i)}
			}
			ring, err := constructRing(gt, rings[0], opts)
			if err != nil {
				return gt, nil, fmt.Errorf("member %d: %w", i, err)
			}
			mp = append(mp, orb.Polygon{ring})
		}
		return gt, mp, nil

	default:
		return gt, nil, &ErrUnsupportedGeometry{Type: g.Type}
	}
}

// constructRing validates a raw ring and converts it to a closed orb.Ring.
func constructRing(gt GeometryType, raw [][]float64, opts ParseOptions) (orb.Ring, error) {
	if err := ValidateRing(gt, raw, opts.ValidateCoordinates); err != nil {
		return nil, err
	}

	ring := make(orb.Ring, 0, len(raw)+1)
	for _, pos := range raw {
		// [lon, lat]; any altitude is dropped
		ring = append(ring, orb.Point{pos[0], pos[1]})
	}
	if !ring.Closed() {
		ring = append(ring, ring[0])
	}
	return ring, nil
}
