package parser

import (
	"fmt"
	"math"
)

// minRingVertices is the smallest number of distinct vertices a closed ring can have.
const minRingVertices = 3

// ValidateCoordinate validates a single coordinate pair
// WGS-84 lon/lat must be within valid geographic bounds
func ValidateCoordinate(lat, lon float64) error {
	if math.IsNaN(lat) || math.IsNaN(lon) {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	if lat < -90.0 || lat > 90.0 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	if lon < -180.0 || lon > 180.0 {
		return &ErrInvalidCoordinate{Lat: lat, Lon: lon}
	}
	return nil
}

// ValidateRing checks a raw ring of [lon, lat, ...] positions.
//
// Every position needs at least two finite values. The ring needs three
// distinct vertices, not counting a closing vertex equal to the first.
// When checkRange is set each position must also be a valid WGS-84 coordinate.
func ValidateRing(gt GeometryType, ring [][]float64, checkRange bool) error {
	for i, pos := range ring {
		if len(pos) < 2 {
			return &ErrInvalidGeometry{
				Type:   gt,
				Reason: fmt.Sprintf("position %d must have at least 2 values [lon, lat], got %d", i, len(pos)),
			}
		}
		lon, lat := pos[0], pos[1]
		if math.IsInf(lon, 0) || math.IsInf(lat, 0) || math.IsNaN(lon) || math.IsNaN(lat) {
			return &ErrInvalidGeometry{
				Type:   gt,
				Reason: fmt.Sprintf("position %d is not finite", i),
			}
		}
		if checkRange {
			if err := ValidateCoordinate(lat, lon); err != nil {
				return &ErrInvalidGeometry{
					Type:   gt,
					Reason: fmt.Sprintf("position %d invalid", i),
					Err:    err,
				}
			}
		}
	}

	n := len(ring)
	if n > 1 && samePosition(ring[0], ring[n-1]) {
		n--
	}
	if n < minRingVertices {
		return &ErrInvalidGeometry{
			Type:   gt,
			Reason: fmt.Sprintf("ring needs at least %d vertices, got %d", minRingVertices, n),
		}
	}
	return nil
}

func samePosition(a, b []float64) bool {
	return a[0] == b[0] && a[1] == b[1]
}
