package parser

import (
	"fmt"
)

// ErrInvalidDocument indicates the source is not a usable FeatureCollection
type ErrInvalidDocument struct {
	Reason string
	Err    error
}

func (e *ErrInvalidDocument) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid feature collection: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("invalid feature collection: %s", e.Reason)
}

func (e *ErrInvalidDocument) Unwrap() error { return e.Err }

// ErrInvalidCoordinate indicates coordinate out of valid bounds
type ErrInvalidCoordinate struct {
	Lat, Lon float64
}

func (e *ErrInvalidCoordinate) Error() string {
	return fmt.Sprintf("invalid coordinate: lat=%f lon=%f (lat must be ±90, lon must be ±180)",
		e.Lat, e.Lon)
}

// ErrUnsupportedGeometry indicates a geometry type other than Polygon or MultiPolygon
type ErrUnsupportedGeometry struct {
	Type string
}

func (e *ErrUnsupportedGeometry) Error() string {
	if e.Type == "" {
		return "missing geometry"
	}
	return fmt.Sprintf("unsupported geometry type: %q", e.Type)
}

// ErrInvalidGeometry indicates coordinates that cannot form a polygon
type ErrInvalidGeometry struct {
	Type   GeometryType
	Reason string
	Err    error
}

func (e *ErrInvalidGeometry) Error() string {
	msg := fmt.Sprintf("invalid geometry (%v): %s", e.Type, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ErrInvalidGeometry) Unwrap() error { return e.Err }

// FeatureError records why a single feature was excluded from the output.
type FeatureError struct {
	Index     int    // position in the source "features" array
	FeatureID string // "id" property, or "#<index>" when absent
	Err       error
}

func (e *FeatureError) Error() string {
	return fmt.Sprintf("feature %s (index %d): %v", e.FeatureID, e.Index, e.Err)
}

func (e *FeatureError) Unwrap() error { return e.Err }
