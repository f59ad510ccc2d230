package parser

import (
	"encoding/json"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/spf13/cast"
)

// Feature represents one burned-area record extracted from a FeatureCollection
type Feature struct {
	// Index is the position of the feature in the source "features" array
	Index int
	// ID is the "id" property, the GeoJSON feature id, or "#<index>"
	ID string
	// Type is the source geometry type
	Type GeometryType
	// Geometry holds one outer ring per polygon, closed, in [lon, lat] order
	Geometry orb.MultiPolygon
	// Properties contains the feature attributes as decoded from JSON
	Properties map[string]interface{}
}

// featureRecord is a single undecoded element of "features"
type featureRecord struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Geometry   *rawGeometry           `json:"geometry"`
}

// parseFeature decodes one feature or reports why it was excluded
func parseFeature(index int, raw json.RawMessage, opts ParseOptions) (*Feature, *FeatureError) {
	var rec featureRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &FeatureError{
			Index:     index,
			FeatureID: fallbackID(index),
			Err:       fmt.Errorf("malformed feature: %w", err),
		}
	}

	id := featureID(index, &rec)
	gt, geom, err := constructGeometry(rec.Geometry, opts)
	if err != nil {
		return nil, &FeatureError{Index: index, FeatureID: id, Err: err}
	}

	props := rec.Properties
	if props == nil {
		props = make(map[string]interface{})
	}

	return &Feature{
		Index:      index,
		ID:         id,
		Type:       gt,
		Geometry:   geom,
		Properties: props,
	}, nil
}

func featureID(index int, rec *featureRecord) string {
	if v, ok := rec.Properties["id"]; ok && v != nil {
		if s, err := cast.ToStringE(v); err == nil && s != "" {
			return s
		}
	}
	if rec.ID != nil {
		if s, err := cast.ToStringE(rec.ID); err == nil && s != "" {
			return s
		}
	}
	return fallbackID(index)
}

func fallbackID(index int) string {
	return fmt.Sprintf("#%d", index)
}
