package parser

import (
	"bytes"
	"encoding/json"
)

// Parser decodes GeoJSON FeatureCollections of burned-area polygons.
//
// Decoding is tolerant per feature: a feature whose geometry cannot be built
// is reported in Collection.Errors and left out of Collection.Features, and the
// remaining features are still returned. Only a document that is not a
// FeatureCollection at all produces an error.
type Parser interface {
	// Parse decodes a FeatureCollection document with default options
	Parse(data []byte) (*Collection, error)

	// ParseWithOptions decodes with custom options
	ParseWithOptions(data []byte, opts ParseOptions) (*Collection, error)
}

// ParseOptions configures parsing behavior
type ParseOptions struct {
	// ValidateCoordinates: if true, reject positions outside lon ±180 / lat ±90
	// Default: true
	ValidateCoordinates bool
}

// DefaultParseOptions returns parse options with defaults
func DefaultParseOptions() ParseOptions {
	return ParseOptions{
		ValidateCoordinates: true,
	}
}

// Collection is the result of parsing one document
type Collection struct {
	// Features holds the valid features in source order
	Features []*Feature
	// Errors holds one entry per excluded feature, in source order
	Errors []*FeatureError
}

// document is the top level of a GeoJSON FeatureCollection
type document struct {
	Type     string          `json:"type"`
	Features json.RawMessage `json:"features"`
}

// defaultParser implements the Parser interface
type defaultParser struct {
}

// NewParser creates a new GeoJSON parser
func NewParser() Parser {
	return &defaultParser{}
}

// Parse decodes a FeatureCollection document with default options
func (p *defaultParser) Parse(data []byte) (*Collection, error) {
	return p.ParseWithOptions(data, DefaultParseOptions())
}

// ParseWithOptions decodes with custom options
func (p *defaultParser) ParseWithOptions(data []byte, opts ParseOptions) (*Collection, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ErrInvalidDocument{Reason: "empty document"}
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, &ErrInvalidDocument{Reason: "malformed JSON", Err: err}
	}
	if doc.Type != "" && doc.Type != "FeatureCollection" {
		return nil, &ErrInvalidDocument{Reason: "type is " + doc.Type + ", want FeatureCollection"}
	}
	if len(doc.Features) == 0 || bytes.Equal(bytes.TrimSpace(doc.Features), []byte("null")) {
		return nil, &ErrInvalidDocument{Reason: "missing features"}
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(doc.Features, &raws); err != nil {
		return nil, &ErrInvalidDocument{Reason: "features is not an array", Err: err}
	}

	coll := &Collection{
		Features: make([]*Feature, 0, len(raws)),
	}
	for i, raw := range raws {
		f, err := parseFeature(i, raw, opts)
		if err != nil {
			coll.Errors = append(coll.Errors, err)
			continue
		}
		coll.Features = append(coll.Features, f)
	}
	return coll, nil
}
