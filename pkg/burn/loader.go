package burn

import (
	"fmt"
	"io"
	"os"

	"github.com/beetlebugorg/burnview/internal/parser"
	"github.com/rs/zerolog"
)

// Diagnostic describes a source or feature that was left out of a Table.
type Diagnostic struct {
	// Source is the path or label passed to the loader.
	Source string `json:"source,omitempty"`
	// Index is the position in the source "features" array, or -1 when the
	// whole source was unusable.
	Index int `json:"index"`
	// FeatureID identifies the feature, empty for source-level diagnostics.
	FeatureID string `json:"feature_id,omitempty"`
	// Reason is a human-readable explanation.
	Reason string `json:"reason"`
	// Err is the underlying error, for errors.As inspection.
	Err error `json:"-"`
}

// Error implements error so a Diagnostic can be wrapped or logged directly.
func (d Diagnostic) Error() string {
	if d.Index < 0 {
		return fmt.Sprintf("%s: %s", d.Source, d.Reason)
	}
	return fmt.Sprintf("%s: feature %s (index %d): %s", d.Source, d.FeatureID, d.Index, d.Reason)
}

// Unwrap returns the underlying error.
func (d Diagnostic) Unwrap() error { return d.Err }

// Diagnostics is the list of problems found while loading, in source order.
type Diagnostics []Diagnostic

// Features returns the number of per-feature diagnostics.
func (ds Diagnostics) Features() int {
	n := 0
	for _, d := range ds {
		if d.Index >= 0 {
			n++
		}
	}
	return n
}

// sourceResult is what one source contributes before the table is assembled.
type sourceResult struct {
	source   string
	features []*parser.Feature
	diags    Diagnostics
}

// LoadFile reads a GeoJSON FeatureCollection from path.
//
// A missing or unreadable file produces an empty table and one diagnostic;
// it never aborts the caller.
func LoadFile(path string, opts LoadOptions) (*Table, Diagnostics) {
	res := readSource(path, opts)
	return buildTable([]sourceResult{res}, opts)
}

// Load reads a GeoJSON FeatureCollection from r.
func Load(r io.Reader, opts LoadOptions) (*Table, Diagnostics) {
	data, err := io.ReadAll(r)
	if err != nil {
		res := sourceResult{source: "reader", diags: Diagnostics{sourceDiagnostic("reader", "read failed", err)}}
		return buildTable([]sourceResult{res}, opts)
	}
	return LoadBytes(data, opts)
}

// LoadBytes decodes a GeoJSON FeatureCollection held in memory.
//
// Features with malformed or non-polygonal geometry are excluded and reported
// as diagnostics; the rest are returned in source order. When any feature has
// opts.ValueField, that field is coerced to float64 on every feature, with 0
// for missing or non-numeric values.
func LoadBytes(data []byte, opts LoadOptions) (*Table, Diagnostics) {
	res := parseSource("bytes", data, opts)
	return buildTable([]sourceResult{res}, opts)
}

func readSource(path string, opts LoadOptions) sourceResult {
	data, err := os.ReadFile(path)
	if err != nil {
		reason := "read failed"
		if os.IsNotExist(err) {
			reason = "file not found"
		}
		return sourceResult{source: path, diags: Diagnostics{sourceDiagnostic(path, reason, err)}}
	}
	return parseSource(path, data, opts)
}

func parseSource(source string, data []byte, opts LoadOptions) sourceResult {
	popts := parser.ParseOptions{ValidateCoordinates: opts.ValidateCoordinates}
	coll, err := parser.NewParser().ParseWithOptions(data, popts)
	if err != nil {
		return sourceResult{source: source, diags: Diagnostics{sourceDiagnostic(source, err.Error(), err)}}
	}

	res := sourceResult{source: source, features: coll.Features}
	for _, fe := range coll.Errors {
		res.diags = append(res.diags, Diagnostic{
			Source:    source,
			Index:     fe.Index,
			FeatureID: fe.FeatureID,
			Reason:    fe.Err.Error(),
			Err:       fe,
		})
	}
	return res
}

func sourceDiagnostic(source, reason string, err error) Diagnostic {
	return Diagnostic{Source: source, Index: -1, Reason: reason, Err: err}
}

// buildTable assembles the base table from sources in order.
func buildTable(results []sourceResult, opts LoadOptions) (*Table, Diagnostics) {
	log := opts.logger()

	var diags Diagnostics
	var features []*Feature
	for _, res := range results {
		for _, d := range res.diags {
			log.Warn().
				Str("source", d.Source).
				Int("index", d.Index).
				Str("feature_id", d.FeatureID).
				Msg(d.Reason)
		}
		diags = append(diags, res.diags...)

		for _, pf := range res.features {
			features = append(features, newFeature(len(features), res.source, pf))
		}
	}

	valueField := opts.ValueField
	if valueField == "" {
		valueField = DefaultValueField
	}
	coerceValueField(features, valueField, log)

	if opts.H3Resolution > 0 {
		if err := assignH3Cells(features, opts.H3Resolution); err != nil {
			log.Warn().Err(err).Msg("h3 cells not assigned")
		}
	}

	table := NewTable(features)
	if opts.Index != "" && opts.Index != IndexLinear {
		table = table.WithIndex(opts.Index)
	}

	log.Info().
		Int("features", table.Len()).
		Int("diagnostics", len(diags)).
		Str("index", string(table.IndexKind())).
		Msg("feature table loaded")

	return table, diags
}

// coerceValueField rewrites valueField as float64 on every feature when at
// least one feature carries it.
func coerceValueField(features []*Feature, valueField string, log *zerolog.Logger) {
	present := false
	for _, f := range features {
		if _, ok := f.attributes[valueField]; ok {
			present = true
			break
		}
	}
	if !present {
		log.Debug().Str("field", valueField).Msg("value field absent, aggregates will be empty")
		return
	}

	invalid := 0
	for _, f := range features {
		raw, ok := f.attributes[valueField]
		v, numeric := toNumber(raw)
		if ok && !numeric {
			invalid++
		}
		f.attributes[valueField] = v
	}
	if invalid > 0 {
		log.Debug().Str("field", valueField).Int("count", invalid).Msg("non-numeric values coerced to 0")
	}
}
