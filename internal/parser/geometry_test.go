package parser

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

func TestGeometryTypeString(t *testing.T) {
	tests := []struct {
		gt   GeometryType
		want string
	}{
		{GeometryTypePolygon, "Polygon"},
		{GeometryTypeMultiPolygon, "MultiPolygon"},
		{GeometryTypeUnknown, "Unknown"},
	}
	for _, tt := range tests {
		if got := tt.gt.String(); got != tt.want {
			t.Errorf("GeometryType(%d).String() = %q, want %q", tt.gt, got, tt.want)
		}
	}
}

func TestConstructGeometryPolygon(t *testing.T) {
	g := &rawGeometry{
		Type: "Polygon",
		Coordinates: json.RawMessage(`[
			[[0,0],[4,0],[4,4],[0,4]],
			[[1,1],[2,1],[2,2]]
		]`),
	}

	gt, mp, err := constructGeometry(g, DefaultParseOptions())
	if err != nil {
		t.Fatalf("constructGeometry() error = %v", err)
	}
	if gt != GeometryTypePolygon {
		t.Errorf("Expected Polygon, got %v", gt)
	}
	if len(mp) != 1 {
		t.Fatalf("Expected 1 polygon, got %d", len(mp))
	}
	if len(mp[0]) != 1 {
		t.Errorf("Expected only the outer ring to be kept, got %d rings", len(mp[0]))
	}
	ring := mp[0][0]
	if !ring.Closed() {
		t.Errorf("Expected ring to be closed, got %v", ring)
	}
	if len(ring) != 5 {
		t.Errorf("Expected 5 points after closing, got %d", len(ring))
	}
	if ring[1] != (orb.Point{4, 0}) {
		t.Errorf("Expected [lon, lat] order preserved, got %v", ring[1])
	}
}

func TestConstructGeometryMultiPolygon(t *testing.T) {
	g := &rawGeometry{
		Type: "MultiPolygon",
		Coordinates: json.RawMessage(`[
			[[[0,0],[1,0],[1,1],[0,0]]],
			[[[5,5],[6,5],[6,6],[5,5]], [[5.2,5.2],[5.4,5.2],[5.4,5.4]]]
		]`),
	}

	gt, mp, err := constructGeometry(g, DefaultParseOptions())
	if err != nil {
		t.Fatalf("constructGeometry() error = %v", err)
	}
	if gt != GeometryTypeMultiPolygon {
		t.Errorf("Expected MultiPolygon, got %v", gt)
	}
	if len(mp) != 2 {
		t.Fatalf("Expected 2 polygons, got %d", len(mp))
	}
	for i, poly := range mp {
		if len(poly) != 1 {
			t.Errorf("polygon %d: expected 1 ring, got %d", i, len(poly))
		}
	}
}

func TestConstructGeometryErrors(t *testing.T) {
	tests := []struct {
		name        string
		geom        *rawGeometry
		unsupported bool
	}{
		{"nil geometry", nil, true},
		{"point", &rawGeometry{Type: "Point", Coordinates: json.RawMessage(`[0,0]`)}, true},
		{"linestring", &rawGeometry{Type: "LineString", Coordinates: json.RawMessage(`[[0,0],[1,1]]`)}, true},
		{"polygon string coords", &rawGeometry{Type: "Polygon", Coordinates: json.RawMessage(`"bad"`)}, false},
		{"polygon too shallow", &rawGeometry{Type: "Polygon", Coordinates: json.RawMessage(`[[0,0],[1,0],[1,1]]`)}, false},
		{"polygon null coords", &rawGeometry{Type: "Polygon", Coordinates: json.RawMessage(`null`)}, false},
		{"polygon empty", &rawGeometry{Type: "Polygon", Coordinates: json.RawMessage(`[]`)}, false},
		{"polygon two vertices", &rawGeometry{Type: "Polygon", Coordinates: json.RawMessage(`[[[0,0],[1,1]]]`)}, false},
		{"multipolygon empty member", &rawGeometry{Type: "MultiPolygon", Coordinates: json.RawMessage(`[[]]`)}, false},
		{"multipolygon bad member", &rawGeometry{Type: "MultiPolygon", Coordinates: json.RawMessage(`[[[[0,0],[1,0],[1,1]]],[[[0,0],["x",0],[1,1]]]]`)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := constructGeometry(tt.geom, DefaultParseOptions())
			if err == nil {
				t.Fatal("Expected error, got nil")
			}
			var unsupported *ErrUnsupportedGeometry
			var invalid *ErrInvalidGeometry
			if tt.unsupported && !errors.As(err, &unsupported) {
				t.Errorf("Expected *ErrUnsupportedGeometry, got %T: %v", err, err)
			}
			if !tt.unsupported && !errors.As(err, &invalid) {
				t.Errorf("Expected *ErrInvalidGeometry, got %T: %v", err, err)
			}
		})
	}
}
