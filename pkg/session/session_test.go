package session

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beetlebugorg/burnview/pkg/burn"
)

// testTable holds polygon A over [0,1]x[0,1] and polygon B over [3,4]x[3,4].
func testTable(t testing.TB) *burn.Table {
	t.Helper()
	doc := `{
	  "type": "FeatureCollection",
	  "features": [
	    {"properties": {"id": "A", "locality": "X", "area": 10},
	     "geometry": {"type": "Polygon", "coordinates": [[[0,0],[1,0],[1,1],[0,1],[0,0]]]}},
	    {"properties": {"id": "B", "locality": "Y", "area": 5},
	     "geometry": {"type": "Polygon", "coordinates": [[[3,3],[4,3],[4,4],[3,4],[3,3]]]}}
	  ]
	}`
	table, diags := burn.LoadBytes([]byte(doc), burn.DefaultLoadOptions())
	if len(diags) != 0 {
		t.Fatalf("Expected no diagnostics, got %v", diags)
	}
	return table
}

func bounds(w, s, e, n float64) *LngLatBounds {
	return &LngLatBounds{SW: &LngLat{Lng: w, Lat: s}, NE: &LngLat{Lng: e, Lat: n}}
}

func TestInitialSnapshot(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())
	snap := s.Snapshot()

	if snap.SessionID != "s1" {
		t.Errorf("Expected session id s1, got %s", snap.SessionID)
	}
	if snap.Selected || snap.Point != nil {
		t.Errorf("Expected nothing selected, got %+v", snap)
	}
	if snap.Message != NothingSelected {
		t.Errorf("Expected %q, got %q", NothingSelected, snap.Message)
	}
	if snap.Total != 0 || len(snap.Rows) != 0 || snap.TotalText != "0.00 ha" {
		t.Errorf("Expected empty aggregate, got %+v", snap.Summary)
	}
}

func TestViewportScenarios(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())

	tests := []struct {
		name   string
		bounds *LngLatBounds
		total  float64
		rows   []burn.Row
	}{
		{"A only", bounds(-0.5, -0.5, 1.5, 1.5), 10, []burn.Row{{Key: "X", Sum: 10}}},
		{"both", bounds(-1, -1, 5, 5), 15, []burn.Row{{Key: "X", Sum: 10}, {Key: "Y", Sum: 5}}},
		{"nothing", bounds(1.5, 1.5, 2.5, 2.5), 0, nil},
		{"B only", bounds(2.5, 2.5, 5, 5), 5, []burn.Row{{Key: "Y", Sum: 5}}},
		{"inverted", bounds(5, 5, -1, -1), 0, nil},
		{"absent", nil, 0, nil},
		{"missing corner", &LngLatBounds{SW: &LngLat{Lng: -1, Lat: -1}}, 0, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap, err := s.Apply(ViewportChanged{Bounds: tt.bounds})
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if snap.Total != tt.total {
				t.Errorf("Expected total %v, got %v", tt.total, snap.Total)
			}
			if len(snap.Rows) != len(tt.rows) || (len(tt.rows) > 0 && !reflect.DeepEqual(snap.Rows, tt.rows)) {
				t.Errorf("Expected rows %v, got %v", tt.rows, snap.Rows)
			}
			if snap.Count != snap.Visible().Len() {
				t.Errorf("Expected count %d to match visible table, got %d", snap.Visible().Len(), snap.Count)
			}
			if s.Snapshot() != snap {
				t.Error("Expected the returned snapshot to be published")
			}
		})
	}
}

func TestClickScenario(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())

	snap, _ := s.Apply(FeatureClicked{
		Point:   &LngLat{Lng: 0.5, Lat: 0.5},
		Feature: &ClickedFeature{Props: map[string]interface{}{"id": "A", "area_deteccion": 10}},
	})
	if !snap.Selected || snap.Attributes["id"] != "A" {
		t.Fatalf("Expected feature A selected, got %+v", snap)
	}
	if snap.Message != "" {
		t.Errorf("Expected no message while selected, got %q", snap.Message)
	}
	if snap.Point == nil || snap.Point[0] != 0.5 || snap.Point[1] != 0.5 {
		t.Errorf("Expected point (0.5, 0.5), got %v", snap.Point)
	}

	// Empty space: attributes reset, marker stays at the new point.
	snap, _ = s.Apply(FeatureClicked{Point: &LngLat{Lng: 2, Lat: 2}})
	if snap.Selected || snap.Attributes != nil {
		t.Errorf("Expected selection cleared, got %+v", snap.Attributes)
	}
	if snap.Message != NothingSelected {
		t.Errorf("Expected %q, got %q", NothingSelected, snap.Message)
	}
	if snap.Point == nil || snap.Point[0] != 2 {
		t.Errorf("Expected point kept at (2, 2), got %v", snap.Point)
	}

	// No coordinates: point unchanged.
	snap, _ = s.Apply(FeatureClicked{})
	if snap.Point == nil || snap.Point[0] != 2 || snap.Point[1] != 2 {
		t.Errorf("Expected point unchanged, got %v", snap.Point)
	}
}

func TestPartialPayloads(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"corner missing lat", `{"type":"viewport","bounds":{"_sw":{"lng":-1,"lat":-1},"_ne":{"lng":5}}}`},
		{"corner missing lng", `{"type":"viewport","bounds":{"_sw":{"lat":-1},"_ne":{"lng":5,"lat":5}}}`},
		{"corner empty", `{"type":"viewport","bounds":{"_sw":{},"_ne":{"lng":5,"lat":5}}}`},
		{"click with empty coords", `{"type":"click","coords":{}}`},
		{"click with lng only", `{"type":"click","coords":{"lng":3.5}}`},
		{"click with lat only", `{"type":"click","coords":{"lat":3.5}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			opts.ResolveClicks = true
			s := New("s1", testTable(t), opts)

			if _, err := s.Apply(ViewportChanged{Bounds: bounds(-1, -1, 5, 5)}); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}
			if _, err := s.Apply(FeatureClicked{Point: &LngLat{Lng: 0.25, Lat: 0.75}}); err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			ev, err := DecodeEvent([]byte(tt.input))
			if err != nil {
				t.Fatalf("DecodeEvent() error = %v", err)
			}
			snap, err := s.Apply(ev)
			if err != nil {
				t.Fatalf("Apply() error = %v", err)
			}

			if snap.Point == nil || snap.Point[0] != 0.25 || snap.Point[1] != 0.75 {
				t.Errorf("Expected point unchanged at (0.25, 0.75), got %v", snap.Point)
			}

			if _, isViewport := ev.(ViewportChanged); isViewport {
				if snap.Count != 0 || snap.Total != 0 || len(snap.Rows) != 0 {
					t.Errorf("Expected empty aggregate, got %+v", snap.Summary)
				}
				return
			}
			if snap.Selected {
				t.Errorf("Expected no click resolution without a coordinate pair, got %+v", snap.Attributes)
			}
			if snap.Total != 15 {
				t.Errorf("Expected aggregate untouched by click, got %v", snap.Total)
			}
		})
	}
}

func TestSnapshotJSONShape(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())

	data, err := json.Marshal(s.Snapshot())
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"grouped_rows":[]`) {
		t.Errorf("Expected empty grouped_rows array in initial snapshot, got %s", data)
	}
	if !strings.Contains(string(data), `"selected_attributes":null`) {
		t.Errorf("Expected null selected_attributes, got %s", data)
	}

	snap, _ := s.Apply(ViewportChanged{Bounds: bounds(10, 10, 11, 11)})
	data, _ = json.Marshal(snap)
	if !strings.Contains(string(data), `"grouped_rows":[]`) {
		t.Errorf("Expected empty grouped_rows array for an empty viewport, got %s", data)
	}

	snap, _ = s.Apply(FeatureClicked{Feature: &ClickedFeature{Props: map[string]interface{}{}}})
	data, _ = json.Marshal(snap)
	if !strings.Contains(string(data), `"selected_attributes":{}`) {
		t.Errorf("Expected empty selected_attributes object, got %s", data)
	}
}

func TestClickCopiesProps(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())
	props := map[string]interface{}{"id": "A"}

	snap, _ := s.Apply(FeatureClicked{Feature: &ClickedFeature{Props: props}})
	props["id"] = "mutated"

	if snap.Attributes["id"] != "A" {
		t.Errorf("Expected attributes to be a copy, got %v", snap.Attributes["id"])
	}
}

func TestClickEmptyPropsSelects(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())

	snap, _ := s.Apply(FeatureClicked{Feature: &ClickedFeature{Props: map[string]interface{}{}}})
	if !snap.Selected {
		t.Error("Expected a feature payload with empty props to select")
	}

	snap, _ = s.Apply(FeatureClicked{Feature: &ClickedFeature{}})
	if snap.Selected {
		t.Error("Expected a feature payload without props to clear the selection")
	}
}

func TestResolveClicks(t *testing.T) {
	opts := DefaultOptions()
	opts.ResolveClicks = true
	s := New("s1", testTable(t), opts)

	snap, _ := s.Apply(FeatureClicked{Point: &LngLat{Lng: 3.5, Lat: 3.5}})
	if !snap.Selected || snap.Attributes["id"] != "B" {
		t.Errorf("Expected B resolved from point, got %+v", snap.Attributes)
	}

	snap, _ = s.Apply(FeatureClicked{Point: &LngLat{Lng: 2, Lat: 2}})
	if snap.Selected {
		t.Errorf("Expected nothing at (2, 2), got %+v", snap.Attributes)
	}
}

func TestEventsAreIndependent(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())

	s.Apply(FeatureClicked{Feature: &ClickedFeature{Props: map[string]interface{}{"id": "A"}}})
	snap, _ := s.Apply(ViewportChanged{Bounds: bounds(-1, -1, 5, 5)})

	if !snap.Selected {
		t.Error("Expected viewport change to keep the selection")
	}

	snap, _ = s.Apply(FeatureClicked{})
	if snap.Total != 15 {
		t.Errorf("Expected click to keep the aggregate, got %v", snap.Total)
	}
	if snap.Version != 3 {
		t.Errorf("Expected version 3, got %d", snap.Version)
	}
}

func TestStaleEventDropped(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())

	newer := s.apply(2, ViewportChanged{Bounds: bounds(2.5, 2.5, 5, 5)})
	older := s.apply(1, ViewportChanged{Bounds: bounds(-1, -1, 5, 5)})

	if older != newer {
		t.Error("Expected the stale viewport to leave the snapshot unchanged")
	}
	if got := s.Snapshot(); got.ViewportSeq != 2 || got.Total != 5 {
		t.Errorf("Expected seq 2 with total 5, got seq %d total %v", got.ViewportSeq, got.Total)
	}

	// A click with a lower number than the viewport still applies.
	snap := s.apply(1, FeatureClicked{Point: &LngLat{Lng: 1, Lat: 1}})
	if snap.ClickSeq != 1 || snap.Point == nil {
		t.Errorf("Expected click applied, got %+v", snap)
	}
}

func TestRunProcessesInOrder(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("s1", testTable(t), DefaultOptions())
	errc := make(chan error, 1)
	go func() { errc <- s.Run(ctx) }()

	for _, b := range []*LngLatBounds{bounds(-1, -1, 5, 5), bounds(-0.5, -0.5, 1.5, 1.5)} {
		if err := s.Dispatch(ctx, ViewportChanged{Bounds: b}); err != nil {
			t.Fatalf("Dispatch() error = %v", err)
		}
	}
	snap, err := s.Submit(ctx, ViewportChanged{Bounds: bounds(2.5, 2.5, 5, 5)})
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	if snap.Total != 5 || snap.ViewportSeq != 3 {
		t.Errorf("Expected last viewport applied (total 5, seq 3), got total %v seq %d", snap.Total, snap.ViewportSeq)
	}
	if snap.Version != 3 {
		t.Errorf("Expected 3 published snapshots, got version %d", snap.Version)
	}

	cancel()
	select {
	case err := <-errc:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not stop after cancel")
	}

	if err := s.Dispatch(context.Background(), FeatureClicked{}); !errors.Is(err, ErrClosed) {
		t.Errorf("Expected ErrClosed after cancel, got %v", err)
	}
}

func TestConcurrentReaders(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	s := New("s1", testTable(t), DefaultOptions())
	go s.Run(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				snap := s.Snapshot()
				var sum float64
				for _, r := range snap.Rows {
					sum += r.Sum
				}
				if sum != snap.Total {
					t.Errorf("Torn snapshot: rows sum %v, total %v", sum, snap.Total)
					return
				}
			}
		}()
	}

	for i := 0; i < 50; i++ {
		b := bounds(-1, -1, 5, 5)
		if i%2 == 1 {
			b = bounds(2.5, 2.5, 5, 5)
		}
		if _, err := s.Submit(ctx, ViewportChanged{Bounds: b}); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}
	wg.Wait()
}

func TestHooks(t *testing.T) {
	var viewports, clicks, selected int
	opts := DefaultOptions()
	opts.Hooks = Hooks{
		Viewport: func(_ time.Duration, visible int) { viewports++ },
		Click: func(sel bool) {
			clicks++
			if sel {
				selected++
			}
		},
	}
	s := New("s1", testTable(t), opts)

	s.Apply(ViewportChanged{Bounds: bounds(-1, -1, 5, 5)})
	s.Apply(FeatureClicked{Feature: &ClickedFeature{Props: map[string]interface{}{}}})
	s.Apply(FeatureClicked{})

	if viewports != 1 || clicks != 2 || selected != 1 {
		t.Errorf("Expected 1 viewport, 2 clicks, 1 selected; got %d, %d, %d", viewports, clicks, selected)
	}
}

func TestDetails(t *testing.T) {
	s := New("s1", testTable(t), DefaultOptions())
	if d := s.Snapshot().Details(); d != nil {
		t.Errorf("Expected no details before selection, got %v", d)
	}

	snap, _ := s.Apply(FeatureClicked{Feature: &ClickedFeature{Props: map[string]interface{}{
		"id":                "17",
		"area_deteccion":    12.5,
		"localidad_proxima": "Cosquín",
	}}})
	details := snap.Details()
	if len(details) != len(DetailFields) {
		t.Fatalf("Expected %d details, got %d", len(DetailFields), len(details))
	}

	want := map[string]string{
		"ID":              "17",
		"Localidad":       "Cosquín",
		"Área Afectada":   "12.5 ha",
		"Fecha Detección": "Sin fecha",
		"Departamento":    "Desconocido",
		"Altitud Media":   "N/D",
	}
	for _, d := range details {
		if v, ok := want[d.Label]; ok && v != d.Value {
			t.Errorf("%s: expected %q, got %q", d.Label, v, d.Value)
		}
	}
}
