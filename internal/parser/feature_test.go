package parser

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestParseFeatureMalformedRecord(t *testing.T) {
	_, fe := parseFeature(3, json.RawMessage(`{"properties": "not an object"}`), DefaultParseOptions())
	if fe == nil {
		t.Fatal("Expected feature error, got nil")
	}
	if fe.FeatureID != "#3" {
		t.Errorf("Expected fallback id #3, got %q", fe.FeatureID)
	}
	if !strings.Contains(fe.Error(), "malformed feature") {
		t.Errorf("Expected malformed feature message, got %q", fe.Error())
	}
}

func TestFeatureIDSources(t *testing.T) {
	tests := []struct {
		name string
		rec  featureRecord
		want string
	}{
		{"string property", featureRecord{Properties: map[string]interface{}{"id": "7"}}, "7"},
		{"numeric property", featureRecord{Properties: map[string]interface{}{"id": float64(12)}}, "12"},
		{"empty property falls back to top-level", featureRecord{Properties: map[string]interface{}{"id": ""}, ID: "f-1"}, "f-1"},
		{"nil property", featureRecord{Properties: map[string]interface{}{"id": nil}}, "#5"},
		{"nothing", featureRecord{}, "#5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := featureID(5, &tt.rec); got != tt.want {
				t.Errorf("featureID() = %q, want %q", got, tt.want)
			}
		})
	}
}
