package session

import (
	"encoding/json"
	"fmt"

	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/paulmach/orb"
)

// Event is a user interaction applied to a Session.
//
// The concrete types are ViewportChanged and FeatureClicked.
type Event interface {
	eventType() string
}

// LngLat is a map position in decimal degrees.
//
// A decoded LngLat remembers which of "lng" and "lat" were present; a value
// built in Go is always complete.
type LngLat struct {
	Lng float64 `json:"lng"`
	Lat float64 `json:"lat"`

	noLng, noLat bool
}

// UnmarshalJSON decodes a position, recording missing or null fields.
func (p *LngLat) UnmarshalJSON(data []byte) error {
	var wire struct {
		Lng *float64 `json:"lng"`
		Lat *float64 `json:"lat"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*p = LngLat{noLng: wire.Lng == nil, noLat: wire.Lat == nil}
	if wire.Lng != nil {
		p.Lng = *wire.Lng
	}
	if wire.Lat != nil {
		p.Lat = *wire.Lat
	}
	return nil
}

// HasLng reports whether the longitude is known.
func (p *LngLat) HasLng() bool { return p != nil && !p.noLng }

// HasLat reports whether the latitude is known.
func (p *LngLat) HasLat() bool { return p != nil && !p.noLat }

// Complete reports whether both coordinates are known.
func (p *LngLat) Complete() bool { return p.HasLng() && p.HasLat() }

// Point converts to an orb.Point in [lng, lat] order.
func (p LngLat) Point() orb.Point { return orb.Point{p.Lng, p.Lat} }

// LngLatBounds is the visible map rectangle as reported by the map widget.
//
// Either corner may be missing when the widget reports a partial state.
type LngLatBounds struct {
	SW *LngLat `json:"_sw,omitempty"`
	NE *LngLat `json:"_ne,omitempty"`
}

// UnmarshalJSON accepts both "_sw"/"_ne" and "sw"/"ne" corner keys.
func (b *LngLatBounds) UnmarshalJSON(data []byte) error {
	var wire struct {
		USW *LngLat `json:"_sw"`
		UNE *LngLat `json:"_ne"`
		SW  *LngLat `json:"sw"`
		NE  *LngLat `json:"ne"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	b.SW, b.NE = wire.USW, wire.UNE
	if b.SW == nil {
		b.SW = wire.SW
	}
	if b.NE == nil {
		b.NE = wire.NE
	}
	return nil
}

// Viewport converts the corners to a burn.Viewport. A missing corner or
// coordinate leaves the matching edge unset, which selects nothing.
func (b *LngLatBounds) Viewport() burn.Viewport {
	var vp burn.Viewport
	if b == nil {
		return vp
	}
	vp.West = lngOf(b.SW)
	vp.South = latOf(b.SW)
	vp.East = lngOf(b.NE)
	vp.North = latOf(b.NE)
	return vp
}

func lngOf(p *LngLat) *float64 {
	if !p.HasLng() {
		return nil
	}
	v := p.Lng
	return &v
}

func latOf(p *LngLat) *float64 {
	if !p.HasLat() {
		return nil
	}
	v := p.Lat
	return &v
}

// ViewportChanged reports that the visible rectangle moved.
//
// A nil Bounds clears the viewport aggregate.
type ViewportChanged struct {
	Bounds *LngLatBounds `json:"bounds"`
}

func (ViewportChanged) eventType() string { return EventViewport }

// ClickedFeature is the feature payload of a click, as rendered by the map.
type ClickedFeature struct {
	Props map[string]interface{} `json:"props"`
}

// FeatureClicked reports a click on the map.
//
// Point is the clicked position, nil when the widget did not report one. A
// Point without both coordinates counts as absent.
// Feature is the polygon under the click, nil for a click on empty space.
type FeatureClicked struct {
	Point   *LngLat         `json:"coords,omitempty"`
	Feature *ClickedFeature `json:"feature,omitempty"`
}

func (FeatureClicked) eventType() string { return EventClick }

// Event type names used on the wire.
const (
	EventViewport = "viewport"
	EventClick    = "click"
)

// DecodeEvent decodes one event message.
//
// Messages are JSON objects with a "type" of "viewport" or "click":
//
//	{"type":"viewport","bounds":{"_sw":{"lng":-64.6,"lat":-31.5},"_ne":{"lng":-64.2,"lat":-31.2}}}
//	{"type":"click","coords":{"lng":-64.4,"lat":-31.4},"feature":{"props":{"id":"17"}}}
func DecodeEvent(data []byte) (Event, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, &ErrInvalidEvent{Reason: "malformed JSON", Err: err}
	}

	switch head.Type {
	case EventViewport:
		var ev ViewportChanged
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, &ErrInvalidEvent{Type: head.Type, Reason: "malformed viewport", Err: err}
		}
		return ev, nil
	case EventClick:
		var ev FeatureClicked
		if err := json.Unmarshal(data, &ev); err != nil {
			return nil, &ErrInvalidEvent{Type: head.Type, Reason: "malformed click", Err: err}
		}
		return ev, nil
	case "":
		return nil, &ErrInvalidEvent{Reason: "missing type"}
	default:
		return nil, &ErrInvalidEvent{Type: head.Type, Reason: "unknown type"}
	}
}

// ErrInvalidEvent indicates an event message that could not be decoded.
type ErrInvalidEvent struct {
	Type   string
	Reason string
	Err    error
}

func (e *ErrInvalidEvent) Error() string {
	msg := "invalid event"
	if e.Type != "" {
		msg = fmt.Sprintf("invalid %s event", e.Type)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", msg, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", msg, e.Reason)
}

func (e *ErrInvalidEvent) Unwrap() error { return e.Err }
