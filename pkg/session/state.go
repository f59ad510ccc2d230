package session

import (
	"fmt"

	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/paulmach/orb"
	"github.com/spf13/cast"
)

// NothingSelected is the detail message shown while no feature is selected.
const NothingSelected = "Hacé clic sobre un polígono para ver los datos."

// Snapshot is the state of a session after an event.
//
// Snapshots are immutable once published; every event produces a new one.
type Snapshot struct {
	// SessionID identifies the owning session.
	SessionID string `json:"session_id"`
	// Version counts published snapshots, starting at 0 for the initial state.
	Version uint64 `json:"version"`

	// Point is the last clicked position. A click without coordinates keeps
	// the previous point; a click on empty space does not clear it.
	Point *orb.Point `json:"selected_point"`
	// Selected reports whether Attributes holds a clicked feature.
	Selected bool `json:"selected"`
	// Attributes holds a copy of the clicked feature's properties, null while
	// nothing is selected.
	Attributes map[string]interface{} `json:"selected_attributes"`
	// Message is NothingSelected while Selected is false.
	Message string `json:"message,omitempty"`

	// Viewport is the last applied viewport.
	Viewport burn.Viewport `json:"viewport"`
	burn.Summary
	// TotalText is Total formatted for display.
	TotalText string `json:"total_area_text"`

	// ViewportSeq and ClickSeq are the sequence numbers of the last applied
	// viewport and click events.
	ViewportSeq uint64 `json:"viewport_seq"`
	ClickSeq    uint64 `json:"click_seq"`

	visible *burn.Table
}

// Visible returns the features inside the current viewport.
func (s *Snapshot) Visible() *burn.Table {
	if s == nil || s.visible == nil {
		return burn.EmptyTable()
	}
	return s.visible
}

func initialSnapshot(id string) *Snapshot {
	return &Snapshot{
		SessionID: id,
		Message:   NothingSelected,
		Summary:   burn.Summary{Rows: []burn.Row{}},
		TotalText: FormatArea(0),
		visible:   burn.EmptyTable(),
	}
}

// clone returns a shallow copy to be modified before publication.
func (s *Snapshot) clone() *Snapshot {
	c := *s
	c.Version++
	return &c
}

// FormatArea formats a hectare value for display.
func FormatArea(ha float64) string {
	return fmt.Sprintf("%.2f ha", ha)
}

// DetailField is one labelled line of the selected-feature panel.
type DetailField struct {
	Label   string
	Key     string
	Default string
	Unit    string
}

// DetailFields lists the attributes shown for a selected burned area.
var DetailFields = []DetailField{
	{Label: "ID", Key: "id", Default: "N/D"},
	{Label: "Localidad", Key: "localidad_proxima", Default: "Desconocida"},
	{Label: "Área Afectada", Key: "area_deteccion", Default: "N/D", Unit: "ha"},
	{Label: "Fecha Detección", Key: "fecha_deteccion", Default: "Sin fecha"},
	{Label: "Departamento", Key: "departamento", Default: "Desconocido"},
	{Label: "Sitio de Referencia", Key: "sitio_referencia", Default: "N/D"},
	{Label: "Cuenca Hidrográfica", Key: "cuenca_hidr", Default: "N/D"},
	{Label: "Cobertura 1", Key: "cobertura1", Default: "N/D"},
	{Label: "Cobertura 2", Key: "cobertura2", Default: "N/D"},
	{Label: "Cobertura 3", Key: "cobertura3", Default: "N/D"},
	{Label: "Cobertura 4", Key: "cobertura4", Default: "N/D"},
	{Label: "Pendiente Media", Key: "pend_median", Default: "N/D"},
	{Label: "Altitud Media", Key: "altitud_mean", Default: "N/D", Unit: "m"},
	{Label: "Orientación", Key: "orientacion", Default: "N/D"},
	{Label: "Grilla", Key: "grilla", Default: "N/D"},
	{Label: "Reporte", Key: "reporte", Default: "N/D"},
}

// Detail is a rendered DetailField.
type Detail struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// Details renders DetailFields for the selected feature, or nil when nothing
// is selected. Missing attributes use the field default.
func (s *Snapshot) Details() []Detail {
	if s == nil || !s.Selected {
		return nil
	}
	out := make([]Detail, 0, len(DetailFields))
	for _, f := range DetailFields {
		value := f.Default
		if raw, ok := s.Attributes[f.Key]; ok {
			if str, err := cast.ToStringE(raw); err == nil {
				value = str
			}
		}
		if f.Unit != "" && value != f.Default {
			value += " " + f.Unit
		}
		out = append(out, Detail{Label: f.Label, Value: value})
	}
	return out
}
