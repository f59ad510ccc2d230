package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/beetlebugorg/burnview/internal/metrics"
	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/beetlebugorg/burnview/pkg/session"
	"github.com/gofiber/fiber/v2"
	"github.com/paulmach/orb/geojson"
)

// HealthHandler returns a liveness check with the size of the base table.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		resp := fiber.Map{
			"status":      "ok",
			"uptime":      time.Since(startedAt).String(),
			"features":    deps.Table.Len(),
			"diagnostics": len(deps.Diagnostics),
			"index":       deps.Table.IndexKind(),
		}
		if deps.Sessions != nil {
			resp["sessions"] = deps.Sessions.Stats()
		}
		return c.JSON(resp)
	}
}

// FeaturesHandler serves the whole base table as a GeoJSON FeatureCollection.
func FeaturesHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Table.FeatureCollection())
	}
}

// summaryResponse is the aggregate of one viewport.
type summaryResponse struct {
	TotalArea     float64                    `json:"total_area"`
	TotalAreaText string                     `json:"total_area_text"`
	Count         int                        `json:"count"`
	GroupedRows   []burn.Row                 `json:"grouped_rows"`
	Features      *geojson.FeatureCollection `json:"features,omitempty"`
}

func newSummaryResponse(s burn.Summary) summaryResponse {
	rows := s.Rows
	if rows == nil {
		rows = []burn.Row{}
	}
	return summaryResponse{
		TotalArea:     s.Total,
		TotalAreaText: session.FormatArea(s.Total),
		Count:         s.Count,
		GroupedRows:   rows,
	}
}

// ViewportHandler filters and aggregates without a session.
//
// Query: west, south, east, north (decimal degrees), optional group and
// value field names, and geojson=1 to include the visible features.
// Missing edges select nothing; malformed numbers are rejected.
func ViewportHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var vp burn.Viewport
		edges := []struct {
			name string
			dst  **float64
		}{
			{"west", &vp.West},
			{"south", &vp.South},
			{"east", &vp.East},
			{"north", &vp.North},
		}
		for _, e := range edges {
			v, ok, err := queryFloat(c, e.name)
			if err != nil {
				return errBadRequest(c, err.Error())
			}
			if ok {
				*e.dst = &v
			}
		}

		group := c.Query("group", deps.GroupField)
		value := c.Query("value", deps.ValueField)

		start := time.Now()
		visible := burn.Filter(deps.Table, vp)
		resp := newSummaryResponse(burn.Summarize(visible, value, group))
		metrics.ObserveViewport(time.Since(start), visible.Len())

		if c.QueryBool("geojson") {
			resp.Features = visible.FeatureCollection()
		}
		return c.JSON(resp)
	}
}

// FeatureAtHandler resolves a click server-side: the attributes of the first
// feature containing lng, lat.
func FeatureAtHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		lng, okLng, err := queryFloat(c, "lng")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		lat, okLat, err := queryFloat(c, "lat")
		if err != nil {
			return errBadRequest(c, err.Error())
		}
		if !okLng || !okLat {
			return errBadRequest(c, "lng and lat are required")
		}

		f, found := deps.Table.At(lng, lat)
		metrics.ObserveClick(found)
		if !found {
			return c.JSON(fiber.Map{
				"selected": false,
				"message":  session.NothingSelected,
			})
		}

		snap := &session.Snapshot{Selected: true, Attributes: f.Attributes()}
		return c.JSON(fiber.Map{
			"selected":            true,
			"feature_id":          f.ID(),
			"selected_attributes": f.Attributes(),
			"details":             snap.Details(),
		})
	}
}

// queryFloat parses an optional float query parameter.
func queryFloat(c *fiber.Ctx, name string) (float64, bool, error) {
	raw := strings.TrimSpace(c.Query(name))
	if raw == "" {
		return 0, false, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false, fiber.NewError(fiber.StatusBadRequest, name+" must be a number")
	}
	return v, true, nil
}
