// Package burn loads burned-area polygons and answers viewport queries over them.
//
// A base Table is loaded once from one or more GeoJSON FeatureCollections and
// shared read-only. Every viewport change filters it to the features visible
// in a rectangle and sums a numeric attribute per group.
//
// # Basic Usage
//
//	table, diags := burn.LoadFile("area_quemada_2024_4326.geojson", burn.DefaultLoadOptions())
//	for _, d := range diags {
//	    log.Printf("skipped: %v", d)
//	}
//
//	vp := burn.NewViewport(-62.5, -31.5, -62.2, -31.3)
//	visible := burn.Filter(table, vp)
//
//	summary := burn.Summarize(visible, burn.DefaultValueField, burn.DefaultGroupField)
//	fmt.Printf("%.2f ha in %d polygons\n", summary.Total, summary.Count)
//	for _, row := range summary.Rows {
//	    fmt.Printf("  %-20s %10.2f\n", row.Key, row.Sum)
//	}
//
// # Visibility
//
// A feature is visible when its polygons touch or overlap the closed viewport
// rectangle, including the cases where one contains the other. Viewports with
// a missing edge or with west > east or south > north select nothing.
//
// # Indexing
//
// Tables scan linearly by default. For large inputs, an R-tree narrows the
// candidates before the exact test:
//
//	table = table.WithIndex(burn.IndexRTree)
//
// Results are the same for every index kind, in base table order.
//
// # Load Errors
//
// Loading never fails. Features with malformed or non-polygonal geometry are
// left out and reported as Diagnostics; an unreadable or malformed document
// yields an empty table and a single diagnostic with Index -1.
package burn
