package main

import (
	"fmt"

	"github.com/beetlebugorg/burnview/pkg/burn"
)

func main() {
	opts := burn.DefaultLoadOptions()
	opts.Index = burn.IndexRTree

	table, _ := burn.LoadFile("incendios.geojson", opts)

	// Viewport over the Sierras Chicas
	viewport := burn.NewViewport(-64.6, -31.5, -64.2, -31.2)

	// Index candidates, then exact polygon/rectangle test
	visible := burn.Filter(table, viewport)
	summary := burn.Summarize(visible, burn.DefaultValueField, burn.DefaultGroupField)

	fmt.Printf("Visible polygons: %d\n", summary.Count)
	fmt.Printf("Total area: %.2f ha\n", summary.Total)

	for _, row := range summary.Rows {
		fmt.Printf("  %-30s %10.2f ha\n", row.Key, row.Sum)
	}
}
