package main

import (
	"fmt"
	"log"

	"github.com/beetlebugorg/burnview/pkg/burn"
)

func main() {
	// Load burned-area polygons
	table, diags := burn.LoadFile("incendios.geojson", burn.DefaultLoadOptions())
	if table.Len() == 0 && len(diags) > 0 {
		log.Fatal(diags[0])
	}

	fmt.Printf("Features: %d\n", table.Len())
	fmt.Printf("Skipped: %d\n", len(diags))

	// Dataset extent
	b := table.Bounds()
	fmt.Printf("Bounds: [%.4f,%.4f] to [%.4f,%.4f]\n",
		b.MinLon, b.MinLat,
		b.MaxLon, b.MaxLat)

	// Total burned area
	fmt.Printf("Total: %.2f ha\n", burn.Total(table, burn.DefaultValueField))
}
