package main

import (
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/beetlebugorg/burnview/pkg/burn"
)

func main() {
	table, diags := burn.LoadFile("incendios.geojson", burn.DefaultLoadOptions())

	// Excluded features are reported, the rest is usable
	for _, d := range diags {
		switch {
		case errors.Is(d, os.ErrNotExist):
			log.Printf("missing source: %s", d.Source)
		case d.Index < 0:
			log.Printf("unusable source: %v", d)
		default:
			log.Printf("skipped feature %s: %s", d.FeatureID, d.Reason)
		}
	}

	fmt.Printf("Loaded %d features, %d feature diagnostics\n",
		table.Len(), diags.Features())

	// A missing file yields an empty table and one source diagnostic
	empty, diags := burn.LoadFile("NONEXISTENT.geojson", burn.DefaultLoadOptions())
	fmt.Printf("Missing file: %d features, %d diagnostics\n", empty.Len(), len(diags))
}
