package main

import (
	"context"
	"fmt"
	"log"

	"github.com/beetlebugorg/burnview/pkg/burn"
	"github.com/beetlebugorg/burnview/pkg/session"
)

func main() {
	table, _ := burn.LoadFile("incendios.geojson", burn.DefaultLoadOptions())

	opts := session.DefaultOptions()
	opts.ResolveClicks = true
	s := session.New("demo", table, opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	// Map moved
	ev, err := session.DecodeEvent([]byte(
		`{"type":"viewport","bounds":{"_sw":{"lng":-64.6,"lat":-31.5},"_ne":{"lng":-64.2,"lat":-31.2}}}`))
	if err != nil {
		log.Fatal(err)
	}
	snap, err := s.Submit(ctx, ev)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Printf("Visible area: %s (%d polygons)\n", snap.TotalText, snap.Count)

	// Polygon clicked, resolved against the base table
	snap, err = s.Submit(ctx, session.FeatureClicked{
		Point: &session.LngLat{Lng: -64.4, Lat: -31.4},
	})
	if err != nil {
		log.Fatal(err)
	}
	if !snap.Selected {
		fmt.Println(snap.Message)
		return
	}
	for _, d := range snap.Details() {
		fmt.Printf("  %-22s %s\n", d.Label, d.Value)
	}
}
