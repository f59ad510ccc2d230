package burn

// Filter returns the features of t that intersect the viewport.
//
// A viewport with a missing edge, a non-finite edge, west > east or
// south > north selects nothing and yields an empty table. The result keeps
// the order of t.
func Filter(t *Table, vp Viewport) *Table {
	b, ok := vp.Bounds()
	if !ok || t == nil {
		return EmptyTable()
	}
	return t.InBounds(b)
}

// InBounds returns all features that intersect the given bounding box.
//
// This is the primary method for viewport-based aggregation. Candidates come
// from the table's index; each is confirmed with the table's predicate.
//
// Example:
//
//	viewport := burn.Bounds{
//	    MinLon: -62.5, MaxLon: -62.2,
//	    MinLat: -31.5, MaxLat: -31.3,
//	}
//	visible := table.InBounds(viewport)
//	fmt.Printf("%d polygons visible\n", visible.Len())
func (t *Table) InBounds(b Bounds) *Table {
	if t == nil || !b.Valid() || len(t.features) == 0 {
		return EmptyTable()
	}
	if !b.Intersects(t.bounds) {
		return EmptyTable()
	}

	candidates := t.index.Candidates(b)
	result := make([]*Feature, 0, len(candidates))
	for _, pos := range candidates {
		f := t.features[pos]
		if len(f.geometry) == 0 {
			continue
		}
		if t.predicate(b, f.geometry) {
			result = append(result, f)
		}
	}

	subset := NewTable(result)
	subset.predicate = t.predicate
	return subset
}
