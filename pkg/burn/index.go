package burn

import (
	"fmt"
	"sort"

	"github.com/dhconnelly/rtreego"
)

// IndexKind selects the candidate index a Table uses for viewport queries.
type IndexKind string

const (
	// IndexLinear scans every feature. O(n) per query, no build cost.
	IndexLinear IndexKind = "linear"

	// IndexRTree uses an R-tree over feature bounding boxes.
	// O(log n) candidate lookup after an O(n log n) build.
	IndexRTree IndexKind = "rtree"
)

// ParseIndexKind converts a configuration string to an IndexKind.
func ParseIndexKind(s string) (IndexKind, error) {
	switch IndexKind(s) {
	case "", IndexLinear:
		return IndexLinear, nil
	case IndexRTree:
		return IndexRTree, nil
	default:
		return "", fmt.Errorf("unknown index kind %q (want %q or %q)", s, IndexLinear, IndexRTree)
	}
}

// Index narrows a viewport query to candidate features.
//
// Candidates returns positions into the table's feature slice, in ascending
// order. It may return features that do not intersect the bounds; the table's
// predicate makes the final decision. It must not omit any feature that does.
type Index interface {
	Candidates(b Bounds) []int
}

func newIndex(kind IndexKind, features []*Feature) Index {
	switch kind {
	case IndexRTree:
		return NewRTreeIndex(features)
	default:
		return NewLinearIndex(features)
	}
}

// LinearIndex returns every feature whose bounding box intersects the query.
type LinearIndex struct {
	features []*Feature
}

// NewLinearIndex creates a linear scan index.
func NewLinearIndex(features []*Feature) *LinearIndex {
	return &LinearIndex{features: features}
}

// Candidates implements Index.
func (idx *LinearIndex) Candidates(b Bounds) []int {
	result := make([]int, 0, len(idx.features)/4+1)
	for i, f := range idx.features {
		if len(f.geometry) == 0 {
			continue
		}
		if b.Intersects(f.bounds) {
			result = append(result, i)
		}
	}
	return result
}

// rtreeMargin widens query rectangles so features that only touch the
// viewport edge are returned as candidates.
const rtreeMargin = 1e-9

// rtreeEpsilon is the minimum rectangle side accepted by rtreego (~11 meters at equator).
const rtreeEpsilon = 0.0001

// RTreeIndex answers candidate queries from an R-tree of feature bounds.
type RTreeIndex struct {
	rtree *rtreego.Rtree
}

// indexedFeature wraps a feature position for R-tree storage.
type indexedFeature struct {
	pos    int
	bounds Bounds
}

// Bounds implements rtreego.Spatial interface.
func (f *indexedFeature) Bounds() rtreego.Rect {
	return toRect(f.bounds)
}

// toRect converts bounds to an rtreego rectangle.
//
// R-tree requires non-zero dimensions, so degenerate sides get rtreeEpsilon.
func toRect(b Bounds) rtreego.Rect {
	point := rtreego.Point{b.MinLon, b.MinLat}

	lonLength := b.MaxLon - b.MinLon
	latLength := b.MaxLat - b.MinLat
	if lonLength < rtreeEpsilon {
		lonLength = rtreeEpsilon
	}
	if latLength < rtreeEpsilon {
		latLength = rtreeEpsilon
	}

	rect, _ := rtreego.NewRect(point, []float64{lonLength, latLength})
	return rect
}

// NewRTreeIndex builds an R-tree over the bounding boxes of features.
func NewRTreeIndex(features []*Feature) *RTreeIndex {
	// 2D, min=25 children, max=50 children
	rtree := rtreego.NewTree(2, 25, 50)
	for i, f := range features {
		if len(f.geometry) == 0 {
			continue
		}
		rtree.Insert(&indexedFeature{pos: i, bounds: f.bounds})
	}
	return &RTreeIndex{rtree: rtree}
}

// Candidates implements Index.
func (idx *RTreeIndex) Candidates(b Bounds) []int {
	spatials := idx.rtree.SearchIntersect(toRect(b.Expand(rtreeMargin)))

	result := make([]int, 0, len(spatials))
	for _, spatial := range spatials {
		result = append(result, spatial.(*indexedFeature).pos)
	}

	// R-tree order is arbitrary; callers rely on table order
	sort.Ints(result)
	return result
}

// Size returns the number of indexed features.
func (idx *RTreeIndex) Size() int {
	return idx.rtree.Size()
}
