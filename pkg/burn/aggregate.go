package burn

import (
	"math"
	"sort"
	"strings"

	"github.com/spf13/cast"
)

// UnknownGroup is the group key for features without a usable group value.
const UnknownGroup = "unknown"

// Row is one group of an aggregate: the group value and the summed field.
type Row struct {
	Key string  `json:"group_key"`
	Sum float64 `json:"sum"`
}

// Summary is the aggregate of one subset.
type Summary struct {
	Rows  []Row   `json:"grouped_rows"`
	Total float64 `json:"total_area"`
	Count int     `json:"count"`
}

// Aggregate sums valueField over t grouped by groupField.
//
// Rows are sorted by Sum descending; groups with equal sums keep the order in
// which they were first seen. Features with a missing, nil or empty group value
// all fall into the single UnknownGroup row. Non-numeric values count as 0.
//
// The result is empty when t is empty, when no feature carries valueField, or
// when no value of valueField is numeric.
func Aggregate(t *Table, valueField, groupField string) []Row {
	rows, _ := aggregate(t, valueField, groupField)
	return rows
}

// Total sums valueField over every feature of t.
//
// Returns 0 under the same conditions that make Aggregate empty.
func Total(t *Table, valueField string) float64 {
	if t.Len() == 0 || valueField == "" {
		return 0
	}
	var total float64
	present, numeric := false, false
	for _, f := range t.features {
		raw, ok := f.attributes[valueField]
		if !ok {
			continue
		}
		present = true
		if v, ok := toNumber(raw); ok {
			numeric = true
			total += v
		}
	}
	if !present || !numeric {
		return 0
	}
	return total
}

// Summarize computes the grouped rows, the total and the feature count of t.
func Summarize(t *Table, valueField, groupField string) Summary {
	rows, ok := aggregate(t, valueField, groupField)
	s := Summary{Rows: rows, Count: t.Len()}
	if ok {
		s.Total = Total(t, valueField)
	}
	return s
}

func aggregate(t *Table, valueField, groupField string) ([]Row, bool) {
	if t.Len() == 0 || valueField == "" {
		return nil, false
	}

	var order []string
	sums := make(map[string]float64)
	present, numeric := false, false

	for _, f := range t.features {
		var v float64
		if raw, ok := f.attributes[valueField]; ok {
			present = true
			if n, ok := toNumber(raw); ok {
				numeric = true
				v = n
			}
		}

		key := groupKey(f.attributes, groupField)
		if _, seen := sums[key]; !seen {
			order = append(order, key)
		}
		sums[key] += v
	}

	if !present || !numeric {
		return nil, false
	}

	rows := make([]Row, len(order))
	for i, key := range order {
		rows[i] = Row{Key: key, Sum: sums[key]}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Sum > rows[j].Sum
	})
	return rows, true
}

// groupKey stringifies the group value, or returns UnknownGroup.
func groupKey(attrs map[string]interface{}, field string) string {
	raw, ok := attrs[field]
	if !ok || raw == nil {
		return UnknownGroup
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return UnknownGroup
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return UnknownGroup
	}
	return s
}

// toNumber coerces an attribute to a finite float64.
func toNumber(raw interface{}) (float64, bool) {
	switch v := raw.(type) {
	case nil:
		return 0, false
	case string:
		s := strings.TrimSpace(v)
		if s == "" {
			return 0, false
		}
		raw = s
	}

	f, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// CoerceNumber converts an attribute value to float64, returning 0 when the
// value is missing or not numeric.
func CoerceNumber(raw interface{}) float64 {
	v, _ := toNumber(raw)
	return v
}
