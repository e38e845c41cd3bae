package filter

import (
	"sort"

	"github.com/ib-77/cbd/pkg/collatz"
)

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// columns maps a stored column name to its in-memory accessor. Boolean
// columns read as 0 or 1, the way sqlite stores them.
var columns = map[string]func(n *collatz.Number) float64{
	"value":              func(n *collatz.Number) float64 { return float64(n.Value) },
	"is_bb":              func(n *collatz.Number) float64 { return boolValue(n.IsBackbone) },
	"dist":               func(n *collatz.Number) float64 { return float64(n.Dist) },
	"dist_to_bb":         func(n *collatz.Number) float64 { return float64(n.DistToBb) },
	"closest_vert":       func(n *collatz.Number) float64 { return float64(n.ClosestVert) },
	"closest_vert_value": func(n *collatz.Number) float64 { return float64(n.ClosestVertValue) },
	"peak":               func(n *collatz.Number) float64 { return float64(n.Peak) },
	"peak_slope":         func(n *collatz.Number) float64 { return n.PeakSlope },
	"odd_parent":         func(n *collatz.Number) float64 { return boolValue(n.OddParent) },
}

// Columns lists the column names a filter may address.
func Columns() []string {
	names := make([]string, 0, len(columns))
	for name := range columns {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field reads column from n. ok is false for an unknown column.
func Field(n *collatz.Number, column string) (v float64, ok bool) {
	get, ok := columns[column]
	if !ok {
		return 0, false
	}
	return get(n), true
}
