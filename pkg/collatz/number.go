package collatz

import (
	"cmp"
	"slices"
)

// Number is the record of one value in a run. Stages fill it in place:
// Seed sets Value, IsBackbone and Target; the chase and stitch stages grow
// Tail and TailPath; DeriveProperties sets the rest.
type Number struct {
	Value      int64 `json:"value"`
	IsBackbone bool  `json:"is_bb"`
	Target     int64 `json:"target"`

	// Tail is the value where the known part of the trajectory currently ends.
	Tail int64 `json:"-"`
	// TailPath runs from the first successor of Value to Tail, inclusive.
	// It is only ever extended.
	TailPath []int64 `json:"-"`

	FullPath         []int64 `json:"full_path"`
	Dist             int     `json:"dist"`
	DistToBb         int     `json:"dist_to_bb"`
	ClosestVertValue int64   `json:"closest_vert_value"`
	ClosestVert      int     `json:"closest_vert"`
	Peak             int64   `json:"peak"`
	PeakSlope        float64 `json:"peak_slope"`
	OddParent        bool    `json:"odd_parent"`
	// Bounded is true when the trajectory never climbs above the floor.
	Bounded bool `json:"bounded"`
}

// NewNumber returns a fresh record for v.
func NewNumber(v int64) *Number {
	return &Number{
		Value:      v,
		IsBackbone: IsBackbone(v),
		Target:     Step(v),
	}
}

// Batch is the set of records owned by one partition worker.
type Batch struct {
	Partition Range
	Numbers   []*Number
}

// Flatten merges batches into one slice ordered by value.
func Flatten(batches []Batch) []*Number {
	total := 0
	for _, b := range batches {
		total += len(b.Numbers)
	}
	out := make([]*Number, 0, total)
	for _, b := range batches {
		out = append(out, b.Numbers...)
	}
	SortByValue(out)
	return out
}

// SortByValue orders numbers by ascending value.
func SortByValue(numbers []*Number) {
	slices.SortFunc(numbers, func(a, b *Number) int {
		return cmp.Compare(a.Value, b.Value)
	})
}
