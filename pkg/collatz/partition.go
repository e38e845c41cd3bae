package collatz

import "fmt"

// Range is an inclusive span [Lo, Hi] of the working domain. A range with
// Lo > Hi is empty.
type Range struct {
	Index int
	Lo    int64
	Hi    int64
}

// Contains reports whether v lies in the range.
func (r Range) Contains(v int64) bool {
	return v >= r.Lo && v <= r.Hi
}

// Empty reports whether the range holds no values.
func (r Range) Empty() bool {
	return r.Lo > r.Hi
}

// Partition splits [0, upperBound] into p contiguous, non-overlapping ranges.
// With size = upperBound/(p-1), range i spans [size*i + 1, size*(i+1)]
// (range 0 starts at 0). Ranges are clamped to upperBound, so the trailing
// ones may be empty when the domain is small.
func Partition(upperBound int64, p int) ([]Range, error) {
	if p < 2 {
		return nil, fmt.Errorf("%w: partition count %d, need at least 2", ErrInvalidConfiguration, p)
	}
	if upperBound < 2 {
		return nil, fmt.Errorf("%w: upper bound %d, need at least 2", ErrInvalidConfiguration, upperBound)
	}

	size := max(upperBound/int64(p-1), 1)
	ranges := make([]Range, p)
	for i := range p {
		lo := size * int64(i)
		if i > 0 {
			lo++
		}
		hi := size * int64(i+1)
		ranges[i] = Range{
			Index: i,
			Lo:    min(lo, upperBound+1),
			Hi:    min(hi, upperBound),
		}
	}
	// the last range absorbs the remainder of the integer division
	ranges[p-1].Hi = upperBound
	return ranges, nil
}

// Seed creates one batch per range holding fresh records for every value of
// [2, upperBound) that falls in it.
func Seed(ranges []Range, upperBound int64) []Batch {
	batches := make([]Batch, len(ranges))
	for i, r := range ranges {
		lo := max(r.Lo, 2)
		hi := min(r.Hi, upperBound-1)
		numbers := make([]*Number, 0, max(hi-lo+1, 0))
		for v := lo; v <= hi; v++ {
			numbers = append(numbers, NewNumber(v))
		}
		batches[i] = Batch{Partition: r, Numbers: numbers}
	}
	return batches
}

// Split hands numbers back to the ranges they belong to. Numbers outside
// every range are dropped.
func Split(ranges []Range, numbers []*Number) []Batch {
	batches := make([]Batch, len(ranges))
	for i, r := range ranges {
		batches[i].Partition = r
	}
	for _, n := range numbers {
		for i, r := range ranges {
			if r.Contains(n.Value) {
				batches[i].Numbers = append(batches[i].Numbers, n)
				break
			}
		}
	}
	return batches
}
