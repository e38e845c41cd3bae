package collatz

import (
	"fmt"
	"maps"
	"slices"
)

// Arena addresses every record of a run by its value.
type Arena map[int64]*Number

// NewArena indexes the records of all batches. A value seen twice is an
// ErrInvariantViolation.
func NewArena(batches []Batch) (Arena, error) {
	arena := make(Arena)
	for _, b := range batches {
		for _, n := range b.Numbers {
			if _, dup := arena[n.Value]; dup {
				return nil, fmt.Errorf("%w: value %d appears in more than one batch", ErrInvariantViolation, n.Value)
			}
			arena[n.Value] = n
		}
	}
	return arena, nil
}

// Numbers returns the records ordered by value.
func (a Arena) Numbers() []*Number {
	out := make([]*Number, 0, len(a))
	for _, k := range slices.Sorted(maps.Keys(a)) {
		out = append(out, a[k])
	}
	return out
}

// StitchStats describes one closure pass.
type StitchStats struct {
	// Anchors is the number of records already resolved to 1 before stitching.
	Anchors int
	// Extensions is the number of records whose path was extended.
	Extensions int
}

// stitcher holds the closure state. It is owned by a single goroutine.
type stitcher struct {
	arena    Arena
	waiting  map[int64][]int64 // tail -> unresolved values ending there
	worklist []int64
	stats    StitchStats
}

// Stitch extends every unresolved record's TailPath with the path of the
// record its tail points to, until every path ends at 1. Records resolved to
// 1 seed the worklist; each popped record resolves the records waiting on it
// and is pushed in turn. The result does not depend on worklist order.
//
// Records still waiting when the worklist drains have no resolved ancestor,
// and Stitch reports them as ErrInvariantViolation.
func Stitch(a Arena) (StitchStats, error) {
	s := &stitcher{
		arena:   a,
		waiting: make(map[int64][]int64),
	}
	s.seed()
	s.loop()
	return s.stats, s.verify()
}

// seed splits the arena into resolved anchors and waiting records.
func (s *stitcher) seed() {
	for _, v := range slices.Sorted(maps.Keys(s.arena)) {
		n := s.arena[v]
		if n.Tail == 1 {
			s.worklist = append(s.worklist, v)
			s.stats.Anchors++
			continue
		}
		s.waiting[n.Tail] = append(s.waiting[n.Tail], v)
	}
}

// loop drains the worklist.
func (s *stitcher) loop() {
	for len(s.worklist) > 0 {
		last := len(s.worklist) - 1
		r := s.arena[s.worklist[last]]
		s.worklist = s.worklist[:last]

		for _, pv := range s.waiting[r.Value] {
			p := s.arena[pv]
			// clip so the append never writes into a backing array shared with r
			p.TailPath = append(slices.Clip(p.TailPath), r.TailPath...)
			p.Tail = r.Tail
			s.worklist = append(s.worklist, pv)
			s.stats.Extensions++
		}
		delete(s.waiting, r.Value)
	}
}

// verify fails if any record is still waiting.
func (s *stitcher) verify() error {
	if len(s.waiting) == 0 {
		return nil
	}
	stuck := 0
	for _, vs := range s.waiting {
		stuck += len(vs)
	}
	tail := slices.Min(slices.Collect(maps.Keys(s.waiting)))
	return fmt.Errorf("%w: %d records never reached 1 (e.g. %d waits on %d)",
		ErrInvariantViolation, stuck, s.waiting[tail][0], tail)
}
