package collatz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// forest builds A(10) -> B(5) -> C(8) -> 1 split over two partitions.
func forest() []Batch {
	c := &Number{Value: 8, IsBackbone: true, Target: 4, Tail: 1, TailPath: []int64{4, 2, 1}}
	b := &Number{Value: 5, Target: 16, Tail: 8, TailPath: []int64{16, 8}}
	a := &Number{Value: 10, Target: 5, Tail: 5, TailPath: []int64{5}}
	return []Batch{
		{Partition: Range{Index: 0, Lo: 0, Hi: 6}, Numbers: []*Number{b}},
		{Partition: Range{Index: 1, Lo: 7, Hi: 12}, Numbers: []*Number{c, a}},
	}
}

func TestStitch_Forest(t *testing.T) {
	for _, order := range [][]int{{0, 1}, {1, 0}} {
		src := forest()
		batches := []Batch{src[order[0]], src[order[1]]}

		arena, err := NewArena(batches)
		require.NoError(t, err)

		stats, err := Stitch(arena)
		require.NoError(t, err)
		assert.Equal(t, StitchStats{Anchors: 1, Extensions: 2}, stats)

		assert.Equal(t, []int64{5, 16, 8, 4, 2, 1}, arena[10].TailPath)
		assert.Equal(t, []int64{16, 8, 4, 2, 1}, arena[5].TailPath)
		assert.Equal(t, []int64{4, 2, 1}, arena[8].TailPath)
		for _, n := range arena {
			assert.Equal(t, int64(1), n.Tail)
		}
	}
}

func TestStitch_NoAliasing(t *testing.T) {
	shared := make([]int64, 1, 8)
	shared[0] = 5
	a := &Number{Value: 10, Tail: 5, TailPath: shared}
	b := &Number{Value: 5, Tail: 1, TailPath: []int64{16, 8, 4, 2, 1}}
	arena := Arena{10: a, 5: b}

	_, err := Stitch(arena)
	require.NoError(t, err)

	assert.Equal(t, []int64{5, 16, 8, 4, 2, 1}, a.TailPath)
	assert.Equal(t, int64(0), shared[:2][1], "spare capacity of the old path must stay untouched")

	a.TailPath[1] = -1
	assert.Equal(t, []int64{16, 8, 4, 2, 1}, b.TailPath)
}

func TestStitch_MissingAnchor(t *testing.T) {
	arena := Arena{
		10: {Value: 10, Tail: 5, TailPath: []int64{5}},
		12: {Value: 12, Tail: 6, TailPath: []int64{6}},
	}
	_, err := Stitch(arena)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestNewArena_Duplicate(t *testing.T) {
	batches := []Batch{
		{Numbers: []*Number{NewNumber(3)}},
		{Numbers: []*Number{NewNumber(3)}},
	}
	_, err := NewArena(batches)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

// trajectory walks v down to 1 without any of the pipeline machinery.
func trajectory(v int64) []int64 {
	var path []int64
	for v != 1 {
		v = Step(v)
		path = append(path, v)
	}
	return path
}

func TestStages_MatchDirectTrajectory(t *testing.T) {
	const upper = 120
	ctx := context.Background()

	for _, limit := range []int64{2, 7, 16, 64, upper} {
		for _, p := range []int{2, 3, 8} {
			ranges, err := Partition(upper, p)
			require.NoError(t, err)
			batches := Seed(ranges, upper)

			chaser := Chaser{Limit: limit, MaxSteps: DefaultMaxSteps}
			for i := range batches {
				batches[i], err = chaser.ChaseTails(ctx, batches[i])
				require.NoError(t, err)
				batches[i], err = ExpandBackbone(ctx, batches[i])
				require.NoError(t, err)
			}

			arena, err := NewArena(batches)
			require.NoError(t, err)
			_, err = Stitch(arena)
			require.NoError(t, err, "limit=%d p=%d", limit, p)

			deriver := Deriver{Limit: upper}
			for _, b := range Split(ranges, arena.Numbers()) {
				_, err = deriver.DeriveProperties(ctx, b)
				require.NoError(t, err)
			}

			require.Len(t, arena, upper-2)
			for v, n := range arena {
				require.Equal(t, trajectory(v), n.FullPath, "limit=%d p=%d value=%d", limit, p, v)
				assert.Equal(t, len(n.FullPath), n.Dist)
				assert.GreaterOrEqual(t, n.Peak, n.Value)
				assert.GreaterOrEqual(t, n.PeakSlope, 1.0)
			}
		}
	}
}
