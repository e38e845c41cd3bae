// Package storetest checks a store.Store implementation against the
// behaviour every backend shares.
package storetest

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/filter"
	"github.com/ib-77/cbd/pkg/store"
)

// Numbers returns derived records for every value of [2, upperBound).
func Numbers(t *testing.T, upperBound int64) []*collatz.Number {
	t.Helper()
	ctx := context.Background()

	ranges, err := collatz.Partition(upperBound, 2)
	require.NoError(t, err)
	batches := collatz.Seed(ranges, upperBound)

	chaser := collatz.Chaser{Limit: upperBound, MaxSteps: collatz.DefaultMaxSteps}
	for i, b := range batches {
		b, err = chaser.ChaseTails(ctx, b)
		require.NoError(t, err)
		batches[i], err = collatz.ExpandBackbone(ctx, b)
		require.NoError(t, err)
	}
	arena, err := collatz.NewArena(batches)
	require.NoError(t, err)
	_, err = collatz.Stitch(arena)
	require.NoError(t, err)

	numbers := arena.Numbers()
	deriver := collatz.Deriver{Limit: upperBound}
	_, err = deriver.DeriveProperties(ctx, collatz.Batch{Numbers: numbers})
	require.NoError(t, err)
	return numbers
}

func values(numbers []*collatz.Number) []int64 {
	out := make([]int64, len(numbers))
	for i, n := range numbers {
		out[i] = n.Value
	}
	return out
}

// Run exercises s. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("save and load", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		numbers := Numbers(t, 40)

		require.NoError(t, s.SaveNumbers(ctx, numbers))
		got, err := s.LoadNumbers(ctx, store.Query{Lo: 2, Hi: 39})
		require.NoError(t, err)
		require.Len(t, got, len(numbers))
		for i, n := range numbers {
			g := got[i]
			assert.Equal(t, n.Value, g.Value)
			assert.Equal(t, n.IsBackbone, g.IsBackbone)
			assert.Equal(t, n.FullPath, g.FullPath)
			assert.Equal(t, n.Dist, g.Dist)
			assert.Equal(t, n.DistToBb, g.DistToBb)
			assert.Equal(t, n.ClosestVertValue, g.ClosestVertValue)
			assert.Equal(t, n.ClosestVert, g.ClosestVert)
			assert.Equal(t, n.Peak, g.Peak)
			assert.InDelta(t, n.PeakSlope, g.PeakSlope, 1e-12)
			assert.Equal(t, n.OddParent, g.OddParent)
			assert.Equal(t, n.Bounded, g.Bounded)
		}
	})

	t.Run("range is inclusive", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.SaveNumbers(ctx, Numbers(t, 40)))

		got, err := s.LoadNumbers(ctx, store.Query{Lo: 10, Hi: 14})
		require.NoError(t, err)
		assert.Equal(t, []int64{10, 11, 12, 13, 14}, values(got))

		got, err = s.LoadNumbers(ctx, store.Query{Lo: 100, Hi: 200})
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("negative lower bound", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		require.NoError(t, s.SaveNumbers(ctx, Numbers(t, 40)))

		got, err := s.LoadNumbers(ctx, store.Query{Lo: -5, Hi: 10})
		require.NoError(t, err)
		assert.Equal(t, []int64{2, 3, 4, 5, 6, 7, 8, 9, 10}, values(got))

		got, err = s.LoadNumbers(ctx, store.Query{Lo: -10, Hi: -1})
		require.NoError(t, err)
		assert.Empty(t, got)

		ok, err := s.Covers(ctx, -5, 10)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("save replaces by value", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		numbers := Numbers(t, 20)
		require.NoError(t, s.SaveNumbers(ctx, numbers))
		require.NoError(t, s.SaveNumbers(ctx, numbers))

		changed := *numbers[0]
		changed.Dist = 999
		require.NoError(t, s.SaveNumbers(ctx, []*collatz.Number{&changed}))

		got, err := s.LoadNumbers(ctx, store.Query{Lo: 2, Hi: 19})
		require.NoError(t, err)
		require.Len(t, got, len(numbers))
		assert.Equal(t, 999, got[0].Dist)
	})

	t.Run("filter", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		numbers := Numbers(t, 64)
		require.NoError(t, s.SaveNumbers(ctx, numbers))

		positive := false
		f := &filter.Filter{Name: "not bb", Type: filter.EQL, Polarity: &positive, Column: "is_bb", Parameters: []float64{1}}
		got, err := s.LoadNumbers(ctx, store.Query{Lo: 2, Hi: 63, Filter: f})
		require.NoError(t, err)

		want, err := f.Apply(numbers)
		require.NoError(t, err)
		assert.Equal(t, values(want), values(got))
		for _, n := range got {
			assert.False(t, n.IsBackbone)
		}

		positive = true
		rng := &filter.Filter{Name: "mid", Type: filter.RNG, Polarity: &positive, Column: "dist", Parameters: []float64{5, 8}}
		got, err = s.LoadNumbers(ctx, store.Query{Lo: 2, Hi: 63, Filter: rng})
		require.NoError(t, err)
		want, err = rng.Apply(numbers)
		require.NoError(t, err)
		assert.Equal(t, values(want), values(got))
	})

	t.Run("covers", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()

		ok, err := s.Covers(ctx, 2, 29)
		require.NoError(t, err)
		assert.False(t, ok)

		require.NoError(t, s.SaveNumbers(ctx, Numbers(t, 30)))
		ok, err = s.Covers(ctx, 2, 29)
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = s.Covers(ctx, 2, 30)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("runs", func(t *testing.T) {
		s := newStore(t)
		ctx := context.Background()
		start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		first := store.Run{ID: uuid.New(), UpperBound: 100, Limit: 100, Processes: 4, Records: 98,
			StartedAt: start, FinishedAt: start.Add(time.Second)}
		second := store.Run{ID: uuid.New(), UpperBound: 200, Limit: 50, Processes: 2, Records: 198, Extensions: 40,
			StartedAt: start.Add(time.Hour), FinishedAt: start.Add(time.Hour + time.Second)}

		require.NoError(t, s.RecordRun(ctx, second))
		require.NoError(t, s.RecordRun(ctx, first))

		runs, err := s.Runs(ctx)
		require.NoError(t, err)
		require.Len(t, runs, 2)
		assert.Equal(t, first.ID, runs[0].ID)
		assert.Equal(t, second.ID, runs[1].ID)
		assert.Equal(t, int64(50), runs[1].Limit)
		assert.Equal(t, 40, runs[1].Extensions)
		assert.True(t, second.StartedAt.Equal(runs[1].StartedAt))
		assert.Equal(t, time.Second, runs[1].Duration())
	})
}
