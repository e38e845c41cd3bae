package rop

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func double(_ context.Context, in int) (int, error) {
	return in * 2, nil
}

func TestStage_SingleWorker(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	out, err := Stage(ctx, []int{1, 2, 3, 4, 5}, Try(double), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{2, 4, 6, 8, 10}, out)
}

func TestStage_MultipleWorkers(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	input := make([]int, 100)
	for i := range input {
		input[i] = i
	}

	var active, peak atomic.Int32
	slow := func(ctx context.Context, in int) (int, error) {
		n := active.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(time.Millisecond)
		active.Add(-1)
		return in * 2, nil
	}

	out, err := Stage(ctx, input, Try(slow), 4, nil)
	require.NoError(t, err)
	require.Len(t, out, len(input))

	slices.Sort(out)
	for i, v := range out {
		assert.Equal(t, i*2, v)
	}
	assert.LessOrEqual(t, peak.Load(), int32(4))
}

func TestStage_EmptyInput(t *testing.T) {
	t.Parallel()

	out, err := Stage(context.Background(), nil, Try(double), 3, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStage_FailureAbortsStage(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	boom := errors.New("boom")
	var processed atomic.Int32
	engine := Try(func(ctx context.Context, in int) (int, error) {
		processed.Add(1)
		if in == 3 {
			return 0, boom
		}
		return in, nil
	})

	input := make([]int, 1000)
	for i := range input {
		input[i] = i
	}

	out, err := Stage(ctx, input, engine, 2, nil)
	require.ErrorIs(t, err, boom)
	assert.Nil(t, out)
	assert.Less(t, processed.Load(), int32(len(input)))
}

func TestStage_ParentCancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Stage(ctx, []int{1, 2, 3}, Try(double), 2, nil)
	require.Error(t, err)
	assert.True(t, IsCancellationError(err))
}

func TestStage_OnSuccessCalledPerResult(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	seen := map[int]bool{}
	onSuccess := func(_ context.Context, r Result[int]) {
		mu.Lock()
		defer mu.Unlock()
		assert.True(t, r.IsSuccess())
		assert.NotEqual(t, [16]byte{}, [16]byte(r.Id()))
		seen[r.Result()] = true
	}

	_, err := Stage(context.Background(), []int{1, 2, 3}, Try(double), 3, onSuccess)
	require.NoError(t, err)
	assert.Equal(t, map[int]bool{2: true, 4: true, 6: true}, seen)
}

func TestTry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	boom := errors.New("boom")

	t.Run("success", func(t *testing.T) {
		r := Try(double)(ctx, Success(21))
		require.True(t, r.IsSuccess())
		assert.Equal(t, 42, r.Result())
	})

	t.Run("error becomes failure", func(t *testing.T) {
		r := Try(func(context.Context, int) (int, error) { return 0, boom })(ctx, Success(1))
		assert.False(t, r.IsSuccess())
		assert.False(t, r.IsCancel())
		assert.ErrorIs(t, r.Err(), boom)
	})

	t.Run("context error becomes cancel", func(t *testing.T) {
		r := Try(func(context.Context, int) (int, error) { return 0, context.Canceled })(ctx, Success(1))
		assert.False(t, r.IsSuccess())
		assert.True(t, r.IsCancel())
	})

	t.Run("failed input passes through", func(t *testing.T) {
		called := false
		in := Fail[int](boom)
		r := Try(func(context.Context, int) (string, error) {
			called = true
			return "", nil
		})(ctx, in)
		assert.False(t, called)
		assert.ErrorIs(t, r.Err(), boom)
		assert.Equal(t, in.Id(), r.Id())
		assert.Equal(t, in.CreatedAt(), r.CreatedAt())
	})
}

func TestFromChanMany_KeepsFirstError(t *testing.T) {
	t.Parallel()

	first, second := errors.New("first"), errors.New("second")
	ch := make(chan Result[int], 4)
	ch <- Success(1)
	ch <- Fail[int](first)
	ch <- Success(2)
	ch <- Cancel[int](second)
	close(ch)

	out, err := FromChanMany(ch)
	assert.Equal(t, []int{1, 2}, out)
	assert.ErrorIs(t, err, first)
}
