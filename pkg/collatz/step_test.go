package collatz

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStep(t *testing.T) {
	cases := map[int64]int64{1: 4, 2: 1, 5: 16, 10: 5, 27: 82}
	for in, want := range cases {
		assert.Equal(t, want, Step(in), "Step(%d)", in)
	}
}

func TestNext_Overflow(t *testing.T) {
	_, ok := next(maxTripleOperand + 1)
	assert.False(t, ok)

	v, ok := next(maxTripleOperand - 1)
	require.True(t, ok)
	assert.Equal(t, int64(3*(maxTripleOperand-1)+1), v)

	v, ok = next(maxTripleOperand + 3)
	assert.False(t, ok)
	assert.Zero(t, v)
}

func TestIsBackbone(t *testing.T) {
	for _, v := range []int64{1, 2, 4, 8, 1024, 1 << 62} {
		assert.True(t, IsBackbone(v), "%d", v)
	}
	for _, v := range []int64{-4, 0, 3, 6, 12, 1000} {
		assert.False(t, IsBackbone(v), "%d", v)
	}
}

func TestExponent(t *testing.T) {
	e, err := Exponent(16)
	require.NoError(t, err)
	assert.Equal(t, 4, e)

	e, err = Exponent(1)
	require.NoError(t, err)
	assert.Equal(t, 0, e)

	_, err = Exponent(12)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestOddParent(t *testing.T) {
	cases := []struct {
		v    int64
		want bool
	}{
		{2, false},
		{4, true},
		{5, false},
		{7, false},
		{10, true},
		{13, false},
		{16, true},
		{22, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, OddParent(tc.v), "OddParent(%d)", tc.v)
	}
}
