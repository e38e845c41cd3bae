package collatz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandBackbone(t *testing.T) {
	c := Chaser{Limit: 16, MaxSteps: 100}
	batch := Batch{Numbers: []*Number{NewNumber(2), NewNumber(10), NewNumber(16)}}
	batch, err := c.ChaseTails(context.Background(), batch)
	require.NoError(t, err)

	batch, err = ExpandBackbone(context.Background(), batch)
	require.NoError(t, err)

	two, ten, sixteen := batch.Numbers[0], batch.Numbers[1], batch.Numbers[2]

	assert.Equal(t, []int64{1}, two.TailPath)
	assert.Equal(t, int64(1), two.Tail)

	assert.Equal(t, []int64{5}, ten.TailPath, "non-backbone records pass through")
	assert.Equal(t, int64(5), ten.Tail)

	assert.Equal(t, []int64{8, 4, 2, 1}, sixteen.TailPath)
	assert.Equal(t, int64(1), sixteen.Tail)
}

func TestExpandBackbone_BadFlag(t *testing.T) {
	n := &Number{Value: 12, IsBackbone: true, Target: 6}
	_, err := ExpandBackbone(context.Background(), Batch{Numbers: []*Number{n}})
	assert.ErrorIs(t, err, ErrInvariantViolation)
}
