package collatz

import (
	"context"
	"fmt"
	"math/bits"
)

// ExpandBackbone replaces the one-step tail of every backbone record with the
// full halving chain down to 1. Other records pass through untouched.
func ExpandBackbone(ctx context.Context, batch Batch) (Batch, error) {
	for i, n := range batch.Numbers {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return batch, err
			}
		}
		if !n.IsBackbone {
			continue
		}
		if !IsBackbone(n.Value) {
			return batch, fmt.Errorf("%w: %d flagged as backbone", ErrInvariantViolation, n.Value)
		}

		path := make([]int64, 0, bits.TrailingZeros64(uint64(n.Value)))
		for v := n.Value; v != 1; {
			v = Step(v)
			path = append(path, v)
		}
		n.TailPath = path
		n.Tail = 1
	}
	return batch, nil
}
