package collatz

import (
	"context"
	"fmt"
)

// Deriver computes the derived fields of stitched records.
type Deriver struct {
	// Limit is the floor used for the Bounded flag.
	Limit int64
}

// DeriveProperties fills FullPath and every derived field of the batch.
func (d Deriver) DeriveProperties(ctx context.Context, batch Batch) (Batch, error) {
	for i, n := range batch.Numbers {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return batch, err
			}
		}
		if err := d.derive(n); err != nil {
			return batch, err
		}
	}
	return batch, nil
}

func (d Deriver) derive(n *Number) error {
	if len(n.TailPath) == 0 || n.TailPath[len(n.TailPath)-1] != 1 {
		return fmt.Errorf("%w: path of %d does not end at 1", ErrInvariantViolation, n.Value)
	}
	n.FullPath = n.TailPath
	n.Dist = len(n.FullPath)

	var (
		offBackbone int
		largestVert int64
		peak        = n.Value
	)
	for _, v := range n.FullPath {
		if IsBackbone(v) {
			largestVert = max(largestVert, v)
		} else {
			offBackbone++
		}
		peak = max(peak, v)
	}

	if n.IsBackbone {
		n.DistToBb = 0
		n.ClosestVertValue = n.Value
	} else {
		n.DistToBb = offBackbone + 1
		n.ClosestVertValue = largestVert
	}
	exp, err := Exponent(n.ClosestVertValue)
	if err != nil {
		return fmt.Errorf("closest vertebra of %d: %w", n.Value, err)
	}
	n.ClosestVert = exp

	n.Peak = peak
	n.PeakSlope = float64(peak) / float64(n.Value)
	n.OddParent = OddParent(n.Value)
	d.Bound(n)
	return nil
}

// Bound sets the Bounded flag of a derived record against d.Limit. Stored
// records are re-bounded whenever they are read back under another limit.
func (d Deriver) Bound(n *Number) {
	n.Bounded = n.Peak <= d.Limit
}
