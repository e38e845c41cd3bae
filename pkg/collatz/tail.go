package collatz

import (
	"context"
	"fmt"
)

// DefaultMaxSteps bounds a single tail chase.
const DefaultMaxSteps = 100_000

// ctxCheckEvery is how many records a worker handles between context checks.
const ctxCheckEvery = 1024

// Chaser follows trajectories until they fall below Limit.
type Chaser struct {
	// Limit is the exclusive floor: a chase stops on the first value < Limit.
	Limit int64
	// MaxSteps caps the iterations of one chase.
	MaxSteps int
}

// Validate checks that the chaser can terminate at all.
func (c Chaser) Validate() error {
	if c.Limit < 2 {
		return fmt.Errorf("%w: limit %d, need at least 2", ErrInvalidConfiguration, c.Limit)
	}
	if c.MaxSteps < 1 {
		return fmt.Errorf("%w: max steps %d, need at least 1", ErrInvalidConfiguration, c.MaxSteps)
	}
	return nil
}

// ChaseTails sets Tail and TailPath on every record of the batch.
// Backbone records take a single step; the expander resolves them later.
func (c Chaser) ChaseTails(ctx context.Context, batch Batch) (Batch, error) {
	if err := c.Validate(); err != nil {
		return batch, err
	}
	for i, n := range batch.Numbers {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return batch, err
			}
		}
		if err := c.chase(n); err != nil {
			return batch, err
		}
	}
	return batch, nil
}

func (c Chaser) chase(n *Number) error {
	if n.IsBackbone {
		n.Tail = n.Target
		n.TailPath = []int64{n.Target}
		return nil
	}

	t := n.Target
	path := []int64{t}
	for steps := 0; t >= c.Limit; steps++ {
		if steps == c.MaxSteps {
			return fmt.Errorf("%w: %d stayed at or above %d for %d steps",
				ErrNonTerminatingTrajectory, n.Value, c.Limit, c.MaxSteps)
		}
		var ok bool
		if t, ok = next(t); !ok {
			return fmt.Errorf("%w: trajectory of %d overflows int64 after %d",
				ErrNonTerminatingTrajectory, n.Value, path[len(path)-1])
		}
		path = append(path, t)
	}
	n.Tail = t
	n.TailPath = path
	return nil
}
