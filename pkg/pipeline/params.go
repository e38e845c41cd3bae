package pipeline

import (
	"fmt"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/config"
)

// Params describe one run over [2, UpperBound).
type Params struct {
	UpperBound int64
	// Limit is the chase floor; 0 means UpperBound.
	Limit int64
	// Processes is both the partition count and the worker count per stage.
	Processes int
	// MaxSteps bounds one chase; 0 means collatz.DefaultMaxSteps.
	MaxSteps int
}

// ParamsFromConfig takes the run parameters of a normalized config.
func ParamsFromConfig(cfg config.Config) Params {
	return Params{
		UpperBound: cfg.Data.UpperBound,
		Limit:      cfg.Data.Limit,
		Processes:  cfg.Run.Processes,
		MaxSteps:   cfg.Run.MaxSteps,
	}
}

func (p Params) withDefaults() Params {
	if p.Limit == 0 {
		p.Limit = p.UpperBound
	}
	if p.MaxSteps == 0 {
		p.MaxSteps = collatz.DefaultMaxSteps
	}
	return p
}

func (p Params) Validate() error {
	switch {
	case p.UpperBound < 2:
		return fmt.Errorf("%w: upper bound %d, need at least 2", collatz.ErrInvalidConfiguration, p.UpperBound)
	case p.Limit < 2 || p.Limit > p.UpperBound:
		return fmt.Errorf("%w: limit %d must be within [2, %d]", collatz.ErrInvalidConfiguration, p.Limit, p.UpperBound)
	case p.Processes < 2:
		return fmt.Errorf("%w: processes %d, need at least 2", collatz.ErrInvalidConfiguration, p.Processes)
	case p.MaxSteps < 1:
		return fmt.Errorf("%w: max steps %d, need at least 1", collatz.ErrInvalidConfiguration, p.MaxSteps)
	}
	return nil
}
