package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/store"
)

type StageTiming struct {
	Stage    string
	Duration time.Duration
	Records  int
}

// Report is the outcome of one Run.
type Report struct {
	RunID  uuid.UUID
	Params Params
	// Numbers holds every record of [2, UpperBound), ordered by value.
	Numbers []*collatz.Number
	Stages  []StageTiming
	Stitch  collatz.StitchStats
	// Reused is set when the store already covered the range and nothing
	// was computed.
	Reused     bool
	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Report) Run() store.Run {
	return store.Run{
		ID:         r.RunID,
		UpperBound: r.Params.UpperBound,
		Limit:      r.Params.Limit,
		Processes:  r.Params.Processes,
		Records:    len(r.Numbers),
		Extensions: r.Stitch.Extensions,
		StartedAt:  r.StartedAt,
		FinishedAt: r.FinishedAt,
	}
}
