// Package store persists generated numbers and the history of runs.
//
// Highlights:
// - one record per value; saving a value again replaces it
// - runs are kept separately, keyed by run id
// - sqlstore (gorm + sqlite) and kvstore (badger) implement Store
package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/filter"
)

var ErrCorruptRecord = errors.New("store: corrupt record")

type Store interface {
	// SaveNumbers upserts numbers by value.
	SaveNumbers(ctx context.Context, numbers []*collatz.Number) error
	// LoadNumbers returns the stored numbers matching q, ordered by value.
	LoadNumbers(ctx context.Context, q Query) ([]*collatz.Number, error)
	// Covers reports whether every value of [lo, hi] is stored.
	Covers(ctx context.Context, lo, hi int64) (bool, error)
	RecordRun(ctx context.Context, run Run) error
	// Runs returns the recorded runs, oldest first.
	Runs(ctx context.Context) ([]Run, error)
	Close() error
}

// Query selects the inclusive value range [Lo, Hi], optionally narrowed by
// Filter.
type Query struct {
	Lo     int64
	Hi     int64
	Filter *filter.Filter
}

type Run struct {
	ID         uuid.UUID `json:"id"`
	UpperBound int64     `json:"upper_bound"`
	Limit      int64     `json:"limit"`
	Processes  int       `json:"processes"`
	Records    int       `json:"records"`
	Extensions int       `json:"extensions"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

func (r Run) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// EncodePath joins a path as comma separated decimal values.
func EncodePath(path []int64) string {
	var sb strings.Builder
	for i, v := range path {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(strconv.FormatInt(v, 10))
	}
	return sb.String()
}

// DecodePath parses a path written by EncodePath.
func DecodePath(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	path := make([]int64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: path entry %q: %w", ErrCorruptRecord, p, err)
		}
		path[i] = v
	}
	return path, nil
}
