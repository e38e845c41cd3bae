// Package kvstore keeps numbers in a badger key-value database.
//
// Numbers live under "n/" + big-endian value, so key order is value order.
// Runs live under "r/" + big-endian start time + run id.
package kvstore

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v4"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/logger"
	"github.com/ib-77/cbd/pkg/store"
)

const ctxCheckEvery = 1024

var (
	numberPrefix = []byte("n/")
	runPrefix    = []byte("r/")
)

type Config struct {
	// Path is the database directory. Ignored when InMemory is true.
	Path       string
	InMemory   bool
	SyncWrites bool
}

func InMemoryConfig() Config {
	return Config{InMemory: true}
}

type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.Error(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.Warn(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.log.Debug(fmt.Sprintf(format, args...))
}

type Store struct {
	db  *badger.DB
	log *logger.Logger
}

var _ store.Store = (*Store)(nil)

func Open(cfg Config, baseLog *logger.Logger) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, errors.New("kvstore: path is required for persistent database")
	}

	var opts badger.Options
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(cfg.Path, 0750); err != nil {
			return nil, fmt.Errorf("kvstore: create database directory %s: %w", cfg.Path, err)
		}
		opts = badger.DefaultOptions(cfg.Path)
	}

	log := baseLog.With("store", "badger", "path", cfg.Path)
	opts = opts.
		WithSyncWrites(cfg.SyncWrites).
		WithNumVersionsToKeep(1).
		WithLogger(badgerLogger{log: log})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("kvstore: open badger database: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func numberKey(v int64) []byte {
	k := make([]byte, len(numberPrefix)+8)
	copy(k, numberPrefix)
	binary.BigEndian.PutUint64(k[len(numberPrefix):], uint64(v))
	return k
}

func runKey(run store.Run) []byte {
	k := make([]byte, 0, len(runPrefix)+8+16)
	k = append(k, runPrefix...)
	k = binary.BigEndian.AppendUint64(k, uint64(run.StartedAt.UnixNano()))
	return append(k, run.ID[:]...)
}

func (s *Store) SaveNumbers(ctx context.Context, numbers []*collatz.Number) error {
	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for i, n := range numbers {
		if i%ctxCheckEvery == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		payload, err := json.Marshal(n)
		if err != nil {
			return fmt.Errorf("kvstore: encode value %d: %w", n.Value, err)
		}
		if err := wb.Set(numberKey(n.Value), payload); err != nil {
			return fmt.Errorf("kvstore: write value %d: %w", n.Value, err)
		}
	}
	if err := wb.Flush(); err != nil {
		return fmt.Errorf("kvstore: flush %d numbers: %w", len(numbers), err)
	}
	s.log.Debug("numbers saved", "count", len(numbers))
	return nil
}

// scan calls fn for every stored value of [lo, hi] in ascending order.
// Values are only read when withValues is set.
func (s *Store) scan(ctx context.Context, lo, hi int64, withValues bool, fn func(v int64, item *badger.Item) error) error {
	// Keys are unsigned; no stored value is negative.
	lo = max(lo, 0)
	if hi < lo {
		return nil
	}
	return s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = numberPrefix
		opts.PrefetchValues = withValues
		it := txn.NewIterator(opts)
		defer it.Close()

		end := numberKey(hi)
		i := 0
		for it.Seek(numberKey(lo)); it.Valid(); it.Next() {
			if i%ctxCheckEvery == 0 {
				if err := ctx.Err(); err != nil {
					return err
				}
			}
			i++

			item := it.Item()
			key := item.Key()
			if bytes.Compare(key, end) > 0 {
				return nil
			}
			v := int64(binary.BigEndian.Uint64(key[len(numberPrefix):]))
			if err := fn(v, item); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) LoadNumbers(ctx context.Context, q store.Query) ([]*collatz.Number, error) {
	if q.Filter != nil {
		if err := q.Filter.Validate(); err != nil {
			return nil, err
		}
	}

	out := make([]*collatz.Number, 0)
	err := s.scan(ctx, q.Lo, q.Hi, true, func(v int64, item *badger.Item) error {
		n := &collatz.Number{}
		err := item.Value(func(val []byte) error {
			return json.Unmarshal(val, n)
		})
		if err != nil {
			return fmt.Errorf("%w: value %d: %w", store.ErrCorruptRecord, v, err)
		}
		n.TailPath = n.FullPath
		n.Tail = 1
		if q.Filter == nil || q.Filter.Match(n) {
			out = append(out, n)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: load [%d, %d]: %w", q.Lo, q.Hi, err)
	}
	return out, nil
}

func (s *Store) Covers(ctx context.Context, lo, hi int64) (bool, error) {
	var count int64
	err := s.scan(ctx, lo, hi, false, func(int64, *badger.Item) error {
		count++
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("kvstore: count [%d, %d]: %w", lo, hi, err)
	}
	return hi < lo || count == hi-lo+1, nil
}

func (s *Store) RecordRun(ctx context.Context, run store.Run) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("kvstore: encode run %s: %w", run.ID, err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(runKey(run), payload)
	})
}

func (s *Store) Runs(ctx context.Context) ([]store.Run, error) {
	var runs []store.Run
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = runPrefix
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var run store.Run
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &run)
			})
			if err != nil {
				return fmt.Errorf("%w: run: %w", store.ErrCorruptRecord, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kvstore: list runs: %w", err)
	}
	return runs, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
