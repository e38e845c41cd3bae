// Package sqlstore keeps numbers in a sqlite database through gorm.
package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/logger"
	"github.com/ib-77/cbd/pkg/store"
)

const batchSize = 200

type numberRow struct {
	Value            int64   `gorm:"column:value;primaryKey;autoIncrement:false"`
	IsBb             bool    `gorm:"column:is_bb"`
	FullPath         string  `gorm:"column:full_path"`
	Dist             int     `gorm:"column:dist;index"`
	DistToBb         int     `gorm:"column:dist_to_bb;index"`
	ClosestVertValue int64   `gorm:"column:closest_vert_value"`
	ClosestVert      int     `gorm:"column:closest_vert"`
	Peak             int64   `gorm:"column:peak"`
	PeakSlope        float64 `gorm:"column:peak_slope"`
	OddParent        bool    `gorm:"column:odd_parent"`
	Bounded          bool    `gorm:"column:bounded"`
}

func (numberRow) TableName() string { return "cnumbers" }

type runRow struct {
	ID         uuid.UUID `gorm:"column:id;type:text;primaryKey"`
	UpperBound int64     `gorm:"column:upper_bound"`
	Limit      int64     `gorm:"column:chase_limit"`
	Processes  int       `gorm:"column:processes"`
	Records    int       `gorm:"column:records"`
	Extensions int       `gorm:"column:extensions"`
	StartedAt  time.Time `gorm:"column:started_at;index"`
	FinishedAt time.Time `gorm:"column:finished_at"`
}

func (runRow) TableName() string { return "runs" }

type Store struct {
	db  *gorm.DB
	log *logger.Logger
}

var _ store.Store = (*Store)(nil)

// Open opens or creates the sqlite database at path and migrates its tables.
func Open(path string, baseLog *logger.Logger) (*Store, error) {
	log := baseLog.With("store", "sqlite", "path", path)
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.New(log, gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormlogger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open %s: %w", path, err)
	}
	if err := db.AutoMigrate(&numberRow{}, &runRow{}); err != nil {
		return nil, fmt.Errorf("sqlstore: migrate: %w", err)
	}
	return &Store{db: db, log: log}, nil
}

func (s *Store) SaveNumbers(ctx context.Context, numbers []*collatz.Number) error {
	if len(numbers) == 0 {
		return nil
	}
	rows := make([]numberRow, len(numbers))
	for i, n := range numbers {
		rows[i] = toRow(n)
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, batchSize).Error
	if err != nil {
		return fmt.Errorf("sqlstore: save %d numbers: %w", len(rows), err)
	}
	s.log.Debug("numbers saved", "count", len(rows))
	return nil
}

func (s *Store) LoadNumbers(ctx context.Context, q store.Query) ([]*collatz.Number, error) {
	tx := s.db.WithContext(ctx).Where("value BETWEEN ? AND ?", q.Lo, q.Hi)
	if q.Filter != nil {
		tx = tx.Scopes(q.Filter.Scope())
	}
	var rows []numberRow
	if err := tx.Order("value").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: load [%d, %d]: %w", q.Lo, q.Hi, err)
	}
	out := make([]*collatz.Number, 0, len(rows))
	for _, r := range rows {
		n, err := fromRow(r)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

func (s *Store) Covers(ctx context.Context, lo, hi int64) (bool, error) {
	if hi < lo {
		return true, nil
	}
	var count int64
	err := s.db.WithContext(ctx).
		Model(&numberRow{}).
		Where("value BETWEEN ? AND ?", lo, hi).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("sqlstore: count [%d, %d]: %w", lo, hi, err)
	}
	return count == hi-lo+1, nil
}

func (s *Store) RecordRun(ctx context.Context, run store.Run) error {
	row := runRow{
		ID:         run.ID,
		UpperBound: run.UpperBound,
		Limit:      run.Limit,
		Processes:  run.Processes,
		Records:    run.Records,
		Extensions: run.Extensions,
		StartedAt:  run.StartedAt.UTC(),
		FinishedAt: run.FinishedAt.UTC(),
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("sqlstore: record run %s: %w", row.ID, err)
	}
	return nil
}

func (s *Store) Runs(ctx context.Context) ([]store.Run, error) {
	var rows []runRow
	if err := s.db.WithContext(ctx).Order("started_at").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("sqlstore: list runs: %w", err)
	}
	out := make([]store.Run, len(rows))
	for i, r := range rows {
		out[i] = store.Run{
			ID:         r.ID,
			UpperBound: r.UpperBound,
			Limit:      r.Limit,
			Processes:  r.Processes,
			Records:    r.Records,
			Extensions: r.Extensions,
			StartedAt:  r.StartedAt,
			FinishedAt: r.FinishedAt,
		}
	}
	return out, nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func toRow(n *collatz.Number) numberRow {
	return numberRow{
		Value:            n.Value,
		IsBb:             n.IsBackbone,
		FullPath:         store.EncodePath(n.FullPath),
		Dist:             n.Dist,
		DistToBb:         n.DistToBb,
		ClosestVertValue: n.ClosestVertValue,
		ClosestVert:      n.ClosestVert,
		Peak:             n.Peak,
		PeakSlope:        n.PeakSlope,
		OddParent:        n.OddParent,
		Bounded:          n.Bounded,
	}
}

func fromRow(r numberRow) (*collatz.Number, error) {
	path, err := store.DecodePath(r.FullPath)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: value %d: %w", r.Value, err)
	}
	return &collatz.Number{
		Value:            r.Value,
		IsBackbone:       r.IsBb,
		Target:           collatz.Step(r.Value),
		Tail:             1,
		TailPath:         path,
		FullPath:         path,
		Dist:             r.Dist,
		DistToBb:         r.DistToBb,
		ClosestVertValue: r.ClosestVertValue,
		ClosestVert:      r.ClosestVert,
		Peak:             r.Peak,
		PeakSlope:        r.PeakSlope,
		OddParent:        r.OddParent,
		Bounded:          r.Bounded,
	}, nil
}
