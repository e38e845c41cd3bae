package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/logger"
	"github.com/ib-77/cbd/pkg/metrics"
	"github.com/ib-77/cbd/pkg/rop"
	"github.com/ib-77/cbd/pkg/store"
	"github.com/ib-77/cbd/pkg/telemetry"
)

const (
	StageTails    = "tails"
	StageBackbone = "backbone"
	StageStitch   = "stitch"
	StageDerive   = "derive"
	StagePersist  = "persist"
)

type Option func(g *Generator)

func WithMetrics(m *metrics.Recorder) Option {
	return func(g *Generator) { g.metrics = m }
}

func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) { g.tracer = t }
}

// WithStore makes Run reuse a range the store already covers and persist
// fresh results together with a run record.
func WithStore(s store.Store) Option {
	return func(g *Generator) { g.store = s }
}

type Generator struct {
	params  Params
	log     *logger.Logger
	metrics *metrics.Recorder
	tracer  trace.Tracer
	store   store.Store
}

func New(p Params, baseLog *logger.Logger, opts ...Option) (*Generator, error) {
	p = p.withDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	g := &Generator{
		params: p,
		log:    baseLog.With("component", "generator"),
		tracer: telemetry.NoopTracer(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

func (g *Generator) Params() Params {
	return g.params
}

// Run computes every record of [2, UpperBound). Any stage error aborts the
// run; no partial result is returned or persisted.
func (g *Generator) Run(ctx context.Context) (*Report, error) {
	p := g.params
	report := &Report{
		RunID:     uuid.New(),
		Params:    p,
		StartedAt: time.Now().UTC(),
	}
	log := g.log.With("run_id", report.RunID)

	ctx, span := g.tracer.Start(ctx, "cbd.run", trace.WithAttributes(
		attribute.Int64("upper_bound", p.UpperBound),
		attribute.Int64("limit", p.Limit),
		attribute.Int("processes", p.Processes),
	))
	defer span.End()

	if g.metrics != nil {
		g.metrics.SetUpperBound(p.UpperBound)
	}

	log.Info("run started",
		"upper_bound", p.UpperBound,
		"limit", p.Limit,
		"processes", p.Processes,
		"max_steps", p.MaxSteps)

	reused, err := g.reuse(ctx, report)
	if err != nil {
		return nil, g.fail(span, log, err)
	}
	if reused {
		report.FinishedAt = time.Now().UTC()
		log.Info("range already stored, generation skipped", "records", len(report.Numbers))
		return report, nil
	}

	if err := g.generate(ctx, log, report); err != nil {
		return nil, g.fail(span, log, err)
	}

	if g.store != nil {
		if err := g.persist(ctx, log, report); err != nil {
			return nil, g.fail(span, log, err)
		}
	}
	report.FinishedAt = time.Now().UTC()

	log.Info("run finished",
		"records", len(report.Numbers),
		"extensions", report.Stitch.Extensions,
		"duration", report.Duration())
	return report, nil
}

func (g *Generator) fail(span trace.Span, log *logger.Logger, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	log.Error("run failed", "error", err)
	return err
}

func (g *Generator) reuse(ctx context.Context, report *Report) (bool, error) {
	if g.store == nil {
		return false, nil
	}
	hi := g.params.UpperBound - 1
	covered, err := g.store.Covers(ctx, 2, hi)
	if err != nil || !covered {
		return false, err
	}
	numbers, err := g.store.LoadNumbers(ctx, store.Query{Lo: 2, Hi: hi})
	if err != nil {
		return false, err
	}
	deriver := collatz.Deriver{Limit: g.params.Limit}
	for _, n := range numbers {
		deriver.Bound(n)
	}
	report.Numbers = numbers
	report.Reused = true
	return true, nil
}

func (g *Generator) generate(ctx context.Context, log *logger.Logger, report *Report) error {
	p := g.params

	ranges, err := collatz.Partition(p.UpperBound, p.Processes)
	if err != nil {
		return err
	}
	batches := collatz.Seed(ranges, p.UpperBound)

	chaser := collatz.Chaser{Limit: p.Limit, MaxSteps: p.MaxSteps}
	batches, err = runStage(ctx, g, log, report, StageTails, batches, chaser.ChaseTails)
	if err != nil {
		return err
	}

	batches, err = runStage(ctx, g, log, report, StageBackbone, batches, collatz.ExpandBackbone)
	if err != nil {
		return err
	}

	var numbers []*collatz.Number
	err = g.timed(ctx, log, report, StageStitch, func(ctx context.Context) (int, error) {
		arena, err := collatz.NewArena(batches)
		if err != nil {
			return 0, err
		}
		report.Stitch, err = collatz.Stitch(arena)
		if err != nil {
			return 0, err
		}
		numbers = arena.Numbers()
		return report.Stitch.Extensions, nil
	})
	if err != nil {
		return err
	}
	if g.metrics != nil {
		g.metrics.AddExtensions(report.Stitch.Extensions)
	}

	deriver := collatz.Deriver{Limit: p.Limit}
	batches, err = runStage(ctx, g, log, report, StageDerive, collatz.Split(ranges, numbers), deriver.DeriveProperties)
	if err != nil {
		return err
	}

	report.Numbers = collatz.Flatten(batches)
	if want := int(max(p.UpperBound-2, 0)); len(report.Numbers) != want {
		return fmt.Errorf("%w: run produced %d records, want %d", collatz.ErrInvariantViolation, len(report.Numbers), want)
	}
	return nil
}

func (g *Generator) persist(ctx context.Context, log *logger.Logger, report *Report) error {
	return g.timed(ctx, log, report, StagePersist, func(ctx context.Context) (int, error) {
		if err := g.store.SaveNumbers(ctx, report.Numbers); err != nil {
			return 0, err
		}
		run := report.Run()
		run.FinishedAt = time.Now().UTC()
		if err := g.store.RecordRun(ctx, run); err != nil {
			return 0, err
		}
		return len(report.Numbers), nil
	})
}

// timed runs one sequential stage inside its own span and records its
// duration and record count.
func (g *Generator) timed(ctx context.Context, log *logger.Logger, report *Report, stage string,
	fn func(ctx context.Context) (int, error)) error {

	ctx, span := g.tracer.Start(ctx, "stage."+stage)
	defer span.End()

	log.Debug("stage started", "stage", stage)
	start := time.Now()
	records, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if g.metrics != nil {
			g.metrics.StageFailed(stage)
		}
		return fmt.Errorf("%s stage: %w", stage, err)
	}

	span.SetAttributes(attribute.Int("records", records))
	if g.metrics != nil {
		g.metrics.ObserveStage(stage, elapsed, records)
	}
	report.Stages = append(report.Stages, StageTiming{Stage: stage, Duration: elapsed, Records: records})
	log.Info("stage finished", "stage", stage, "records", records, "duration", elapsed)
	return nil
}

// runStage fans batches out to the generator's workers and waits for all of
// them.
func runStage(ctx context.Context, g *Generator, log *logger.Logger, report *Report, stage string,
	batches []collatz.Batch, work func(context.Context, collatz.Batch) (collatz.Batch, error)) ([]collatz.Batch, error) {

	var out []collatz.Batch
	err := g.timed(ctx, log, report, stage, func(ctx context.Context) (int, error) {
		onBatch := func(_ context.Context, r rop.Result[collatz.Batch]) {
			b := r.Result()
			log.Debug("batch done",
				"stage", stage,
				"partition", b.Partition.Index,
				"records", len(b.Numbers),
				"result_id", r.Id())
		}

		var err error
		out, err = rop.Stage(ctx, batches, rop.Try(work), g.params.Processes, onBatch)
		if err != nil {
			return 0, err
		}
		records := 0
		for _, b := range out {
			records += len(b.Numbers)
		}
		return records, nil
	})
	return out, err
}
