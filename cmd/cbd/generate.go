package main

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/ib-77/cbd/pkg/metrics"
	"github.com/ib-77/cbd/pkg/pipeline"
	"github.com/ib-77/cbd/pkg/telemetry"
)

var headingStyle = lipgloss.NewStyle().Bold(true)

func newGenerateCmd(a *app) *cobra.Command {
	var (
		upperBound int64
		limit      int64
		processes  int
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Compute every number below the upper bound and store it",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("upper-bound") {
				a.cfg.Data.UpperBound = upperBound
				if !flags.Changed("limit") {
					a.cfg.Data.Limit = upperBound
				}
			}
			if flags.Changed("limit") {
				a.cfg.Data.Limit = limit
			}
			if flags.Changed("processes") {
				a.cfg.Run.Processes = processes
			}
			if err := a.cfg.Validate(); err != nil {
				return err
			}
			a.cfg.Normalize()
			return a.generate(cmd)
		},
	}

	cmd.Flags().Int64VarP(&upperBound, "upper-bound", "u", 0, "exclusive upper bound of the domain")
	cmd.Flags().Int64VarP(&limit, "limit", "l", 0, "chase floor, defaults to the upper bound")
	cmd.Flags().IntVarP(&processes, "processes", "p", 0, "partitions and workers per stage, 0 means one per CPU")
	return cmd
}

func (a *app) generate(cmd *cobra.Command) error {
	ctx := cmd.Context()

	shutdown, err := telemetry.Init(ctx, telemetry.Config{
		ServiceName:    "cbd",
		ServiceVersion: version,
		TraceExporter:  a.cfg.Telemetry.TraceExporter,
		Writer:         cmd.ErrOrStderr(),
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			a.log.Warn("telemetry shutdown failed", "error", err)
		}
	}()

	rec := metrics.New()
	opts := []pipeline.Option{
		pipeline.WithMetrics(rec),
		pipeline.WithTracer(telemetry.Tracer()),
	}

	st, err := a.openStore()
	if err != nil {
		return err
	}
	if st != nil {
		defer st.Close()
		opts = append(opts, pipeline.WithStore(st))
	}

	gen, err := pipeline.New(pipeline.ParamsFromConfig(a.cfg), a.log, opts...)
	if err != nil {
		return err
	}
	report, err := gen.Run(ctx)
	if err != nil {
		return err
	}

	if path := a.cfg.Telemetry.MetricsFile; path != "" {
		if err := rec.WriteTextfile(path); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, headingStyle.Render(fmt.Sprintf("run %s", report.RunID)))
	fmt.Fprintf(out, "range      [2, %d)  limit %d  processes %d\n",
		report.Params.UpperBound, report.Params.Limit, report.Params.Processes)
	fmt.Fprintf(out, "records    %d\n", len(report.Numbers))
	if report.Reused {
		fmt.Fprintln(out, "reused     range already stored")
		return nil
	}
	fmt.Fprintf(out, "stitched   %d paths from %d anchors\n", report.Stitch.Extensions, report.Stitch.Anchors)
	for _, s := range report.Stages {
		fmt.Fprintf(out, "  %-9s %8d records  %v\n", s.Stage, s.Records, s.Duration.Round(time.Microsecond))
	}
	fmt.Fprintf(out, "total      %v\n", report.Duration().Round(time.Microsecond))
	return nil
}
