package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ib-77/cbd/pkg/plot"
	"github.com/ib-77/cbd/pkg/store"
)

func newPlotCmd(a *app) *cobra.Command {
	var (
		output       string
		yAxis        string
		colorization string
		filters      filterFlags
	)

	cmd := &cobra.Command{
		Use:   "plot",
		Short: "Render stored numbers as a PNG scatter plot",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if flags.Changed("output") {
				a.cfg.Plot.Output = output
			}
			if flags.Changed("y-axis") {
				a.cfg.Plot.YAxis = yAxis
			}
			if flags.Changed("color") {
				a.cfg.Plot.Colorization = colorization
			}
			f, err := filters.resolve(a.cfg.Filter)
			if err != nil {
				return err
			}
			a.cfg.Filter = f
			if err := a.cfg.Validate(); err != nil {
				return err
			}

			st, err := a.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			numbers, err := st.LoadNumbers(cmd.Context(), store.Query{Lo: 2, Hi: a.cfg.Data.UpperBound - 1, Filter: f})
			if err != nil {
				return err
			}

			opts := plot.OptionsFromConfig(a.cfg)
			points, err := plot.Prepare(numbers, opts)
			if err != nil {
				return err
			}

			file, err := os.Create(a.cfg.Plot.Output)
			if err != nil {
				return err
			}
			if err := plot.Render(file, points, opts); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}

			a.log.Info("plot written", "path", a.cfg.Plot.Output, "points", len(points))
			fmt.Fprintln(cmd.OutOrStdout(), plot.Title(opts, len(points)))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "PNG file to write")
	cmd.Flags().StringVar(&yAxis, "y-axis", "", "y axis: distance, distance_to_bb, vertebrae, peak or peak_slope")
	cmd.Flags().StringVar(&colorization, "color", "", "colour by: distance, distance_to_bb, value, vertebrae, peak, peak_slope or odd_parent")
	filters.register(cmd)
	return cmd
}
