package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/ib-77/cbd/pkg/collatz"
	"github.com/ib-77/cbd/pkg/store"
)

func newQueryCmd(a *app) *cobra.Command {
	var (
		lo, hi  int64
		format  string
		filters filterFlags
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Print stored numbers of a range",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("hi") {
				hi = a.cfg.Data.UpperBound - 1
			}
			f, err := filters.resolve(a.cfg.Filter)
			if err != nil {
				return err
			}

			st, err := a.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			numbers, err := st.LoadNumbers(cmd.Context(), store.Query{Lo: lo, Hi: hi, Filter: f})
			if err != nil {
				return err
			}
			a.log.Debug("numbers loaded", "lo", lo, "hi", hi, "count", len(numbers))

			switch format {
			case "json":
				return writeJSON(cmd.OutOrStdout(), numbers)
			case "table":
				return writeTable(cmd.OutOrStdout(), numbers)
			default:
				return fmt.Errorf("unknown format %q", format)
			}
		},
	}

	cmd.Flags().Int64Var(&lo, "lo", 2, "first value, inclusive")
	cmd.Flags().Int64Var(&hi, "hi", 0, "last value, inclusive; defaults to upper bound - 1")
	cmd.Flags().StringVarP(&format, "format", "f", "table", "output format: table or json")
	filters.register(cmd)
	return cmd
}

func writeJSON(w io.Writer, numbers []*collatz.Number) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(numbers)
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func writeTable(w io.Writer, numbers []*collatz.Number) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle.Align(lipgloss.Right)
		}).
		Headers("value", "bb", "dist", "dist_to_bb", "closest_vert", "peak", "peak_slope", "odd_parent")

	for _, n := range numbers {
		t.Row(
			strconv.FormatInt(n.Value, 10),
			strconv.FormatBool(n.IsBackbone),
			strconv.Itoa(n.Dist),
			strconv.Itoa(n.DistToBb),
			fmt.Sprintf("2^%d=%d", n.ClosestVert, n.ClosestVertValue),
			strconv.FormatInt(n.Peak, 10),
			strconv.FormatFloat(n.PeakSlope, 'f', 3, 64),
			strconv.FormatBool(n.OddParent),
		)
	}
	_, err := fmt.Fprintln(w, t.Render())
	return err
}
