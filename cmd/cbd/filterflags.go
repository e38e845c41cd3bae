package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/ib-77/cbd/pkg/filter"
)

type filterFlags struct {
	name   string
	typ    string
	column string
	params []float64
	invert bool
}

func (f *filterFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.name, "filter-name", "cli", "name of the command line filter")
	cmd.Flags().StringVar(&f.typ, "filter-type", "", "filter type: LTE, GTE, RNG, LST or EQL (overrides the configured filter)")
	cmd.Flags().StringVar(&f.column, "filter-column", "", "column to filter on: "+strings.Join(filter.Columns(), ", "))
	cmd.Flags().Float64SliceVar(&f.params, "filter-params", nil, "filter parameters, comma separated")
	cmd.Flags().BoolVar(&f.invert, "invert", false, "invert the filter")
}

// resolve returns the command line filter if one was given, the configured
// filter otherwise, or nil.
func (f *filterFlags) resolve(configured *filter.Filter) (*filter.Filter, error) {
	if f.typ == "" {
		return configured, nil
	}
	positive := !f.invert
	out := &filter.Filter{
		Name:       f.name,
		Type:       filter.Type(strings.ToUpper(f.typ)),
		Polarity:   &positive,
		Column:     f.column,
		Parameters: f.params,
	}
	if err := out.Validate(); err != nil {
		return nil, err
	}
	return out, nil
}
