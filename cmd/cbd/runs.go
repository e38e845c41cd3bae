package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

func newRunsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "runs",
		Short: "List recorded generation runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.requireStore()
			if err != nil {
				return err
			}
			defer st.Close()

			runs, err := st.Runs(cmd.Context())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, r := range runs {
				fmt.Fprintf(out, "%s  %s  [2, %d) limit %d  p=%d  %d records  %v\n",
					r.ID, r.StartedAt.Format(time.RFC3339), r.UpperBound, r.Limit,
					r.Processes, r.Records, r.Duration().Round(time.Millisecond))
			}
			return nil
		},
	}
}
