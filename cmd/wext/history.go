package main

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/wext/internal/history"
)

func historyCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recorded poll results",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := setup(ctx, io.Discard)
			if err != nil {
				return err
			}
			defer c.close()

			records, err := c.history.Latest(ctx, limit)
			if err != nil {
				return err
			}
			stats, err := c.history.Stats(ctx)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i := len(records) - 1; i >= 0; i-- {
				printResult(out, records[i])
			}
			printStats(out, stats)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", history.DefaultLimit, "number of results to show")
	return cmd
}

func printStats(w io.Writer, st history.Stats) {
	fmt.Fprintf(w, "\n%d polls, %d failed, %d skipped, mean latency %s",
		st.Count, st.Failures, st.Skipped, st.MeanLatency.Round(time.Millisecond))
	if st.Last != nil {
		fmt.Fprintf(w, ", last at %s", st.Last.Local().Format(time.DateTime))
	}
	fmt.Fprintln(w)
}
