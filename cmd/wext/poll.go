package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/garrettladley/wext/internal/history"
	"github.com/garrettladley/wext/internal/poller"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

func pollCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "poll",
		Short: "Post the status beacon without the UI",
		Long:  "Posts the fixed status payload to the panel daemon every interval, logging each answer to stderr and recording it in the poll history.",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := setup(ctx, os.Stderr)
			if err != nil {
				return err
			}
			defer c.close()

			ctx = xslog.WithLogger(ctx, c.logger)
			p := poller.New(
				xhttp.NewHTTPClient(xhttp.WithSessionID(c.sessionID)),
				poller.Config{
					URL:      c.cfg.ServerURL + "/",
					Interval: c.cfg.PollInterval,
					Timeout:  c.cfg.PollTimeout,
				},
			)

			if once {
				r := p.PollOnce(ctx)
				if _, err := c.history.Insert(ctx, history.FromResult(r)); err != nil {
					c.logger.WarnContext(ctx, "failed to record poll result", xslog.Error(err))
				}
				printResult(cmd.OutOrStdout(), history.FromResult(r))
				return r.Err
			}

			out := cmd.OutOrStdout()
			rec := history.NewRecorder(ctx, c.history)
			defer rec.Close()
			p.Observe(rec.Observe)
			p.Observe(func(r poller.Result) { printResult(out, history.FromResult(r)) })
			return p.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "send a single beacon and exit")
	return cmd
}

func printResult(w io.Writer, r history.Record) {
	at := r.StartedAt.Local().Format(time.DateTime)
	switch {
	case r.Skipped:
		fmt.Fprintf(w, "%s  #%-5d skipped\n", at, r.Seq)
	case r.Error != "":
		fmt.Fprintf(w, "%s  #%-5d error  %s\n", at, r.Seq, r.Error)
	default:
		fmt.Fprintf(w, "%s  #%-5d %d  %6s  %s\n", at, r.Seq, r.Status, r.Latency.Round(time.Millisecond), r.Body)
	}
}
