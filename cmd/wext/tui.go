package main

import (
	"context"
	"errors"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	clientpanel "github.com/garrettladley/wext/internal/client/panel"
	"github.com/garrettladley/wext/internal/history"
	"github.com/garrettladley/wext/internal/poller"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/tui"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

const resultBuffer = 16

// runTUI opens the terminal panel. The status poller runs next to the
// program and stops when the program exits.
func runTUI(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	c, err := setup(ctx, nil)
	if err != nil {
		return err
	}
	defer c.close()

	g, gctx := errgroup.WithContext(ctx)
	gctx = xslog.WithLogger(gctx, c.logger)

	rec := history.NewRecorder(gctx, c.history)
	defer rec.Close()

	results := make(chan poller.Result, resultBuffer)
	p := poller.New(
		xhttp.NewHTTPClient(xhttp.WithSessionID(c.sessionID)),
		poller.Config{
			URL:      c.cfg.ServerURL + "/",
			Interval: c.cfg.PollInterval,
			Timeout:  c.cfg.PollTimeout,
		},
		poller.WithObserver(rec.Observe),
		poller.WithObserver(func(r poller.Result) {
			select {
			case results <- r:
			default:
				// the sparkline catches up from the next result
			}
		}),
	)

	model := tui.New(tui.Deps{
		Ctx:       gctx,
		Logger:    c.logger,
		ServerURL: c.cfg.ServerURL,
		Interval:  c.cfg.PollInterval,
		Panel:     clientpanel.NewClient(c.cfg.ServerURL, c.sessionID),
		Stream:    clientpanel.NewStream(c.cfg.ServerURL, c.sessionID, c.logger),
		Snapshots: make(chan panelsvc.Snapshot, 1),
		Results:   results,
		History:   c.history,
	})

	program := tea.NewProgram(&model, tea.WithContext(gctx))

	pollCtx, stopPolling := context.WithCancel(gctx)
	g.Go(func() error {
		return p.Run(pollCtx)
	})
	g.Go(func() error {
		defer stopPolling()
		if _, err := program.Run(); err != nil {
			return fmt.Errorf("tui: %w", err)
		}
		return nil
	})

	err = g.Wait()
	if errors.Is(err, context.Canceled) || errors.Is(err, tea.ErrProgramKilled) {
		return nil
	}
	return err
}
