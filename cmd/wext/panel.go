//go:build !release

package main

import (
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	clientpanel "github.com/garrettladley/wext/internal/client/panel"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	go_json "github.com/goccy/go-json"
)

func panelCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "panel",
		Short: "Drive the panel over the HTTP API (dev only)",
	}

	run := func(fn func(cmd *cobra.Command, client *clientpanel.Client, args []string) (panelsvc.Snapshot, error)) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			c, err := setup(cmd.Context(), io.Discard)
			if err != nil {
				return err
			}
			defer c.close()

			snap, err := fn(cmd, clientpanel.NewClient(c.cfg.ServerURL, c.sessionID), args)
			if err != nil {
				return err
			}
			return printSnapshot(cmd.OutOrStdout(), snap)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "get",
			Short: "Print the current panel",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, client *clientpanel.Client, _ []string) (panelsvc.Snapshot, error) {
				return client.Get(cmd.Context())
			}),
		},
		&cobra.Command{
			Use:   "select <control>",
			Short: "Activate a toolbar control (status, configure, about)",
			Args:  cobra.ExactArgs(1),
			RunE: run(func(cmd *cobra.Command, client *clientpanel.Client, args []string) (panelsvc.Snapshot, error) {
				return client.Select(cmd.Context(), args[0])
			}),
		},
		&cobra.Command{
			Use:   "toggle <checkbox> [checked]",
			Short: "Flip a checkbox block, or set it to the given value",
			Args:  cobra.RangeArgs(1, 2),
			RunE: run(func(cmd *cobra.Command, client *clientpanel.Client, args []string) (panelsvc.Snapshot, error) {
				var checked *bool
				if len(args) == 2 {
					b, err := strconv.ParseBool(args[1])
					if err != nil {
						return panelsvc.Snapshot{}, fmt.Errorf("invalid checked value %q: %w", args[1], err)
					}
					checked = &b
				}
				return client.Toggle(cmd.Context(), args[0], checked)
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Return the panel to its initial state",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, client *clientpanel.Client, _ []string) (panelsvc.Snapshot, error) {
				return client.Reset(cmd.Context())
			}),
		},
	)

	return cmd
}

func printSnapshot(w io.Writer, snap panelsvc.Snapshot) error {
	data, err := go_json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
