package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/wext/internal/history"
	"github.com/garrettladley/wext/internal/poller"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
)

// StartStreamCmd launches the panel stream and pushes snapshots to the
// provided channel. The channel bridges the blocking stream client with
// bubbletea's message system.
func StartStreamCmd(ctx context.Context, stream PanelStream, snapshots chan<- panelsvc.Snapshot) tea.Cmd {
	return func() tea.Msg {
		err := stream.Connect(ctx, func(s panelsvc.Snapshot) {
			select {
			case snapshots <- s:
			case <-ctx.Done():
			}
		})

		return StreamDisconnectedMsg{Err: err}
	}
}

// ListenSnapshotsCmd waits for the next pushed snapshot. It must be
// re-issued after each message to keep listening.
func ListenSnapshotsCmd(ctx context.Context, snapshots <-chan panelsvc.Snapshot) tea.Cmd {
	return func() tea.Msg {
		select {
		case s, ok := <-snapshots:
			if !ok {
				return StreamDisconnectedMsg{}
			}
			return SnapshotMsg{Snapshot: s}
		case <-ctx.Done():
			return StreamDisconnectedMsg{Err: ctx.Err()}
		}
	}
}

// ListenPollResultsCmd waits for the next poll result.
func ListenPollResultsCmd(ctx context.Context, results <-chan poller.Result) tea.Cmd {
	if results == nil {
		return nil
	}
	return func() tea.Msg {
		select {
		case r, ok := <-results:
			if !ok {
				return PollStoppedMsg{}
			}
			return PollResultMsg{Record: history.FromResult(r)}
		case <-ctx.Done():
			return PollStoppedMsg{}
		}
	}
}
