package tui

import (
	"context"

	tea "charm.land/bubbletea/v2"

	"github.com/garrettladley/wext/internal/history"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
)

const sparklineSamples = 120

func panelCmd(ctx context.Context, fn func(context.Context) (panelsvc.Snapshot, error)) tea.Cmd {
	return func() tea.Msg {
		snap, err := fn(ctx)
		return PanelMsg{Snapshot: snap, Err: err}
	}
}

func loadPanelCmd(ctx context.Context, client PanelClient) tea.Cmd {
	return panelCmd(ctx, client.Get)
}

func selectCmd(ctx context.Context, client PanelClient, control string) tea.Cmd {
	return panelCmd(ctx, func(ctx context.Context) (panelsvc.Snapshot, error) {
		return client.Select(ctx, control)
	})
}

// toggleCmd flips the block, like clicking the checkbox in the page.
func toggleCmd(ctx context.Context, client PanelClient, checkbox string) tea.Cmd {
	return panelCmd(ctx, func(ctx context.Context) (panelsvc.Snapshot, error) {
		return client.Toggle(ctx, checkbox, nil)
	})
}

func resetCmd(ctx context.Context, client PanelClient) tea.Cmd {
	return panelCmd(ctx, client.Reset)
}

func loadHistoryCmd(ctx context.Context, repo history.Repository) tea.Cmd {
	if repo == nil {
		return nil
	}
	return func() tea.Msg {
		records, err := repo.Latest(ctx, sparklineSamples)
		if err != nil {
			return HistoryMsg{Err: err}
		}
		stats, err := repo.Stats(ctx)
		return HistoryMsg{Records: records, Stats: stats, Err: err}
	}
}
