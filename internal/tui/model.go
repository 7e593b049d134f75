package tui

import (
	"context"
	"log/slog"
	"time"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/wext/internal/history"
	domain "github.com/garrettladley/wext/internal/panel"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/tui/components/status"
	"github.com/garrettladley/wext/internal/tui/theme"
	"github.com/garrettladley/wext/internal/xslog"
)

var _ tea.Model = (*Model)(nil)

type state struct {
	snapshot panelsvc.Snapshot
	loaded   bool

	// records holds the latest poll results, oldest first
	records []history.Record
	stats   history.Stats

	stream  status.Indicator
	lastErr string
}

type Model struct {
	ready          bool
	viewportWidth  int
	viewportHeight int
	theme          theme.Theme
	state          state
	deps           Deps
}

func New(deps Deps) Model {
	if deps.Ctx == nil {
		deps.Ctx = context.Background()
	}
	return Model{
		theme: theme.New(),
		deps:  deps,
		state: state{
			snapshot: panelsvc.Snapshot{
				State:  domain.Initial(),
				Render: domain.Initial().Render(),
			},
		},
	}
}

func (m *Model) Init() tea.Cmd {
	ctx := m.deps.Ctx
	cmds := []tea.Cmd{
		loadPanelCmd(ctx, m.deps.Panel),
		loadHistoryCmd(ctx, m.deps.History),
		ListenPollResultsCmd(ctx, m.deps.Results),
	}
	if m.deps.Stream != nil && m.deps.Snapshots != nil {
		cmds = append(cmds,
			StartStreamCmd(ctx, m.deps.Stream, m.deps.Snapshots),
			ListenSnapshotsCmd(ctx, m.deps.Snapshots),
		)
	}
	return tea.Batch(cmds...)
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	ctx := m.deps.Ctx

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewportWidth = msg.Width
		m.viewportHeight = msg.Height
		m.ready = true

	case tea.KeyPressMsg:
		return m, m.handleKey(msg.String())

	case PanelMsg:
		if msg.Err != nil {
			m.state.lastErr = msg.Err.Error()
			m.log().WarnContext(ctx, "panel command failed", xslog.Error(msg.Err))
			return m, nil
		}
		m.state.lastErr = ""
		m.applySnapshot(msg.Snapshot)

	case SnapshotMsg:
		m.state.stream.Stream = status.StreamLive
		m.applySnapshot(msg.Snapshot)
		return m, ListenSnapshotsCmd(ctx, m.deps.Snapshots)

	case StreamDisconnectedMsg:
		m.state.stream.Stream = status.StreamOffline
		if msg.Err != nil && ctx.Err() == nil {
			m.log().WarnContext(ctx, "panel stream stopped", xslog.Error(msg.Err))
		}

	case PollResultMsg:
		m.addRecord(msg.Record)
		return m, ListenPollResultsCmd(ctx, m.deps.Results)

	case HistoryMsg:
		if msg.Err != nil {
			m.log().WarnContext(ctx, "failed to load poll history", xslog.Error(msg.Err))
			return m, nil
		}
		m.loadHistory(msg.Records, msg.Stats)
	}

	return m, nil
}

func (m *Model) handleKey(key string) tea.Cmd {
	var (
		ctx    = m.deps.Ctx
		client = m.deps.Panel
	)

	switch key {
	case "q", "ctrl+c":
		return tea.Quit
	case "1", "s":
		return selectCmd(ctx, client, string(domain.ControlStatus))
	case "2", "c":
		return selectCmd(ctx, client, string(domain.ControlConfigure))
	case "3", "a":
		return selectCmd(ctx, client, string(domain.ControlAbout))
	case "r":
		return resetCmd(ctx, client)
	}

	for _, g := range domain.ToggleGroups {
		if key == g.Key {
			return toggleCmd(ctx, client, string(g.Checkbox))
		}
	}
	return nil
}

// applySnapshot ignores snapshots older than the one shown. Replies and
// pushed changes race each other, so the newest seq wins.
func (m *Model) applySnapshot(s panelsvc.Snapshot) {
	if m.state.loaded && s.Seq < m.state.snapshot.Seq {
		return
	}
	if s.Render == nil {
		s.Render = s.State.Render()
	}
	m.state.snapshot = s
	m.state.loaded = true
}

// addRecord counts a live result into the stats and the sparkline.
func (m *Model) addRecord(rec history.Record) {
	st := &m.state.stats
	// mean latency covers successful polls only
	if rec.OK() {
		n := time.Duration(st.Count - st.Skipped - st.Failures)
		st.MeanLatency = (st.MeanLatency*n + rec.Latency) / (n + 1)
	}
	switch {
	case rec.Skipped:
		st.Skipped++
	case !rec.OK():
		st.Failures++
	}
	st.Count++
	started := rec.StartedAt
	st.Last = &started

	m.pushRecord(rec)
}

// loadHistory puts stored results in front of any live ones. Stored stats
// only replace the live tally while nothing has arrived yet; the first poll
// fires one interval after start, so this is the usual case.
func (m *Model) loadHistory(records []history.Record, stats history.Stats) {
	if len(m.state.records) == 0 {
		m.state.stats = stats
	}

	// Latest is newest first
	older := make([]history.Record, 0, len(records)+len(m.state.records))
	for i := len(records) - 1; i >= 0; i-- {
		older = append(older, records[i])
	}
	m.state.records = append(older, m.state.records...)
	if over := len(m.state.records) - sparklineSamples; over > 0 {
		m.state.records = m.state.records[over:]
	}
}

func (m *Model) pushRecord(rec history.Record) {
	m.state.records = append(m.state.records, rec)
	if over := len(m.state.records) - sparklineSamples; over > 0 {
		m.state.records = m.state.records[over:]
	}
}

func (m *Model) log() *slog.Logger {
	if m.deps.Logger != nil {
		return m.deps.Logger
	}
	return xslog.FromContext(m.deps.Ctx)
}

func (m *Model) View() tea.View {
	view := tea.NewView("")
	view.AltScreen = true
	view.BackgroundColor = m.theme.Background()

	if !m.ready {
		return view
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		m.TabsView(),
		"",
		m.ContainerView(),
	)

	content := lipgloss.JoinVertical(lipgloss.Left,
		lipgloss.Place(m.viewportWidth, max(m.viewportHeight-1, 0), lipgloss.Left, lipgloss.Top, body),
		m.FooterView(),
	)

	view.SetContent(content)
	return view
}
