package tui

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"

	"github.com/garrettladley/wext/internal/history"
	domain "github.com/garrettladley/wext/internal/panel"
	"github.com/garrettladley/wext/internal/tui/components/footer"
	"github.com/garrettladley/wext/internal/tui/components/sparkline"
	"github.com/garrettladley/wext/internal/tui/theme"
)

const (
	sparklineHeight = 3
	recentRows      = 5
)

var tabLabels = map[domain.Control]string{
	domain.ControlStatus:    "1 Status",
	domain.ControlConfigure: "2 Configure",
	domain.ControlAbout:     "3 About",
}

// TabsView draws the toolbar. The active marker comes from the rendered
// classes, as in the page.
func (m *Model) TabsView() string {
	render := m.state.snapshot.Render
	tabs := make([]string, 0, len(domain.Controls))
	for _, c := range domain.Controls {
		tabs = append(tabs, m.theme.Tab(render.Has(string(c), domain.ClassActive)).Render(tabLabels[c]))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
}

// ContainerView draws whichever container is shown. Selecting About leaves
// the previous container in place.
func (m *Model) ContainerView() string {
	render := m.state.snapshot.Render
	switch {
	case render.Has(string(domain.ContainerConfigure), domain.ClassShow):
		return m.ConfigureView()
	case render.Has(string(domain.ContainerStatus), domain.ClassShow):
		return m.StatusView()
	default:
		return ""
	}
}

func (m *Model) ConfigureView() string {
	var (
		render = m.state.snapshot.Render
		lines  = []string{m.theme.Title().Render("Configure")}
	)

	for _, g := range domain.ToggleGroups {
		expanded := !render.Has(g.Block(), domain.ClassHidden)
		box := "[ ]"
		if expanded {
			box = "[x]"
		}
		lines = append(lines, fmt.Sprintf("%s %s %s", box, g.Label, m.theme.Dim().Render("("+g.Key+")")))
		if expanded {
			lines = append(lines, m.theme.Dim().Render("    "+g.Label+" options"))
		}
	}

	if m.state.lastErr != "" {
		lines = append(lines, "", m.theme.Error().Render(m.state.lastErr))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) StatusView() string {
	var (
		st    = m.state.stats
		lines = []string{m.theme.Title().Render("Client Status")}
	)

	lines = append(lines,
		fmt.Sprintf("server    %s", m.deps.ServerURL),
		fmt.Sprintf("interval  %s", m.deps.Interval),
		fmt.Sprintf("polls     %d  failures %d  skipped %d", st.Count, st.Failures, st.Skipped),
		fmt.Sprintf("latency   %s mean", st.MeanLatency.Round(time.Millisecond)),
		"",
	)

	latencies := make([]float64, 0, len(m.state.records))
	for _, r := range m.state.records {
		if r.Skipped {
			latencies = append(latencies, 0)
			continue
		}
		latencies = append(latencies, float64(r.Latency.Milliseconds()))
	}
	width := max(min(m.viewportWidth-4, sparklineSamples/2), 10)
	lines = append(lines, sparkline.New(latencies, width, sparklineHeight, theme.ColorLatency).Render(), "")

	for i := len(m.state.records) - 1; i >= 0 && i >= len(m.state.records)-recentRows; i-- {
		lines = append(lines, m.recordLine(m.state.records[i]))
	}
	if len(m.state.records) == 0 {
		lines = append(lines, m.theme.Dim().Render("waiting for the first poll..."))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) recordLine(r history.Record) string {
	at := r.StartedAt.Local().Format(time.TimeOnly)
	switch {
	case r.Skipped:
		return m.theme.Warn().Render(fmt.Sprintf("%s  #%d  skipped (previous poll in flight)", at, r.Seq))
	case r.Error != "":
		return m.theme.Error().Render(fmt.Sprintf("%s  #%d  %s", at, r.Seq, r.Error))
	default:
		return m.theme.OK().Render(fmt.Sprintf("%s  #%d  %d  %s", at, r.Seq, r.Status, r.Latency.Round(time.Millisecond)))
	}
}

func (m *Model) FooterView() string {
	hints := m.theme.Dim().Render("1/2/3 view  u/b/m toggle  r reset  q quit")
	right := lipgloss.JoinHorizontal(lipgloss.Top, hints, "  ", m.state.stream.Render())
	return footer.New(right, m.viewportWidth).Render()
}
