package status

import (
	"charm.land/lipgloss/v2"

	"github.com/garrettladley/wext/internal/tui/theme"
)

const statusDot = "●"

type Stream uint8

const (
	StreamConnecting Stream = iota
	StreamLive
	StreamOffline
)

// Indicator shows whether panel changes are arriving from the daemon.
type Indicator struct {
	Stream Stream
}

func (i Indicator) Render() string {
	switch i.Stream {
	case StreamLive:
		return lipgloss.NewStyle().
			Foreground(theme.ColorOK).
			Render(statusDot + " live")
	case StreamOffline:
		return lipgloss.NewStyle().
			Foreground(theme.ColorError).
			Render(statusDot + " offline")
	default:
		return lipgloss.NewStyle().
			Foreground(theme.ColorBgLight).
			Render(statusDot + " connecting...")
	}
}
