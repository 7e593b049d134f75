package theme

import "charm.land/lipgloss/v2"

var (
	ColorBlack = lipgloss.Color("#000000")
	ColorWhite = lipgloss.Color("#FFFFFF")
	ColorDim   = lipgloss.Color("#666666")
)

var (
	ColorActive  = lipgloss.Color("#2A6EBB") // active toolbar control
	ColorOK      = lipgloss.Color("#16EC06") // successful poll, live stream
	ColorWarn    = lipgloss.Color("#FFDE00") // skipped tick, reconnecting
	ColorError   = lipgloss.Color("#FF0026") // failed poll, offline
	ColorLatency = lipgloss.Color("#67AEE6") // latency sparkline
)

var (
	ColorBgDark  = lipgloss.Color("#101518")
	ColorBgLight = lipgloss.Color("#283339")
)
