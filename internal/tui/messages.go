package tui

import (
	"github.com/garrettladley/wext/internal/history"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
)

// PanelMsg is the server's answer to a command or the initial load.
type PanelMsg struct {
	Snapshot panelsvc.Snapshot
	Err      error
}

// SnapshotMsg is a change pushed over the stream.
type SnapshotMsg struct {
	Snapshot panelsvc.Snapshot
}

type StreamDisconnectedMsg struct {
	Err error
}

type PollResultMsg struct {
	Record history.Record
}

type PollStoppedMsg struct{}

type HistoryMsg struct {
	Records []history.Record
	Stats   history.Stats
	Err     error
}
