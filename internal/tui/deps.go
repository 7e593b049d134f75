package tui

import (
	"context"
	"log/slog"
	"time"

	clientpanel "github.com/garrettladley/wext/internal/client/panel"
	"github.com/garrettladley/wext/internal/history"
	"github.com/garrettladley/wext/internal/poller"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
)

// PanelClient issues panel commands; the server answers with the new panel.
type PanelClient interface {
	Get(ctx context.Context) (panelsvc.Snapshot, error)
	Select(ctx context.Context, control string) (panelsvc.Snapshot, error)
	Toggle(ctx context.Context, checkbox string, checked *bool) (panelsvc.Snapshot, error)
	Reset(ctx context.Context) (panelsvc.Snapshot, error)
}

// PanelStream pushes panel changes made by any client of the session.
type PanelStream interface {
	Connect(ctx context.Context, handler clientpanel.SnapshotHandler) error
}

type Deps struct {
	Ctx       context.Context
	Logger    *slog.Logger
	ServerURL string
	Interval  time.Duration

	Panel     PanelClient
	Stream    PanelStream
	Snapshots chan panelsvc.Snapshot

	// Results carries every poll result from the poller running alongside
	// the program.
	Results <-chan poller.Result
	History history.Repository
}
