package server

import (
	"log/slog"
	"net/http"

	"github.com/garrettladley/wext/internal/server/handler"
	servermw "github.com/garrettladley/wext/internal/server/middleware"
	"github.com/garrettladley/wext/internal/service/beacon"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/storage"
	"github.com/garrettladley/wext/internal/xhttp/middleware"
)

type RouterDeps struct {
	Logger  *slog.Logger
	Panel   panelsvc.Service
	Beacons beacon.Service
	Limiter storage.RateLimiter
	Pinger  handler.Pinger
	Tracker handler.StreamTracker
	// GzipMinSize overrides the compression threshold when positive.
	GzipMinSize int
}

// NewRouter builds the full handler tree: page, beacon intake, panel API,
// live streams and health, wrapped in the common middleware chain.
func NewRouter(d RouterDeps) http.Handler {
	pageHandler := handler.NewPage(d.Panel)
	panelHandler := handler.NewPanel(d.Panel)
	beaconHandler := handler.NewBeacon(d.Beacons)
	streamHandler := handler.NewStream(d.Panel, d.Tracker)
	wsHandler := handler.NewWebSocket(d.Panel, d.Tracker)
	healthHandler := handler.NewHealth(d.Pinger)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", pageHandler.HandlePage)
	mux.Handle("GET /assets/", handler.Assets())
	mux.HandleFunc("GET /health", healthHandler.HandleHealth)

	// the poller hits this every few seconds per client
	mux.Handle("POST /{$}", middleware.Chain(
		http.HandlerFunc(beaconHandler.HandleIntake),
		servermw.RateLimit(d.Limiter),
	))
	mux.HandleFunc("GET /api/beacons", beaconHandler.HandleList)

	mux.HandleFunc("GET /api/panel", panelHandler.HandleGet)
	mux.HandleFunc("POST /api/panel/toolbar/{control}", panelHandler.HandleSelect)
	mux.HandleFunc("POST /api/panel/checkbox/{id}", panelHandler.HandleToggle)
	mux.HandleFunc("POST /api/panel/reset", panelHandler.HandleReset)
	mux.HandleFunc("GET /api/panel/stream", streamHandler.HandleStream)
	mux.HandleFunc("GET /api/panel/ws", wsHandler.HandleWebSocket)

	gzipOpts := []middleware.GzipOption{middleware.GzipExclude("/api/panel/stream", "/api/panel/ws")}
	if d.GzipMinSize > 0 {
		gzipOpts = append(gzipOpts, middleware.GzipMinSize(d.GzipMinSize))
	}

	return middleware.Chain(mux,
		middleware.Recovery,
		middleware.Logging,
		middleware.RequestID(),
		middleware.Session,
		middleware.Logger(d.Logger),
		middleware.ShutdownContext,
		middleware.SecurityHeaders,
		middleware.Gzip(gzipOpts...),
	)
}
