package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/garrettladley/wext/internal/apperr"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
	go_json "github.com/goccy/go-json"
)

const (
	sseHeartbeatInterval = 30 * time.Second
	sseWriteTimeout      = 45 * time.Second
)

// StreamTracker keeps shutdown waiting while a stream is open.
type StreamTracker interface {
	Track() func()
}

type Stream struct {
	service           panelsvc.Service
	tracker           StreamTracker
	heartbeatInterval time.Duration
}

func NewStream(service panelsvc.Service, tracker StreamTracker) *Stream {
	return &Stream{
		service:           service,
		tracker:           tracker,
		heartbeatInterval: sseHeartbeatInterval,
	}
}

// HandleStream handles GET /api/panel/stream. The current panel is sent first,
// then every change of the session as it is committed.
func (h *Stream) HandleStream(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	id, err := sessionID(ctx)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		logger.WarnContext(ctx, "SSE: flusher not supported")
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "streaming unsupported", nil))
		return
	}

	snapshots, unsubscribe, err := h.service.Subscribe(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to subscribe to panel", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to subscribe", err))
		return
	}
	defer unsubscribe()

	current, err := h.service.Get(ctx, id)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load panel", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to load panel", err))
		return
	}

	done := h.tracker.Track()
	defer done()

	w.Header().Set(xhttp.ContentType, xhttp.MIMETextEventStream)
	w.Header().Set(xhttp.CacheControl, "no-cache")
	w.Header().Set(xhttp.Connection, "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)

	if err := writeSSEEvent(rc, w, flusher, "connected", map[string]any{
		"session_id": id,
		"time":       time.Now().Format(time.RFC3339),
	}); err != nil {
		logger.ErrorContext(ctx, "failed to send connected event", xslog.Error(err))
		return
	}
	if err := writeSSEEvent(rc, w, flusher, panelsvc.MessagePanel, current); err != nil {
		logger.ErrorContext(ctx, "failed to send panel event", xslog.Error(err))
		return
	}

	logger.InfoContext(ctx, "SSE connection established")

	heartbeat := time.NewTicker(h.heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-ctx.Done():
			h.closeStream(ctx, rc, w, flusher)
			return

		case snap, ok := <-snapshots:
			// the feed closes along with the request context
			if !ok {
				h.closeStream(ctx, rc, w, flusher)
				return
			}
			if err := writeSSEEvent(rc, w, flusher, panelsvc.MessagePanel, snap); err != nil {
				logger.ErrorContext(ctx, "failed to send panel event", xslog.Error(err))
				return
			}

		case t := <-heartbeat.C:
			if err := writeSSEEvent(rc, w, flusher, "heartbeat", map[string]string{
				"time": t.Format(time.RFC3339),
			}); err != nil {
				logger.ErrorContext(ctx, "failed to send heartbeat", xslog.Error(err))
				return
			}
		}
	}
}

func (h *Stream) closeStream(ctx context.Context, rc *http.ResponseController, w http.ResponseWriter, flusher http.Flusher) {
	logger := xslog.FromContext(ctx)

	switch {
	case xcontext.IsShutdownInProgress(ctx):
		logger.InfoContext(ctx, "SSE graceful shutdown initiated")
		// best effort: send shutdown event to client
		_ = writeSSEEvent(rc, w, flusher, panelsvc.MessageShutdown, map[string]string{
			"reason": "server-restart",
			"time":   time.Now().Format(time.RFC3339),
		})
	case ctx.Err() != nil:
		logger.InfoContext(ctx, "SSE connection closed by client")
	default:
		logger.InfoContext(ctx, "panel feed closed")
	}
}

func writeSSEEvent(rc *http.ResponseController, w http.ResponseWriter, flusher http.Flusher, event string, data any) error {
	// extend write deadline before each write (ignore if not supported)
	if err := rc.SetWriteDeadline(time.Now().Add(sseWriteTimeout)); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return fmt.Errorf("failed to set write deadline: %w", err)
	}

	jsonData, err := go_json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return fmt.Errorf("failed to write event: %w", err)
	}

	flusher.Flush()
	return nil
}
