package panel

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/version"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
	go_json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	initialBackoff = 1 * time.Second
	maxBackoff     = 30 * time.Second
	backoffFactor  = 2

	handshakeTimeout = 10 * time.Second
)

var errServerShutdown = errors.New("server shutting down")

type SnapshotHandler func(snap panelsvc.Snapshot)

// Stream follows the session's panel over the WebSocket endpoint.
type Stream struct {
	url       string
	sessionID string
	dialer    *websocket.Dialer
	logger    *slog.Logger

	initialBackoff time.Duration
}

func NewStream(baseURL string, sessionID string, logger *slog.Logger) *Stream {
	return &Stream{
		url:       websocketURL(baseURL) + "/api/panel/ws",
		sessionID: sessionID,
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: handshakeTimeout,
		},
		logger:         logger,
		initialBackoff: initialBackoff,
	}
}

func websocketURL(baseURL string) string {
	u := strings.TrimRight(baseURL, "/")
	if rest, ok := strings.CutPrefix(u, "https://"); ok {
		return "wss://" + rest
	}
	if rest, ok := strings.CutPrefix(u, "http://"); ok {
		return "ws://" + rest
	}
	return u
}

// Connect calls handler with every panel pushed by the server. It reconnects
// with exponential backoff and returns when ctx is cancelled.
func (s *Stream) Connect(ctx context.Context, handler SnapshotHandler) error {
	backoff := s.initialBackoff

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err := s.connectOnce(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err == nil {
			// connection closed cleanly, reset backoff
			backoff = s.initialBackoff
			continue
		}

		level := slog.LevelWarn
		if errors.Is(err, errServerShutdown) {
			level = slog.LevelInfo
		}
		s.logger.Log(ctx, level, "panel stream disconnected, reconnecting",
			xslog.Error(err),
			xslog.Backoff(backoff),
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= backoffFactor
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

func (s *Stream) connectOnce(ctx context.Context, handler SnapshotHandler) error {
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	header.Set(version.Header, version.Get())
	if s.sessionID != "" {
		header.Set(xhttp.XSessionID, s.sessionID)
	}

	conn, resp, err := s.dialer.DialContext(ctx, s.url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		return fmt.Errorf("connecting: %w", err)
	}

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer func() {
		stop()
		_ = conn.Close()
	}()

	s.logger.InfoContext(ctx, "panel stream established")

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				return nil
			}
			if websocket.IsCloseError(err, websocket.CloseGoingAway) {
				return errServerShutdown
			}
			return fmt.Errorf("reading stream: %w", err)
		}

		var msg panelsvc.Message
		if err := go_json.Unmarshal(data, &msg); err != nil {
			s.logger.WarnContext(ctx, "failed to parse panel message",
				xslog.Error(err),
				xslog.Data(string(data)),
			)
			continue
		}

		switch msg.Type {
		case panelsvc.MessagePanel:
			if msg.Panel != nil {
				handler(*msg.Panel)
			}
		case panelsvc.MessageShutdown:
			return errServerShutdown
		case panelsvc.MessageError:
			if msg.Error != nil {
				s.logger.WarnContext(ctx, "panel stream error", xslog.Type(msg.Error.Code), xslog.Data(msg.Error.Message))
			}
		default:
			s.logger.DebugContext(ctx, "received unknown message type", xslog.Type(msg.Type))
		}
	}
}
