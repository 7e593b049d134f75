package handler

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/garrettladley/wext/internal/apperr"
	domain "github.com/garrettladley/wext/internal/panel"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xslog"
	go_json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingInterval   = (wsPongWait * 9) / 10
	wsMaxMessageSize = 4096
)

type WebSocket struct {
	service  panelsvc.Service
	tracker  StreamTracker
	upgrader websocket.Upgrader
}

func NewWebSocket(service panelsvc.Service, tracker StreamTracker) *WebSocket {
	return &WebSocket{
		service: service,
		tracker: tracker,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// HandleWebSocket handles GET /api/panel/ws. Clients send commands and receive
// the panel after each one, plus changes made from any other client of the
// same session. Only this goroutine writes to the connection.
func (h *WebSocket) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()
	logger := xslog.FromContext(ctx)

	id, err := sessionID(ctx)
	if err != nil {
		apperr.WriteError(w, err)
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

	// the upgrader writes its own error response
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.WarnContext(ctx, "websocket upgrade failed", xslog.Error(err))
		return
	}

	done := h.tracker.Track()
	defer done()

	commands := make(chan panelsvc.Command)
	var wg sync.WaitGroup
	wg.Go(func() {
		defer cancel()
		h.readCommands(ctx, conn, commands)
	})
	defer func() {
		cancel()
		_ = conn.Close()
		wg.Wait()
	}()

	logger.InfoContext(ctx, "websocket connection established")

	lastSeq := current.Seq
	if err := writeMessage(conn, panelsvc.Message{Type: panelsvc.MessagePanel, Panel: &current}); err != nil {
		logger.ErrorContext(ctx, "failed to send panel message", xslog.Error(err))
		return
	}

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			closeConn(ctx, conn)
			return

		case cmd := <-commands:
			msg := h.apply(ctx, id, cmd)
			if msg.Panel != nil && msg.Panel.Seq > lastSeq {
				lastSeq = msg.Panel.Seq
			}
			if err := writeMessage(conn, msg); err != nil {
				logger.ErrorContext(ctx, "failed to send reply", xslog.Error(err))
				return
			}

		case snap, ok := <-snapshots:
			if !ok {
				closeConn(ctx, conn)
				return
			}
			// already delivered as a command reply
			if snap.Seq <= lastSeq {
				continue
			}
			lastSeq = snap.Seq
			if err := writeMessage(conn, panelsvc.Message{Type: panelsvc.MessagePanel, Panel: &snap}); err != nil {
				logger.ErrorContext(ctx, "failed to send panel message", xslog.Error(err))
				return
			}

		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(wsWriteWait)); err != nil {
				logger.DebugContext(ctx, "failed to send ping", xslog.Error(err))
				return
			}
		}
	}
}

func (h *WebSocket) readCommands(ctx context.Context, conn *websocket.Conn, commands chan<- panelsvc.Command) {
	logger := xslog.FromContext(ctx)

	conn.SetReadLimit(wsMaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.DebugContext(ctx, "websocket read failed", xslog.Error(err))
			}
			return
		}

		var cmd panelsvc.Command
		if err := go_json.Unmarshal(data, &cmd); err != nil {
			// an empty type is answered with an error reply
			cmd = panelsvc.Command{}
		}

		select {
		case commands <- cmd:
		case <-ctx.Done():
			return
		}
	}
}

func (h *WebSocket) apply(ctx context.Context, sessionID string, cmd panelsvc.Command) panelsvc.Message {
	var (
		snap panelsvc.Snapshot
		err  error
	)

	switch cmd.Type {
	case panelsvc.CommandSelect:
		snap, err = h.service.Select(ctx, sessionID, cmd.Control)
	case panelsvc.CommandToggle:
		snap, err = h.service.Toggle(ctx, sessionID, cmd.Checkbox, cmd.Checked)
	case panelsvc.CommandReset:
		snap, err = h.service.Reset(ctx, sessionID)
	default:
		return errorMessage(apperr.CodeBadRequest, "unknown command type")
	}

	if errors.Is(err, domain.ErrUnknownControl) {
		return errorMessage(apperr.CodeUnknownControl, err.Error())
	}
	if err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to apply command", xslog.Type(cmd.Type), xslog.Error(err))
		return errorMessage(apperr.CodeInternal, "failed to apply command")
	}
	return panelsvc.Message{Type: panelsvc.MessagePanel, Panel: &snap}
}

// closeConn says goodbye when the server is draining. A client that went away
// gets nothing.
func closeConn(ctx context.Context, conn *websocket.Conn) {
	logger := xslog.FromContext(ctx)

	switch {
	case xcontext.IsShutdownInProgress(ctx):
		logger.InfoContext(ctx, "websocket graceful shutdown initiated")
		// best effort
		_ = writeMessage(conn, panelsvc.Message{Type: panelsvc.MessageShutdown})
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server-restart"),
			time.Now().Add(wsWriteWait))
	case ctx.Err() != nil:
		logger.InfoContext(ctx, "websocket connection closed")
	default:
		logger.InfoContext(ctx, "panel feed closed")
	}
}

func errorMessage(code, message string) panelsvc.Message {
	return panelsvc.Message{
		Type:  panelsvc.MessageError,
		Error: &panelsvc.ErrorBody{Code: code, Message: message},
	}
}

func writeMessage(conn *websocket.Conn, msg panelsvc.Message) error {
	data, err := go_json.Marshal(msg)
	if err != nil {
		return err
	}
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
		return err
	}
	return conn.WriteMessage(websocket.TextMessage, data)
}
