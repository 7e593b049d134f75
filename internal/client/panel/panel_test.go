package panel

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/garrettladley/wext/internal/panel"
	"github.com/garrettladley/wext/internal/server"
	"github.com/garrettladley/wext/internal/service/beacon"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/storage"
	"github.com/google/uuid"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	backend := storage.NewMemoryBackend(100, 100)
	t.Cleanup(func() { _ = backend.Close() })

	srv := httptest.NewServer(server.NewRouter(server.RouterDeps{
		Logger:  discardLogger(),
		Panel:   panelsvc.NewController(backend, storage.NewMemoryPanelFeed(), time.Hour),
		Beacons: beacon.NewIntake(storage.NewMemoryBeaconStore(16)),
		Limiter: backend,
		Pinger:  backend,
		Tracker: server.NewShutdownCoordinator(time.Second),
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClientRoundTrip(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := NewClient(srv.URL+"/", uuid.NewString())
	ctx := t.Context()

	snap, err := c.Select(ctx, "configure")
	if err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	if snap.State.View != domain.ViewConfigure {
		t.Errorf("view = %q, want %q", snap.State.View, domain.ViewConfigure)
	}

	if _, err := c.Toggle(ctx, "use_authentication", nil); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	checked := false
	snap, err = c.Toggle(ctx, "use_custom_mac_address", &checked)
	if err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}
	if !snap.State.BlockVisible(domain.CheckboxUseAuthentication) || snap.State.BlockVisible(domain.CheckboxUseCustomMACAddress) {
		t.Errorf("blocks = %v", snap.State.Blocks)
	}

	got, err := c.Get(ctx)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !got.State.Equal(snap.State) {
		t.Errorf("Get() state = %+v, want %+v", got.State, snap.State)
	}

	snap, err = c.Reset(ctx)
	if err != nil {
		t.Fatalf("Reset() error = %v", err)
	}
	if !snap.State.Equal(domain.Initial()) {
		t.Errorf("state after reset = %+v", snap.State)
	}
}

func TestClientSessionsAreIsolated(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	a := NewClient(srv.URL, uuid.NewString())
	b := NewClient(srv.URL, uuid.NewString())

	if _, err := a.Select(t.Context(), "about"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}
	snap, err := b.Get(t.Context())
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if snap.State.View != domain.ViewStatus {
		t.Errorf("other session view = %q, want %q", snap.State.View, domain.ViewStatus)
	}
}

func TestClientUnknownControl(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	c := NewClient(srv.URL, uuid.NewString())

	_, err := c.Select(t.Context(), "help")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("Select() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusNotFound || apiErr.Code != "unknown_control" {
		t.Errorf("api error = %+v", apiErr)
	}
}

func TestStreamDeliversChanges(t *testing.T) {
	t.Parallel()

	srv := newTestServer(t)
	session := uuid.NewString()
	c := NewClient(srv.URL, session)
	s := NewStream(srv.URL, session, discardLogger())

	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	snaps := make(chan panelsvc.Snapshot, 8)
	errc := make(chan error, 1)
	go func() { errc <- s.Connect(ctx, func(snap panelsvc.Snapshot) { snaps <- snap }) }()

	select {
	case snap := <-snaps:
		if !snap.State.Equal(domain.Initial()) {
			t.Fatalf("first snapshot = %+v, want initial", snap.State)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no initial snapshot")
	}

	if _, err := c.Select(t.Context(), "configure"); err != nil {
		t.Fatalf("Select() error = %v", err)
	}

	select {
	case snap := <-snaps:
		if snap.State.View != domain.ViewConfigure {
			t.Errorf("pushed view = %q, want %q", snap.State.View, domain.ViewConfigure)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no pushed snapshot")
	}

	cancel()
	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Errorf("Connect() error = %v, want context.Canceled", err)
	}
}

func TestStreamReconnects(t *testing.T) {
	t.Parallel()

	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	s := NewStream(srv.URL, uuid.NewString(), discardLogger())
	s.initialBackoff = 10 * time.Millisecond

	ctx, cancel := context.WithTimeout(t.Context(), 200*time.Millisecond)
	defer cancel()

	if err := s.Connect(ctx, func(panelsvc.Snapshot) {}); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Connect() error = %v, want deadline exceeded", err)
	}
	if n := attempts.Load(); n < 2 {
		t.Errorf("attempts = %d, want at least 2", n)
	}
}

func TestWebsocketURL(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"http://localhost:8080":  "ws://localhost:8080",
		"https://panel.example/": "wss://panel.example",
	}
	for in, want := range tests {
		if got := websocketURL(in); got != want {
			t.Errorf("websocketURL(%q) = %q, want %q", in, got, want)
		}
	}
}
