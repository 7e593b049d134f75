package server

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/garrettladley/wext/internal/service/beacon"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/storage"
	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/google/uuid"
)

func newTestRouter(t *testing.T, burst int) http.Handler {
	t.Helper()
	return newTestRouterGzip(t, burst, 0)
}

func newTestRouterGzip(t *testing.T, burst, gzipMinSize int) http.Handler {
	t.Helper()

	backend := storage.NewMemoryBackend(0.001, burst)
	t.Cleanup(func() { _ = backend.Close() })

	return NewRouter(RouterDeps{
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		Panel:   panelsvc.NewController(backend, storage.NewMemoryPanelFeed(), time.Hour),
		Beacons: beacon.NewIntake(storage.NewMemoryBeaconStore(16)),
		Limiter: backend,
		Pinger:  backend,
		Tracker: NewShutdownCoordinator(time.Second),

		GzipMinSize: gzipMinSize,
	})
}

func TestRouterMintsSession(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, 10)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	id := rec.Header().Get(xhttp.XSessionID)
	if _, err := uuid.Parse(id); err != nil {
		t.Errorf("session header %q is not a uuid", id)
	}

	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == xhttp.SessionCookie && c.Value == id {
			found = true
		}
	}
	if !found {
		t.Errorf("session cookie not set")
	}
	if rec.Header().Get(xhttp.XRequestID) == "" {
		t.Errorf("request id header not set")
	}
}

func TestRouterSessionSurvivesRequests(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, 10)
	id := uuid.NewString()

	send := func(method, target string) *httptest.ResponseRecorder {
		req := httptest.NewRequestWithContext(t.Context(), method, target, nil)
		req.AddCookie(&http.Cookie{Name: xhttp.SessionCookie, Value: id})
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	if rec := send(http.MethodPost, "/api/panel/toolbar/configure"); rec.Code != http.StatusOK {
		t.Fatalf("select status = %d", rec.Code)
	}

	rec := send(http.MethodGet, "/")
	if !strings.Contains(rec.Body.String(), `id="container_configure" class="show"`) {
		t.Errorf("page does not reflect the stored view")
	}
}

func TestRouterRateLimitsBeacons(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, 2)

	var codes []int
	for range 3 {
		req := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/", strings.NewReader("name=Donald+Duck&city=Duckburg"))
		req.Header.Set(xhttp.ContentType, xhttp.MIMEApplicationForm)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	for i := range want {
		if codes[i] != want[i] {
			t.Errorf("request %d status = %d, want %d", i, codes[i], want[i])
		}
	}
}

func TestRouterRejectsDuringShutdown(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, 10)

	ctx, cancel := context.WithCancelCause(t.Context())
	cancel(xcontext.ErrShutdown)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequestWithContext(ctx, http.MethodGet, "/api/panel", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRouterUnknownRoute(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t, 10)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/nope", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouterGzipMinSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		minSize  int
		wantGzip bool
	}{
		{name: "page above threshold", minSize: 1, wantGzip: true},
		{name: "page below threshold", minSize: 1 << 20, wantGzip: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			router := newTestRouterGzip(t, 10, tt.minSize)
			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil)
			req.Header.Set(xhttp.AcceptEncoding, "gzip")
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
			}
			if got := rec.Header().Get(xhttp.ContentEncoding) == "gzip"; got != tt.wantGzip {
				t.Errorf("gzipped = %v, want %v", got, tt.wantGzip)
			}
		})
	}
}
