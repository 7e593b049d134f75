package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestChainOrder(t *testing.T) {
	t.Parallel()

	var order []string
	mark := func(name string) func(http.Handler) http.Handler {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	mws := []Middleware{mark("a"), mark("b"), mark("c")}
	h := Chain(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		order = append(order, "handler")
	}), mws...)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	want := []string{"a", "b", "c", "handler", "a", "b", "c", "handler"}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Errorf("order mismatch (-want +got):\n%s", diff)
	}
}

func TestSession(t *testing.T) {
	t.Parallel()

	known := uuid.NewString()

	tests := []struct {
		name       string
		header     string
		cookie     string
		wantID     string
		wantCookie bool
	}{
		{name: "header wins", header: known, cookie: uuid.NewString(), wantID: known},
		{name: "cookie", cookie: known, wantID: known},
		{name: "minted when absent", wantCookie: true},
		{name: "malformed header is replaced", header: "../../etc", wantCookie: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got string
			h := Session(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got, _ = xcontext.GetSessionID(r.Context())
			}))

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/api/panel", nil)
			if tt.header != "" {
				req.Header.Set(xhttp.XSessionID, tt.header)
			}
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: xhttp.SessionCookie, Value: tt.cookie})
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if tt.wantID != "" && got != tt.wantID {
				t.Errorf("session = %q, want %q", got, tt.wantID)
			}
			if _, err := uuid.Parse(got); err != nil {
				t.Errorf("session %q is not a uuid", got)
			}
			if rec.Header().Get(xhttp.XSessionID) != got {
				t.Errorf("response header = %q, want %q", rec.Header().Get(xhttp.XSessionID), got)
			}

			cookies := rec.Result().Cookies()
			if tt.wantCookie && (len(cookies) != 1 || cookies[0].Value != got) {
				t.Errorf("cookies = %v, want one %s=%s", cookies, xhttp.SessionCookie, got)
			}
			if !tt.wantCookie && len(cookies) != 0 {
				t.Errorf("cookies = %v, want none", cookies)
			}
		})
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	inbound := uuid.NewString()

	tests := []struct {
		name    string
		opts    []RequestIDOption
		header  string
		wantID  string
		wantNew bool
	}{
		{name: "generated", wantNew: true},
		{name: "inbound ignored by default", header: inbound, wantNew: true},
		{name: "inbound trusted", opts: []RequestIDOption{WithTrustedHeader()}, header: inbound, wantID: inbound},
		{name: "garbage inbound regenerated", opts: []RequestIDOption{WithTrustedHeader()}, header: "nope", wantNew: true},
		{name: "custom func", opts: []RequestIDOption{WithIDFunc(func(*http.Request) string { return "fixed" })}, wantID: "fixed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got string
			h := RequestID(tt.opts...)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				got, _ = xcontext.GetRequestID(r.Context())
			}))

			req := httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set(xhttp.XRequestID, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			if rec.Header().Get(xhttp.XRequestID) != got {
				t.Errorf("response header = %q, context = %q", rec.Header().Get(xhttp.XRequestID), got)
			}
			if tt.wantID != "" && got != tt.wantID {
				t.Errorf("id = %q, want %q", got, tt.wantID)
			}
			if tt.wantNew && (got == tt.header || got == "") {
				t.Errorf("id = %q, want a fresh id", got)
			}
		})
	}
}

func TestShutdownContext(t *testing.T) {
	t.Parallel()

	called := false
	h := ShutdownContext(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		called = true
	}))

	ctx, cancel := context.WithCancelCause(t.Context())
	cancel(xcontext.ErrShutdown)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(ctx, http.MethodGet, "/api/panel", nil))

	if called {
		t.Error("handler ran during shutdown")
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusServiceUnavailable)
	}
}

func TestRecovery(t *testing.T) {
	t.Parallel()

	h := Recovery(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}

func TestLoggingKeepsFlusher(t *testing.T) {
	t.Parallel()

	var flushed bool
	h := Logging(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, flushed = w.(http.Flusher)
		w.WriteHeader(http.StatusTeapot)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequestWithContext(t.Context(), http.MethodGet, "/", nil))

	if !flushed {
		t.Error("wrapped writer lost http.Flusher")
	}
	if rec.Code != http.StatusTeapot {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusTeapot)
	}
}
