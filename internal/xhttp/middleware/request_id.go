package middleware

import (
	"net/http"

	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/google/uuid"
)

type RequestIDMiddleware struct {
	IDFunc func(*http.Request) string
	// TrustHeader reuses a well-formed inbound X-Request-ID.
	TrustHeader bool
}

type RequestIDOption func(*RequestIDMiddleware)

func WithIDFunc(fn func(*http.Request) string) RequestIDOption {
	return func(m *RequestIDMiddleware) {
		m.IDFunc = fn
	}
}

func WithTrustedHeader() RequestIDOption {
	return func(m *RequestIDMiddleware) {
		m.TrustHeader = true
	}
}

func RequestID(opts ...RequestIDOption) func(http.Handler) http.Handler {
	m := &RequestIDMiddleware{
		IDFunc: func(_ *http.Request) string {
			return uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(m)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := m.requestID(r)
			ctx := xcontext.SetRequestID(r.Context(), id)
			xhttp.SetHeaderRequestID(w, id)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func (m *RequestIDMiddleware) requestID(r *http.Request) string {
	if m.TrustHeader {
		if id := r.Header.Get(xhttp.XRequestID); id != "" {
			if _, err := uuid.Parse(id); err == nil {
				return id
			}
		}
	}
	return m.IDFunc(r)
}
