package xhttp

import (
	"fmt"
	"net/http"

	"github.com/garrettladley/wext/internal/version"
)

type wextTransport struct {
	base      http.RoundTripper
	sessionID string
}

var _ http.RoundTripper = (*wextTransport)(nil)

func (t *wextTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", version.UserAgent())
	req.Header.Set(version.Header, version.Get())
	if t.sessionID != "" && req.Header.Get(XSessionID) == "" {
		SetRequestHeaderSessionID(req, t.sessionID)
	}
	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("failed to perform round trip: %w", err)
	}
	return resp, nil
}

// NewTransport returns an http.RoundTripper with standard wext headers.
// A non-empty sessionID is attached to every request that has none.
func NewTransport(sessionID string) http.RoundTripper {
	return &wextTransport{base: http.DefaultTransport, sessionID: sessionID}
}
