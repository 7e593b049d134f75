package xhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGetRequestIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		forwarded  string
		remoteAddr string
		want       string
	}{
		{name: "connection address", remoteAddr: "192.0.2.1:52100", want: "192.0.2.1"},
		{name: "connection address without port", remoteAddr: "192.0.2.1", want: "192.0.2.1"},
		{name: "ipv6 connection address", remoteAddr: "[2001:db8::7]:443", want: "2001:db8::7"},
		{name: "forwarded single hop", forwarded: "203.0.113.9", remoteAddr: "10.0.0.1:80", want: "203.0.113.9"},
		{name: "forwarded first of many", forwarded: "203.0.113.9, 198.51.100.2, 10.0.0.1", remoteAddr: "10.0.0.1:80", want: "203.0.113.9"},
		{name: "forwarded with port", forwarded: "203.0.113.9:8080", remoteAddr: "10.0.0.1:80", want: "203.0.113.9"},
		{name: "forwarded ipv6 with port", forwarded: "[2001:db8::1]:8080, 10.0.0.1", remoteAddr: "10.0.0.1:80", want: "2001:db8::1"},
		{name: "forwarded padded", forwarded: "  203.0.113.9  ", remoteAddr: "10.0.0.1:80", want: "203.0.113.9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			if tt.forwarded != "" {
				r.Header.Set(XForwardedFor, tt.forwarded)
			}

			if got := GetRequestIP(r); got != tt.want {
				t.Errorf("GetRequestIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestIsForm(t *testing.T) {
	t.Parallel()

	tests := []struct {
		contentType string
		want        bool
	}{
		{contentType: "application/x-www-form-urlencoded", want: true},
		{contentType: "application/x-www-form-urlencoded; charset=UTF-8", want: true},
		{contentType: "", want: true},
		{contentType: "application/json"},
		{contentType: "text/plain"},
	}

	for _, tt := range tests {
		t.Run(tt.contentType, func(t *testing.T) {
			t.Parallel()

			r := httptest.NewRequestWithContext(t.Context(), http.MethodPost, "/", nil)
			if tt.contentType != "" {
				r.Header.Set(ContentType, tt.contentType)
			}

			if got := IsForm(r); got != tt.want {
				t.Errorf("IsForm(%q) = %v, want %v", tt.contentType, got, tt.want)
			}
		})
	}
}
