package middleware

import (
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/garrettladley/wext/internal/xhttp"
)

const (
	gzipDefaultMinSize = 1024
	gzipEncoding       = "gzip"
)

var gzipWriterPool = sync.Pool{
	New: func() any {
		return gzip.NewWriter(nil)
	},
}

type gzipConfig struct {
	minSize  int
	excluded map[string]struct{}
}

type GzipOption func(*gzipConfig)

// GzipMinSize sets the body size at which compression starts. Smaller
// bodies are sent as is.
func GzipMinSize(n int) GzipOption {
	return func(c *gzipConfig) { c.minSize = n }
}

// GzipExclude passes the given paths through untouched.
func GzipExclude(paths ...string) GzipOption {
	return func(c *gzipConfig) {
		for _, p := range paths {
			c.excluded[p] = struct{}{}
		}
	}
}

// Gzip compresses responses for clients that accept it. Upgrades, event
// streams and already encoded bodies are never compressed.
func Gzip(opts ...GzipOption) Middleware {
	cfg := gzipConfig{minSize: gzipDefaultMinSize, excluded: make(map[string]struct{})}
	for _, opt := range opts {
		opt(&cfg)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !acceptsGzip(r) || cfg.isExcluded(r.URL.Path) || r.Header.Get(xhttp.Upgrade) != "" {
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Add(xhttp.Vary, xhttp.AcceptEncoding)

			gw := &gzipResponseWriter{ResponseWriter: w, status: http.StatusOK, minSize: cfg.minSize}
			defer gw.Close() //nolint:errcheck // response is already committed

			next.ServeHTTP(gw, r)
		})
	}
}

func (c gzipConfig) isExcluded(path string) bool {
	_, ok := c.excluded[path]
	return ok
}

type gzipMode int

const (
	gzipPending gzipMode = iota
	gzipOn
	gzipOff
)

// gzipResponseWriter buffers the body until minSize bytes arrive, then
// commits to either compressed or plain output.
type gzipResponseWriter struct {
	http.ResponseWriter
	minSize int

	status      int
	wroteHeader bool
	mode        gzipMode
	buf         bytes.Buffer
	zw          *gzip.Writer
}

var (
	_ http.ResponseWriter = (*gzipResponseWriter)(nil)
	_ http.Flusher        = (*gzipResponseWriter)(nil)
	_ io.Closer           = (*gzipResponseWriter)(nil)
)

func (g *gzipResponseWriter) WriteHeader(code int) {
	if g.wroteHeader {
		return
	}
	g.status = code
	g.wroteHeader = true
	if !compressible(g.Header()) {
		g.commit(gzipOff)
	}
}

func (g *gzipResponseWriter) Write(b []byte) (int, error) {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}

	switch g.mode {
	case gzipOn:
		n, err := g.zw.Write(b)
		if err != nil {
			return n, fmt.Errorf("failed to write gzip: %w", err)
		}
		return n, nil
	case gzipOff:
		n, err := g.ResponseWriter.Write(b)
		if err != nil {
			return n, fmt.Errorf("failed to write response: %w", err)
		}
		return n, nil
	}

	g.buf.Write(b)
	if g.buf.Len() < g.minSize {
		return len(b), nil
	}
	if err := g.commit(gzipOn); err != nil {
		return 0, err
	}
	return len(b), nil
}

// commit writes the header for the chosen mode and drains the buffer.
func (g *gzipResponseWriter) commit(mode gzipMode) error {
	if g.mode != gzipPending {
		return nil
	}
	g.mode = mode

	if mode == gzipOn {
		g.Header().Set(xhttp.ContentEncoding, gzipEncoding)
		g.Header().Del(xhttp.ContentLength)
		g.ResponseWriter.WriteHeader(g.status)

		g.zw = gzipWriterPool.Get().(*gzip.Writer)
		g.zw.Reset(g.ResponseWriter)
		if _, err := g.zw.Write(g.buf.Bytes()); err != nil {
			return fmt.Errorf("failed to write to gzip writer: %w", err)
		}
	} else {
		g.ResponseWriter.WriteHeader(g.status)
		if g.buf.Len() > 0 {
			if _, err := g.ResponseWriter.Write(g.buf.Bytes()); err != nil {
				return fmt.Errorf("failed to write buffered response: %w", err)
			}
		}
	}
	g.buf.Reset()
	return nil
}

func (g *gzipResponseWriter) Close() error {
	if g.mode == gzipPending {
		return g.commit(gzipOff)
	}
	if g.zw == nil {
		return nil
	}

	err := g.zw.Close()
	gzipWriterPool.Put(g.zw)
	g.zw = nil
	if err != nil {
		return fmt.Errorf("failed to close gzip writer: %w", err)
	}
	return nil
}

// Flush commits a pending response uncompressed so flushed bytes reach the
// client immediately.
func (g *gzipResponseWriter) Flush() {
	if !g.wroteHeader {
		g.WriteHeader(http.StatusOK)
	}
	_ = g.commit(gzipOff)
	if g.zw != nil {
		_ = g.zw.Flush()
	}
	if flusher, ok := g.ResponseWriter.(http.Flusher); ok {
		flusher.Flush()
	}
}

func (g *gzipResponseWriter) Unwrap() http.ResponseWriter {
	return g.ResponseWriter
}

func acceptsGzip(r *http.Request) bool {
	for part := range strings.SplitSeq(r.Header.Get(xhttp.AcceptEncoding), ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if !strings.EqualFold(strings.TrimSpace(coding), gzipEncoding) {
			continue
		}
		return strings.ReplaceAll(params, " ", "") != "q=0"
	}
	return false
}

func compressible(h http.Header) bool {
	if h.Get(xhttp.ContentEncoding) != "" {
		return false
	}
	ct := h.Get(xhttp.ContentType)
	if ct == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return false
	}
	switch {
	case mediaType == "text/event-stream":
		return false
	case strings.HasPrefix(mediaType, "text/"),
		mediaType == "application/json",
		mediaType == "application/javascript",
		mediaType == "image/svg+xml":
		return true
	}
	return false
}
