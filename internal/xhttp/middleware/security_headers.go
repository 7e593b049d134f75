package middleware

import (
	"net/http"

	"github.com/garrettladley/wext/internal/xhttp"
)

const contentSecurityPolicy = "default-src 'self'; connect-src 'self'; frame-ancestors 'none'"

func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set(xhttp.XContentTypeOpts, "nosniff")
		h.Set(xhttp.XFrameOpts, "DENY")
		h.Set(xhttp.XXSSProtection, "1; mode=block")
		h.Set(xhttp.ReferrerPolicy, "strict-origin-when-cross-origin")
		h.Set(xhttp.CSP, contentSecurityPolicy)
		next.ServeHTTP(w, r)
	})
}
