package middleware

import (
	"net/http"

	"github.com/garrettladley/wext/internal/apperr"
	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xhttp"
)

// ShutdownContext turns away requests that arrive after draining began.
// Requests already in flight keep running and observe the shutdown through
// xcontext.IsShutdownInProgress once their context is cancelled.
func ShutdownContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if xcontext.IsShutdownInProgress(r.Context()) {
			w.Header().Set(xhttp.Connection, "close")
			apperr.WriteError(w, apperr.ServiceUnavailable(apperr.CodeShuttingDown, "server is shutting down"))
			return
		}
		next.ServeHTTP(w, r)
	})
}
