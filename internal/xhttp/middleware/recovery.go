package middleware

import (
	"errors"
	"net/http"

	"github.com/garrettladley/wext/internal/apperr"
	"github.com/garrettladley/wext/internal/xslog"
)

func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
				panic(rec)
			}
			xslog.FromContext(r.Context()).ErrorContext(
				r.Context(),
				"panic recovered",
				xslog.RequestGroup(r),
				xslog.ErrorGroupWithStack(rec),
			)
			apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "an unexpected error occurred", nil))
		}()
		next.ServeHTTP(w, r)
	})
}
