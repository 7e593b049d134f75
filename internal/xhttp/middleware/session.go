package middleware

import (
	"net/http"

	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/google/uuid"
)

const sessionCookieMaxAge = 30 * 24 * 60 * 60

// Session resolves the panel session from the X-Wext-Session header or the
// wext_session cookie. Requests carrying neither get a fresh id, which is
// handed back in both the header and the cookie.
func Session(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sessionFromRequest(r)
		if id == "" {
			id = uuid.NewString()
			http.SetCookie(w, &http.Cookie{
				Name:     xhttp.SessionCookie,
				Value:    id,
				Path:     "/",
				MaxAge:   sessionCookieMaxAge,
				HttpOnly: true,
				SameSite: http.SameSiteLaxMode,
			})
		}
		w.Header().Set(xhttp.XSessionID, id)

		ctx := xcontext.SetSessionID(r.Context(), id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFromRequest(r *http.Request) string {
	if id := xhttp.GetRequestHeaderSessionID(r); validSessionID(id) {
		return id
	}
	if c, err := r.Cookie(xhttp.SessionCookie); err == nil && validSessionID(c.Value) {
		return c.Value
	}
	return ""
}

// session ids become storage keys, so only uuids are accepted.
func validSessionID(id string) bool {
	if id == "" {
		return false
	}
	_, err := uuid.Parse(id)
	return err == nil
}
