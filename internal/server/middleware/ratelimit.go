package middleware

import (
	"net/http"

	"github.com/garrettladley/wext/internal/apperr"
	"github.com/garrettladley/wext/internal/storage"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

const reasonIP = "ip_rate_limit"

// RateLimit applies IP-based rate limiting.
func RateLimit(limiter storage.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := xslog.FromContext(r.Context())
			ip := xhttp.GetRequestIP(r)

			result, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				logger.ErrorContext(r.Context(), "rate limit check failed",
					xslog.ErrorGroup(err),
					xslog.IP(ip),
				)
				apperr.WriteError(w, apperr.ServiceUnavailable(apperr.CodeUnavailable, "rate limit check failed"))
				return
			}

			if !result.Allowed {
				logger.WarnContext(r.Context(), "rate limited", xslog.IP(ip))
				apperr.WriteError(w, apperr.TooManyRequests(apperr.CodeRateLimited, "too many requests", result.RetryAfter, reasonIP))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
