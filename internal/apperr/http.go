package apperr

import (
	"net/http"

	"github.com/garrettladley/wext/internal/xhttp"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

// WriteError renders err as a JSON body. Anything that is not an *Error
// becomes a 500 without leaking the cause.
func WriteError(w http.ResponseWriter, err error) {
	appErr := AsError(err)
	if appErr == nil {
		appErr = Internal(CodeInternal, "an unexpected error occurred", err)
	}

	if appErr.RateLimited() {
		xhttp.SetHeaderRetryAfter(w, appErr.RetryAfter)
		if appErr.Reason != "" {
			w.Header().Set(xhttp.XRateLimitReason, appErr.Reason)
		}
	}

	xhttp.WriteJSON(w, appErr.StatusCode, errorResponse{
		Error:   appErr.Code,
		Message: appErr.Message,
		Field:   appErr.Field,
	})
}
