package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/garrettladley/wext/internal/apperr"
	"github.com/garrettladley/wext/internal/version"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

const healthTimeout = 2 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

type Health struct {
	pinger Pinger
}

func NewHealth(pinger Pinger) *Health {
	return &Health{pinger: pinger}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// HandleHealth handles GET /health.
func (h *Health) HandleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		xslog.FromContext(ctx).WarnContext(ctx, "health check failed", xslog.Error(err))
		apperr.WriteError(w, apperr.ServiceUnavailable(apperr.CodeUnavailable, "storage unavailable"))
		return
	}

	xhttp.WriteOK(w, healthResponse{Status: "ok", Version: version.Get()})
}
