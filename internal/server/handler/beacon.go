package handler

import (
	"net/http"
	"strconv"

	"github.com/garrettladley/wext/internal/apperr"
	"github.com/garrettladley/wext/internal/service/beacon"
	"github.com/garrettladley/wext/internal/xcontext"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

type Beacon struct {
	service beacon.Service
}

func NewBeacon(service beacon.Service) *Beacon {
	return &Beacon{service: service}
}

// HandleIntake handles POST / from the status poller. The body is form
// encoded, or JSON when the content type says so.
func (h *Beacon) HandleIntake(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	var in beacon.Input
	if xhttp.IsForm(r) {
		if err := r.ParseForm(); err != nil {
			apperr.WriteError(w, apperr.BadRequest(apperr.CodeBadRequest, "invalid form body"))
			return
		}
		in.Name = r.PostForm.Get("name")
		in.City = r.PostForm.Get("city")
	} else if err := xhttp.DecodeJSON(r, &in); err != nil {
		apperr.WriteError(w, apperr.BadRequest(apperr.CodeBadRequest, "invalid JSON body"))
		return
	}

	sid, _ := xcontext.GetSessionID(ctx)
	b, err := h.service.Record(ctx, in, beacon.Meta{
		IP:        xhttp.GetRequestIP(r),
		SessionID: sid,
		UserAgent: r.UserAgent(),
	})
	if err != nil {
		if appErr := apperr.AsError(err); appErr != nil {
			apperr.WriteError(w, appErr)
			return
		}
		logger.ErrorContext(ctx, "failed to record beacon", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to record beacon", err))
		return
	}

	xhttp.WriteOK(w, beacon.Ack{
		ID:         b.ID.String(),
		Status:     "ok",
		ReceivedAt: b.ReceivedAt,
	})
}

type beaconList struct {
	Beacons any `json:"beacons"`
	Count   int `json:"count"`
}

// HandleList handles GET /api/beacons?limit=N.
func (h *Beacon) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var limit int
	if s := r.URL.Query().Get("limit"); s != "" {
		l, err := strconv.Atoi(s)
		if err != nil || l <= 0 {
			apperr.WriteError(w, apperr.BadRequest(apperr.CodeBadRequest, "invalid limit parameter (expected positive integer)"))
			return
		}
		limit = l
	}

	beacons, err := h.service.Recent(ctx, limit)
	if err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to list beacons", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to list beacons", err))
		return
	}

	xhttp.WriteOK(w, beaconList{Beacons: beacons, Count: len(beacons)})
}
