package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/garrettladley/wext/internal/apperr"
	domain "github.com/garrettladley/wext/internal/panel"
	panelsvc "github.com/garrettladley/wext/internal/service/panel"
	"github.com/garrettladley/wext/internal/xhttp"
	"github.com/garrettladley/wext/internal/xslog"
)

type Panel struct {
	service panelsvc.Service
}

func NewPanel(service panelsvc.Service) *Panel {
	return &Panel{service: service}
}

// HandleGet handles GET /api/panel.
func (h *Panel) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(ctx)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	snap, err := h.service.Get(ctx, id)
	if err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to load panel", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to load panel", err))
		return
	}

	xhttp.WriteOK(w, snap)
}

// HandleSelect handles POST /api/panel/toolbar/{control}.
func (h *Panel) HandleSelect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	id, err := sessionID(ctx)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	control := r.PathValue("control")
	snap, err := h.service.Select(ctx, id, control)
	if errors.Is(err, domain.ErrUnknownControl) {
		logger.DebugContext(ctx, "unknown toolbar control", xslog.Control(control))
		apperr.WriteError(w, apperr.NotFound(apperr.CodeUnknownControl, "unknown toolbar control "+strconv.Quote(control)))
		return
	}
	if err != nil {
		logger.ErrorContext(ctx, "failed to select view", xslog.Control(control), xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to select view", err))
		return
	}

	xhttp.WriteOK(w, snap)
}

type toggleRequest struct {
	Checked *bool `json:"checked"`
}

// HandleToggle handles POST /api/panel/checkbox/{id}. Without a checked value
// the block flips; with one it follows the value.
func (h *Panel) HandleToggle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := xslog.FromContext(ctx)

	id, err := sessionID(ctx)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	checked, err := parseChecked(r)
	if err != nil {
		apperr.WriteError(w, apperr.BadRequest(apperr.CodeBadRequest, err.Error()))
		return
	}

	checkbox := r.PathValue("id")
	snap, err := h.service.Toggle(ctx, id, checkbox, checked)
	if err != nil {
		logger.ErrorContext(ctx, "failed to toggle checkbox", xslog.Checkbox(checkbox), xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to toggle checkbox", err))
		return
	}

	xhttp.WriteOK(w, snap)
}

// HandleReset handles POST /api/panel/reset.
func (h *Panel) HandleReset(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := sessionID(ctx)
	if err != nil {
		apperr.WriteError(w, err)
		return
	}

	snap, err := h.service.Reset(ctx, id)
	if err != nil {
		xslog.FromContext(ctx).ErrorContext(ctx, "failed to reset panel", xslog.Error(err))
		apperr.WriteError(w, apperr.Internal(apperr.CodeInternal, "failed to reset panel", err))
		return
	}

	xhttp.WriteOK(w, snap)
}

// parseChecked reads an optional checked value from the query, a form body or
// a JSON body, in that order.
func parseChecked(r *http.Request) (*bool, error) {
	if v := r.URL.Query().Get("checked"); v != "" {
		return parseBool(v)
	}

	if xhttp.IsForm(r) {
		if err := r.ParseForm(); err != nil {
			return nil, errors.New("invalid form body")
		}
		if v := r.PostForm.Get("checked"); v != "" {
			return parseBool(v)
		}
		return nil, nil
	}

	var req toggleRequest
	if err := xhttp.DecodeJSON(r, &req); err != nil {
		return nil, errors.New("invalid JSON body")
	}
	return req.Checked, nil
}

func parseBool(v string) (*bool, error) {
	if v == "on" {
		b := true
		return &b, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return nil, errors.New("checked must be a boolean")
	}
	return &b, nil
}
