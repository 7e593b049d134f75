package handler

import (
	"context"

	"github.com/garrettladley/wext/internal/apperr"
	"github.com/garrettladley/wext/internal/xcontext"
)

func sessionID(ctx context.Context) (string, error) {
	id, ok := xcontext.GetSessionID(ctx)
	if !ok {
		return "", apperr.BadRequest(apperr.CodeBadRequest, "missing session")
	}
	return id, nil
}
