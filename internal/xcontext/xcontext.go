package xcontext

import (
	"context"
	"errors"
)

// ErrShutdown is the cancellation cause of every request context once the
// server starts draining.
var ErrShutdown = errors.New("server shutting down")

type (
	requestIDKey struct{}
	sessionIDKey struct{}
)

func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(requestIDKey{}).(string)
	return requestID, ok
}

// SetSessionID stores the panel session the request acts on.
func SetSessionID(ctx context.Context, sessionID string) context.Context {
	return context.WithValue(ctx, sessionIDKey{}, sessionID)
}

func GetSessionID(ctx context.Context) (string, bool) {
	sessionID, ok := ctx.Value(sessionIDKey{}).(string)
	return sessionID, ok && sessionID != ""
}

// IsShutdownInProgress reports whether ctx was cancelled because the server
// is draining rather than because the client went away.
func IsShutdownInProgress(ctx context.Context) bool {
	return errors.Is(context.Cause(ctx), ErrShutdown)
}
