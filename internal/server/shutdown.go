package server

import (
	"context"
	"sync"
	"time"

	"github.com/garrettladley/wext/internal/xcontext"
)

// ShutdownCoordinator manages graceful shutdown of the HTTP server,
// particularly for long-lived panel streams.
type ShutdownCoordinator struct {
	baseCtx     context.Context
	cancel      context.CancelCauseFunc
	gracePeriod time.Duration
	streams     sync.WaitGroup
}

// NewShutdownCoordinator creates a coordinator whose grace period bounds how
// long open streams get to say goodbye before server.Shutdown is called.
func NewShutdownCoordinator(gracePeriod time.Duration) *ShutdownCoordinator {
	ctx, cancel := context.WithCancelCause(context.Background())
	return &ShutdownCoordinator{
		baseCtx:     ctx,
		cancel:      cancel,
		gracePeriod: gracePeriod,
	}
}

// BaseContext is the parent of every request context. It is cancelled with
// xcontext.ErrShutdown when shutdown starts.
func (sc *ShutdownCoordinator) BaseContext() context.Context {
	return sc.baseCtx
}

// Track registers a long-lived stream. The returned func must be called when
// the stream ends.
func (sc *ShutdownCoordinator) Track() func() {
	sc.streams.Add(1)
	var once sync.Once
	return func() { once.Do(sc.streams.Done) }
}

// InitiateShutdown cancels the base context and waits until every tracked
// stream has ended or the grace period elapses, whichever comes first.
func (sc *ShutdownCoordinator) InitiateShutdown() {
	sc.cancel(xcontext.ErrShutdown)

	done := make(chan struct{})
	go func() {
		sc.streams.Wait()
		close(done)
	}()

	timer := time.NewTimer(sc.gracePeriod)
	defer timer.Stop()

	select {
	case <-done:
	case <-timer.C:
	}
}
