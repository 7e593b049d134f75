package server

import (
	"context"
	"testing"
	"time"

	"github.com/garrettladley/wext/internal/xcontext"
)

func TestShutdownCoordinatorCancelsWithCause(t *testing.T) {
	t.Parallel()

	sc := NewShutdownCoordinator(time.Second)
	child, cancel := context.WithCancel(sc.BaseContext())
	defer cancel()

	sc.InitiateShutdown()

	if !xcontext.IsShutdownInProgress(child) {
		t.Error("request context not marked as shutting down")
	}
}

func TestShutdownCoordinatorWaitsForStreams(t *testing.T) {
	t.Parallel()

	sc := NewShutdownCoordinator(5 * time.Second)
	done := sc.Track()

	go func() {
		<-sc.BaseContext().Done()
		time.Sleep(20 * time.Millisecond)
		done()
		done()
	}()

	start := time.Now()
	sc.InitiateShutdown()
	if elapsed := time.Since(start); elapsed >= 5*time.Second {
		t.Errorf("InitiateShutdown waited the full grace period (%v)", elapsed)
	}
}

func TestShutdownCoordinatorGracePeriodBounds(t *testing.T) {
	t.Parallel()

	sc := NewShutdownCoordinator(30 * time.Millisecond)
	_ = sc.Track()

	start := time.Now()
	sc.InitiateShutdown()
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("InitiateShutdown returned after %v, before grace period", elapsed)
	}
}
