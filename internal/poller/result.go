package poller

import (
	"fmt"
	"net/http"
	"time"
)

// Result is the outcome of one tick.
type Result struct {
	Seq       uint64
	URL       string
	StartedAt time.Time
	Latency   time.Duration
	Status    int
	Body      string
	Err       error
	// Skipped marks a tick that fired while the previous request was still
	// outstanding. No request was sent.
	Skipped bool
}

func (r Result) OK() bool {
	return !r.Skipped && r.Err == nil
}

type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status: %d %s", e.Code, http.StatusText(e.Code))
}

// Observer receives every Result. Observers run on the goroutine that
// produced the result and must not block.
type Observer func(Result)
