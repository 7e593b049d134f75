package beacon

import (
	"context"
	"time"

	"github.com/garrettladley/wext/internal/storage"
)

const (
	DefaultLimit = 50
	MaxLimit     = 500

	maxFieldLen = 256
)

// Input is the status payload posted by the poller.
type Input struct {
	Name string `json:"name"`
	City string `json:"city"`
}

func (in Input) Validate() map[string]string {
	errs := map[string]string{}
	if in.Name == "" {
		errs["name"] = "is required"
	}
	if len(in.Name) > maxFieldLen {
		errs["name"] = "is too long"
	}
	if len(in.City) > maxFieldLen {
		errs["city"] = "is too long"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Meta is what the server knows about the sender.
type Meta struct {
	IP        string
	SessionID string
	UserAgent string
}

type Ack struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	ReceivedAt time.Time `json:"received_at"`
}

type Service interface {
	// Record validates and stores one beacon.
	Record(ctx context.Context, in Input, meta Meta) (storage.Beacon, error)

	// Recent returns the newest beacons; limit is clamped to [1, MaxLimit].
	Recent(ctx context.Context, limit int) ([]storage.Beacon, error)

	// Prune removes beacons received before the cutoff.
	Prune(ctx context.Context, before time.Time) (int64, error)
}
