package storage

import (
	"context"
	"errors"
	"time"

	"github.com/garrettladley/wext/internal/panel"
	"github.com/google/uuid"
)

var ErrNotFound = errors.New("not found")

type RateLimitResult struct {
	Allowed    bool
	RetryAfter time.Duration
}

type RateLimiter interface {
	Allow(ctx context.Context, key string) (RateLimitResult, error)
}

// PanelStore keeps the panel state of each session. Entries expire after the
// ttl passed to PutPanel; every write renews it.
type PanelStore interface {
	// GetPanel returns ErrNotFound if the session has no state or it expired.
	GetPanel(ctx context.Context, sessionID string) (panel.State, error)

	PutPanel(ctx context.Context, sessionID string, state panel.State, ttl time.Duration) error

	// TouchPanel renews the ttl of stored state. Returns ErrNotFound if the
	// session has no state or it expired.
	TouchPanel(ctx context.Context, sessionID string, ttl time.Duration) error

	DeletePanel(ctx context.Context, sessionID string) error
}

type Backend interface {
	RateLimiter
	PanelStore

	Close() error

	Ping(ctx context.Context) error
}

// PanelEvent is one committed panel change.
type PanelEvent struct {
	SessionID string      `json:"session_id"`
	Seq       uint64      `json:"seq"`
	State     panel.State `json:"state"`
	At        time.Time   `json:"at"`
}

// PanelFeed fans panel changes out to every subscriber of a session.
type PanelFeed interface {
	Publish(ctx context.Context, e PanelEvent) error

	// Subscribe returns a channel of events for the session. The channel is
	// closed when ctx is done or the returned function is called.
	Subscribe(ctx context.Context, sessionID string) (<-chan PanelEvent, func(), error)
}

// Beacon is one status poll received at POST /.
type Beacon struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	City       string    `json:"city"`
	IP         string    `json:"ip"`
	SessionID  string    `json:"session_id,omitempty"`
	UserAgent  string    `json:"user_agent,omitempty"`
	ReceivedAt time.Time `json:"received_at"`
}

type BeaconStore interface {
	InsertBeacon(ctx context.Context, b Beacon) error

	// RecentBeacons returns at most limit beacons, newest first.
	RecentBeacons(ctx context.Context, limit int) ([]Beacon, error)

	// DeleteBeaconsBefore removes beacons received before the cutoff and
	// reports how many were removed.
	DeleteBeaconsBefore(ctx context.Context, before time.Time) (int64, error)
}
