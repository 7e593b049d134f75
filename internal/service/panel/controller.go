package panel

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	domain "github.com/garrettladley/wext/internal/panel"
	"github.com/garrettladley/wext/internal/storage"
	"github.com/garrettladley/wext/internal/xslog"
)

const (
	DefaultTTL  = 24 * time.Hour
	lockStripes = 64
)

var _ Service = (*Controller)(nil)

// Controller is the single owner of panel state in this process. Mutations
// of one session are serialized, persisted, then published.
type Controller struct {
	store storage.PanelStore
	feed  storage.PanelFeed
	ttl   time.Duration
	now   func() time.Time

	seq   atomic.Uint64
	locks [lockStripes]sync.Mutex
}

func NewController(store storage.PanelStore, feed storage.PanelFeed, ttl time.Duration) *Controller {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	c := &Controller{
		store: store,
		feed:  feed,
		ttl:   ttl,
		now:   time.Now,
	}
	// seeded from the clock so sequence numbers keep growing across restarts
	c.seq.Store(uint64(c.now().UnixMicro()))
	return c
}

func (c *Controller) lock(sessionID string) *sync.Mutex {
	return &c.locks[xxhash.Sum64String(sessionID)%lockStripes]
}

func (c *Controller) load(ctx context.Context, sessionID string) (domain.State, error) {
	state, err := c.store.GetPanel(ctx, sessionID)
	if errors.Is(err, storage.ErrNotFound) {
		return domain.Initial(), nil
	}
	if err != nil {
		return domain.State{}, fmt.Errorf("failed to load panel: %w", err)
	}
	return state, nil
}

func (c *Controller) snapshot(sessionID string, seq uint64, state domain.State) Snapshot {
	return Snapshot{
		SessionID: sessionID,
		Seq:       seq,
		State:     state,
		Render:    state.Render(),
	}
}

// Get reads under the session lock so the returned seq is never ahead of
// the returned state. Reading renews the session ttl.
func (c *Controller) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	mu := c.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	state, err := c.load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	c.touch(ctx, sessionID)
	return c.snapshot(sessionID, c.seq.Load(), state), nil
}

func (c *Controller) Select(ctx context.Context, sessionID string, control string) (Snapshot, error) {
	ctrl, err := domain.ParseControl(control)
	if err != nil {
		return Snapshot{}, err
	}
	return c.mutate(ctx, sessionID, func(s domain.State) (domain.State, error) {
		return s.Select(ctrl)
	})
}

func (c *Controller) Toggle(ctx context.Context, sessionID string, checkbox string, checked *bool) (Snapshot, error) {
	return c.mutate(ctx, sessionID, func(s domain.State) (domain.State, error) {
		var (
			next domain.State
			ok   bool
		)
		if checked == nil {
			next, ok = s.ToggleCheckbox(checkbox)
		} else {
			next, ok = s.SyncCheckbox(checkbox, *checked)
		}
		if !ok {
			xslog.FromContext(ctx).DebugContext(ctx, "ignoring unknown checkbox", xslog.Checkbox(checkbox))
		}
		return next, nil
	})
}

func (c *Controller) Reset(ctx context.Context, sessionID string) (Snapshot, error) {
	mu := c.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	if err := c.store.DeletePanel(ctx, sessionID); err != nil {
		return Snapshot{}, fmt.Errorf("failed to reset panel: %w", err)
	}
	return c.commitPublished(ctx, sessionID, domain.Initial()), nil
}

// mutate applies fn under the session lock. A transition that changes nothing
// is neither stored nor published; it only renews the session ttl.
func (c *Controller) mutate(ctx context.Context, sessionID string, fn func(domain.State) (domain.State, error)) (Snapshot, error) {
	mu := c.lock(sessionID)
	mu.Lock()
	defer mu.Unlock()

	prev, err := c.load(ctx, sessionID)
	if err != nil {
		return Snapshot{}, err
	}

	next, err := fn(prev)
	if err != nil {
		return c.snapshot(sessionID, c.seq.Load(), prev), err
	}
	if next.Equal(prev) {
		c.touch(ctx, sessionID)
		return c.snapshot(sessionID, c.seq.Load(), prev), nil
	}

	if err := c.store.PutPanel(ctx, sessionID, next, c.ttl); err != nil {
		return Snapshot{}, fmt.Errorf("failed to store panel: %w", err)
	}
	return c.commitPublished(ctx, sessionID, next), nil
}

// touch renews the ttl of stored state. Sessions without stored state have
// nothing to renew; they read as Initial.
func (c *Controller) touch(ctx context.Context, sessionID string) {
	err := c.store.TouchPanel(ctx, sessionID, c.ttl)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		xslog.FromContext(ctx).WarnContext(ctx, "failed to renew panel ttl", xslog.SessionID(sessionID), xslog.Error(err))
	}
}

// commitPublished stamps a sequence number and publishes the change. The
// state is already stored, so a failed publish is logged and not returned.
func (c *Controller) commitPublished(ctx context.Context, sessionID string, state domain.State) Snapshot {
	seq := c.seq.Add(1)
	logger := xslog.FromContext(ctx)

	err := c.feed.Publish(ctx, storage.PanelEvent{
		SessionID: sessionID,
		Seq:       seq,
		State:     state,
		At:        c.now(),
	})
	if err != nil {
		logger.WarnContext(ctx, "failed to publish panel change", xslog.SessionID(sessionID), xslog.Error(err))
	}

	logger.DebugContext(ctx, "panel updated",
		xslog.SessionGroup(sessionID, string(state.View)),
		xslog.Seq(seq),
	)
	return c.snapshot(sessionID, seq, state)
}

func (c *Controller) Subscribe(ctx context.Context, sessionID string) (<-chan Snapshot, func(), error) {
	events, unsubscribe, err := c.feed.Subscribe(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to subscribe to panel: %w", err)
	}

	out := make(chan Snapshot)
	go func() {
		defer close(out)
		for e := range events {
			select {
			case out <- c.snapshot(e.SessionID, e.Seq, e.State):
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, unsubscribe, nil
}
