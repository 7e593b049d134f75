package storage

import (
	"context"
	"sync"
)

var _ PanelFeed = (*MemoryPanelFeed)(nil)

// MemoryPanelFeed delivers events within one process. Each subscriber holds
// at most one pending event; a newer event replaces an unread one, since
// every event carries the full panel state.
type MemoryPanelFeed struct {
	mu   sync.Mutex
	subs map[string]map[*memorySub]struct{}
}

type memorySub struct {
	ch     chan PanelEvent
	closed bool
}

func NewMemoryPanelFeed() *MemoryPanelFeed {
	return &MemoryPanelFeed{subs: make(map[string]map[*memorySub]struct{})}
}

func (f *MemoryPanelFeed) Publish(_ context.Context, e PanelEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs[e.SessionID] {
		select {
		case sub.ch <- e:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- e
		}
	}
	return nil
}

func (f *MemoryPanelFeed) Subscribe(ctx context.Context, sessionID string) (<-chan PanelEvent, func(), error) {
	sub := &memorySub{ch: make(chan PanelEvent, 1)}

	f.mu.Lock()
	if f.subs[sessionID] == nil {
		f.subs[sessionID] = make(map[*memorySub]struct{})
	}
	f.subs[sessionID][sub] = struct{}{}
	f.mu.Unlock()

	unsubscribe := func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if sub.closed {
			return
		}
		sub.closed = true
		delete(f.subs[sessionID], sub)
		if len(f.subs[sessionID]) == 0 {
			delete(f.subs, sessionID)
		}
		close(sub.ch)
	}

	stop := context.AfterFunc(ctx, unsubscribe)

	return sub.ch, func() {
		stop()
		unsubscribe()
	}, nil
}
