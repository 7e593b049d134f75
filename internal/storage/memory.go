package storage

import (
	"context"
	"sync"
	"time"

	"github.com/garrettladley/wext/internal/panel"
	"golang.org/x/time/rate"
)

var _ Backend = (*MemoryBackend)(nil)

const (
	memoryCleanupInterval = time.Minute
	limiterIdleTimeout    = 10 * time.Minute
)

type panelWithExpiry struct {
	state     panel.State
	expiresAt time.Time
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type MemoryBackend struct {
	// Rate limiting
	limiters  map[string]*limiterEntry
	limiterMu sync.Mutex
	rateLimit rate.Limit
	rateBurst int

	// Panel state
	panels   map[string]panelWithExpiry
	panelsMu sync.RWMutex

	now func() time.Time

	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryBackend(ratePerSec float64, burst int) *MemoryBackend {
	m := &MemoryBackend{
		limiters:  make(map[string]*limiterEntry),
		rateLimit: rate.Limit(ratePerSec),
		rateBurst: burst,
		panels:    make(map[string]panelWithExpiry),
		now:       time.Now,
		done:      make(chan struct{}),
	}

	go m.cleanupLoop()

	return m
}

func (m *MemoryBackend) Allow(_ context.Context, key string) (RateLimitResult, error) {
	now := m.now()

	m.limiterMu.Lock()
	e, ok := m.limiters[key]
	if !ok {
		e = &limiterEntry{limiter: rate.NewLimiter(m.rateLimit, m.rateBurst)}
		m.limiters[key] = e
	}
	e.lastSeen = now
	m.limiterMu.Unlock()

	r := e.limiter.ReserveN(now, 1)
	if !r.OK() {
		return RateLimitResult{Allowed: false, RetryAfter: time.Second}, nil
	}
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return RateLimitResult{Allowed: false, RetryAfter: delay}, nil
	}
	return RateLimitResult{Allowed: true}, nil
}

func (m *MemoryBackend) GetPanel(_ context.Context, sessionID string) (panel.State, error) {
	m.panelsMu.RLock()
	p, ok := m.panels[sessionID]
	m.panelsMu.RUnlock()

	if !ok || !m.now().Before(p.expiresAt) {
		return panel.State{}, ErrNotFound
	}
	return p.state, nil
}

func (m *MemoryBackend) PutPanel(_ context.Context, sessionID string, state panel.State, ttl time.Duration) error {
	m.panelsMu.Lock()
	m.panels[sessionID] = panelWithExpiry{state: state, expiresAt: m.now().Add(ttl)}
	m.panelsMu.Unlock()
	return nil
}

func (m *MemoryBackend) TouchPanel(_ context.Context, sessionID string, ttl time.Duration) error {
	m.panelsMu.Lock()
	defer m.panelsMu.Unlock()

	p, ok := m.panels[sessionID]
	now := m.now()
	if !ok || !now.Before(p.expiresAt) {
		return ErrNotFound
	}
	p.expiresAt = now.Add(ttl)
	m.panels[sessionID] = p
	return nil
}

func (m *MemoryBackend) DeletePanel(_ context.Context, sessionID string) error {
	m.panelsMu.Lock()
	delete(m.panels, sessionID)
	m.panelsMu.Unlock()
	return nil
}

func (m *MemoryBackend) Close() error {
	m.closeOnce.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryBackend) Ping(_ context.Context) error {
	return nil
}

func (m *MemoryBackend) cleanupLoop() {
	ticker := time.NewTicker(memoryCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.done:
			return
		}
	}
}

func (m *MemoryBackend) sweep() {
	now := m.now()

	m.panelsMu.Lock()
	for id, p := range m.panels {
		if !now.Before(p.expiresAt) {
			delete(m.panels, id)
		}
	}
	m.panelsMu.Unlock()

	m.limiterMu.Lock()
	for key, e := range m.limiters {
		if now.Sub(e.lastSeen) > limiterIdleTimeout {
			delete(m.limiters, key)
		}
	}
	m.limiterMu.Unlock()
}
