package storage

import (
	"context"
	"sync"
	"time"
)

var _ BeaconStore = (*MemoryBeaconStore)(nil)

const DefaultBeaconCapacity = 1024

// MemoryBeaconStore keeps the most recent beacons in a ring. Used when no
// DATABASE_URL is configured.
type MemoryBeaconStore struct {
	mu   sync.RWMutex
	ring []Beacon
	next int
	full bool
}

func NewMemoryBeaconStore(capacity int) *MemoryBeaconStore {
	if capacity <= 0 {
		capacity = DefaultBeaconCapacity
	}
	return &MemoryBeaconStore{ring: make([]Beacon, capacity)}
}

func (s *MemoryBeaconStore) InsertBeacon(_ context.Context, b Beacon) error {
	s.mu.Lock()
	s.ring[s.next] = b
	s.next = (s.next + 1) % len(s.ring)
	if s.next == 0 {
		s.full = true
	}
	s.mu.Unlock()
	return nil
}

func (s *MemoryBeaconStore) RecentBeacons(_ context.Context, limit int) ([]Beacon, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := s.lenLocked()
	if limit <= 0 || limit > n {
		limit = n
	}

	out := make([]Beacon, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + len(s.ring)) % len(s.ring)
		out = append(out, s.ring[idx])
	}
	return out, nil
}

func (s *MemoryBeaconStore) DeleteBeaconsBefore(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.lenLocked()
	kept := make([]Beacon, 0, n)
	for i := n; i >= 1; i-- {
		b := s.ring[(s.next-i+len(s.ring))%len(s.ring)]
		if !b.ReceivedAt.Before(before) {
			kept = append(kept, b)
		}
	}

	removed := int64(n - len(kept))
	if removed == 0 {
		return 0, nil
	}

	clear(s.ring)
	copy(s.ring, kept)
	s.next = len(kept) % len(s.ring)
	s.full = len(kept) == len(s.ring)
	return removed, nil
}

func (s *MemoryBeaconStore) lenLocked() int {
	if s.full {
		return len(s.ring)
	}
	return s.next
}
