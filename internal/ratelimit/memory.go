package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store. It suits single-instance
// deployments and tests; multi-instance deployments use RedisStore.
type MemoryStore struct {
	mu        sync.Mutex
	hits      map[string][]time.Time
	lastSweep time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{hits: make(map[string][]time.Time)}
}

// Hit implements Store.
func (s *MemoryStore) Hit(_ context.Context, key string, now time.Time, window time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := now.Add(-window)
	if now.Sub(s.lastSweep) > window {
		s.sweep(cutoff)
		s.lastSweep = now
	}

	hits := prune(s.hits[key], cutoff)
	hits = append(hits, now)
	s.hits[key] = hits
	return int64(len(hits)), nil
}

// sweep drops keys with no hits after cutoff.
func (s *MemoryStore) sweep(cutoff time.Time) {
	for key, hits := range s.hits {
		if hits = prune(hits, cutoff); len(hits) == 0 {
			delete(s.hits, key)
		} else {
			s.hits[key] = hits
		}
	}
}

// prune keeps hits strictly after cutoff. hits is in ascending order.
func prune(hits []time.Time, cutoff time.Time) []time.Time {
	i := 0
	for i < len(hits) && !hits[i].After(cutoff) {
		i++
	}
	return hits[i:]
}
