// Package repository provides rate window stores backed by process memory and Redis.
package repository

import (
	"context"
	"sync"
	"time"

	ratelimitDomain "github.com/healo/piiguard/internal/ratelimit/domain"
)

// MemoryStore keeps rate windows in a mutex-guarded map. It is only correct for a
// single process; use RedisStore when several instances share one ceiling.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*ratelimitDomain.Window
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{windows: make(map[string]*ratelimitDomain.Window)}
}

// Incr counts one request under the store lock and returns a copy of the window.
func (s *MemoryStore) Incr(
	_ context.Context,
	key string,
	window time.Duration,
	now time.Time,
) (*ratelimitDomain.Window, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.windows[key]
	if !ok || now.Sub(w.WindowStart) > window {
		w = &ratelimitDomain.Window{Key: key, WindowStart: now}
		s.windows[key] = w
	}
	w.Count++
	w.LastSeen = now

	out := *w
	return &out, nil
}

// Sweep drops windows whose last request is older than cutoff.
func (s *MemoryStore) Sweep(_ context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, w := range s.windows {
		if w.LastSeen.Before(cutoff) {
			delete(s.windows, key)
			removed++
		}
	}
	return removed, nil
}

// Len returns the number of tracked windows.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.windows)
}
