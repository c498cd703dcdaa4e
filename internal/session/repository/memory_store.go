// Package repository provides admin session metadata stores backed by process memory and Redis.
package repository

import (
	"context"
	"sync"
	"time"

	sessionDomain "github.com/healo/piiguard/internal/session/domain"
)

type memoryEntry struct {
	meta      sessionDomain.Meta
	expiresAt time.Time
}

// MemoryStore keeps session metadata in a mutex-guarded map. Metadata is lost on
// restart; sessions then fall back to the provider's authentication time.
type MemoryStore struct {
	mu        sync.Mutex
	entries   map[string]memoryEntry
	nextPurge int
	now       func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries:   make(map[string]memoryEntry),
		nextPurge: 64,
		now:       time.Now,
	}
}

// Get returns a copy of the metadata stored under key, or nil when there is none.
func (s *MemoryStore) Get(_ context.Context, key string) (*sessionDomain.Meta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(entry.expiresAt) {
		delete(s.entries, key)
		return nil, nil
	}

	meta := entry.meta
	return &meta, nil
}

// Put stores meta under key for ttl. Expired entries are purged once the map doubles.
func (s *MemoryStore) Put(_ context.Context, key string, meta *sessionDomain.Meta, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.entries[key] = memoryEntry{meta: *meta, expiresAt: now.Add(ttl)}

	if len(s.entries) >= s.nextPurge {
		for k, e := range s.entries {
			if !now.Before(e.expiresAt) {
				delete(s.entries, k)
			}
		}
		s.nextPurge = max(64, 2*len(s.entries))
	}
	return nil
}

// Len returns the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
