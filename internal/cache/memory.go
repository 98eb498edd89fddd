package cache

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a cached view may be served at all before
	// the entry expires outright.
	DefaultTTL = 5 * time.Minute

	cleanupInterval = 30 * time.Second
)

type memoryEntry struct {
	view      *CartView
	expiresAt time.Time
}

// MemoryStore is an in-process CartCache for single-instance deployments
// and tests. Expired entries are swept by a background goroutine.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration

	stopCleanup chan struct{}
	wg          sync.WaitGroup
}

func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		entries:     make(map[string]memoryEntry),
		ttl:         DefaultTTL,
		stopCleanup: make(chan struct{}),
	}
	s.wg.Add(1)
	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) Get(_ context.Context, userID string) (*CartView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[userID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, ErrCacheMiss
	}
	return e.view.Clone(), nil
}

func (s *MemoryStore) Set(_ context.Context, userID string, view *CartView) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[userID] = memoryEntry{
		view:      view.Clone(),
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, userID)
	return nil
}

func (s *MemoryStore) Close() {
	close(s.stopCleanup)
	s.wg.Wait()
}

func (s *MemoryStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep()
		case <-s.stopCleanup:
			return
		}
	}
}

func (s *MemoryStore) sweep() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, k)
		}
	}
}
