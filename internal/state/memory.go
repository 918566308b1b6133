package state

import (
	"context"
	"sync"
)

// MemoryStore provides an in-memory implementation of Store for tests and
// single-shot tooling.
type MemoryStore struct {
	prMap    map[string]string
	statsMap map[string]string
	mu       sync.RWMutex
}

// NewMemoryStore creates a new in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		prMap:    make(map[string]string),
		statsMap: make(map[string]string),
	}
}

// PRMessage returns the tracked message ID for a PR key.
func (s *MemoryStore) PRMessage(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.prMap[key]
	return id, ok
}

// SavePRMessage upserts a PR key.
func (s *MemoryStore) SavePRMessage(_ context.Context, key, messageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prMap[key] = messageID
	return nil
}

// RemovePRMessage drops a PR key.
func (s *MemoryStore) RemovePRMessage(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.prMap, key)
	return nil
}

// PRMessages returns a copy of the PR map.
func (s *MemoryStore) PRMessages(_ context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.prMap))
	for k, v := range s.prMap {
		out[k] = v
	}
	return out
}

// ReplacePRMessages overwrites the PR map.
func (s *MemoryStore) ReplacePRMessages(_ context.Context, m map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prMap = make(map[string]string, len(m))
	for k, v := range m {
		s.prMap[k] = v
	}
	return nil
}

// StatsMessage returns the tracked message ID for a stats key.
func (s *MemoryStore) StatsMessage(_ context.Context, key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.statsMap[key]
	return id, ok
}

// StatsMessages returns a copy of the stats map.
func (s *MemoryStore) StatsMessages(_ context.Context) map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]string, len(s.statsMap))
	for k, v := range s.statsMap {
		out[k] = v
	}
	return out
}

// SaveStatsMessages merges entries into the stats map.
func (s *MemoryStore) SaveStatsMessages(_ context.Context, m map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for k, v := range m {
		s.statsMap[k] = v
	}
	return nil
}

// Close closes the store (no-op for memory store).
func (*MemoryStore) Close() error {
	return nil
}
