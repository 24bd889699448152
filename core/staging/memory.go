package staging

import (
	"context"
	"sync"
)

// memoryStore is the in-process Store for datasets whose id space fits in
// memory. It keeps insertion order so samples stay deterministic.
type memoryStore struct {
	mu      sync.RWMutex
	entries map[string]*Entry
	order   []string
}

// NewMemory creates an empty in-memory staging store.
func NewMemory() Store {
	return &memoryStore{
		entries: make(map[string]*Entry),
	}
}

func (s *memoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
	s.order = nil
	return nil
}

func (s *memoryStore) UpsertSourceBatch(ctx context.Context, pairs []Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pairs {
		if e, ok := s.entries[p.ID]; ok {
			e.SourceDigest = p.Digest
			continue
		}
		s.entries[p.ID] = &Entry{ID: p.ID, SourceDigest: p.Digest}
		s.order = append(s.order, p.ID)
	}
	return nil
}

func (s *memoryStore) UpdateTargetBatch(ctx context.Context, pairs []Pair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, p := range pairs {
		// Update-only: unknown ids no-op here and surface later through the
		// set-difference step.
		if e, ok := s.entries[p.ID]; ok {
			e.TargetDigest = p.Digest
		}
	}
	return nil
}

func (s *memoryStore) Count(ctx context.Context, pred Predicate) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, e := range s.entries {
		if pred.Matches(*e) {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) Sample(ctx context.Context, pred Predicate, limit int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var sample []Entry
	for _, id := range s.order {
		if len(sample) >= limit {
			break
		}
		if e := s.entries[id]; pred.Matches(*e) {
			sample = append(sample, *e)
		}
	}
	return sample, nil
}

func (s *memoryStore) CountExisting(ctx context.Context, ids map[string]struct{}) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for id := range ids {
		if _, ok := s.entries[id]; ok {
			n++
		}
	}
	return n, nil
}

func (s *memoryStore) Close() error {
	return nil
}
