package guests

import (
	"context"
	"sync"
	"time"

	"resume-insights/internal/identity"
)

// MemoryStore is an in-process Store for dev and tests.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string]Record
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]Record)}
}

func (s *MemoryStore) Consume(ctx context.Context, id identity.Identity, quota int, newID string, now time.Time) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.latestLocked(id)
	if ok {
		if rec.AnalysisCount >= quota {
			return rec, false, nil
		}
		rec.AnalysisCount++
		rec.LastAnalysisAt = now
		rec.UpdatedAt = now
		s.records[rec.ID] = rec
		return rec, true, nil
	}

	rec = Record{
		ID:             newID,
		NetworkAddress: id.NetworkAddress,
		HardwareTag:    id.HardwareTag,
		UserAgent:      id.UserAgent,
		AnalysisCount:  1,
		LastAnalysisAt: now,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	s.records[rec.ID] = rec
	return rec, true, nil
}

func (s *MemoryStore) Lookup(ctx context.Context, id identity.Identity) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, false, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.latestLocked(id)
	return rec, ok, nil
}

func (s *MemoryStore) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for key, rec := range s.records {
		if rec.LastAnalysisAt.Before(cutoff) {
			delete(s.records, key)
			n++
		}
	}
	return n, nil
}

func (s *MemoryStore) latestLocked(id identity.Identity) (Record, bool) {
	var (
		best  Record
		found bool
	)
	for _, rec := range s.records {
		if !matches(rec, id) {
			continue
		}
		if !found || rec.LastAnalysisAt.After(best.LastAnalysisAt) {
			best = rec
			found = true
		}
	}
	return best, found
}
