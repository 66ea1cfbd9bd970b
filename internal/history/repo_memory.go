package history

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-process Repo for dev and tests.
type MemoryRepo struct {
	mu      sync.Mutex
	entries map[string]Entry
}

// NewMemoryRepo constructs an empty MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{entries: make(map[string]Entry)}
}

func (r *MemoryRepo) Create(ctx context.Context, e Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entries[e.ID]; exists {
		return ErrConflict
	}
	r.entries[e.ID] = e
	return nil
}

func (r *MemoryRepo) List(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := r.ownedLocked(userID)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.After(owned[j].CreatedAt)
	})
	total := len(owned)
	if offset >= total {
		return []Entry{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return owned[offset:end], total, nil
}

func (r *MemoryRepo) Get(ctx context.Context, id, userID string) (Entry, error) {
	if err := ctx.Err(); err != nil {
		return Entry{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return Entry{}, ErrNotFound
	}
	return e, nil
}

func (r *MemoryRepo) Timeline(ctx context.Context, userID string) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	owned := r.ownedLocked(userID)
	sort.SliceStable(owned, func(i, j int) bool {
		return owned[i].CreatedAt.Before(owned[j].CreatedAt)
	})
	for i := range owned {
		owned[i].ResumeText = ""
	}
	return owned, nil
}

func (r *MemoryRepo) Delete(ctx context.Context, id, userID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[id]
	if !ok || e.UserID != userID {
		return false, nil
	}
	delete(r.entries, id)
	return true, nil
}

func (r *MemoryRepo) DeleteAll(ctx context.Context, userID string) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, e := range r.entries {
		if e.UserID == userID {
			delete(r.entries, id)
			n++
		}
	}
	return n, nil
}

func (r *MemoryRepo) ownedLocked(userID string) []Entry {
	out := make([]Entry, 0)
	for _, e := range r.entries {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out
}
