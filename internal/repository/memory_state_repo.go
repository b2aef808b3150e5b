package repository

import (
	"context"
	"sync"
	"time"

	"storefront/internal/domain"
)

type stateEntry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (e stateEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

type MemoryStateRepository struct {
	mu      sync.RWMutex
	entries map[string]stateEntry
	nowFunc func() time.Time
}

func NewMemoryStateRepository() *MemoryStateRepository {
	return &MemoryStateRepository{
		entries: make(map[string]stateEntry),
		nowFunc: time.Now,
	}
}

func (r *MemoryStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	if !ok || e.expired(r.nowFunc()) {
		return nil, domain.ErrStateNotFound
	}
	out := make([]byte, len(e.Value))
	copy(out, e.Value)
	return out, nil
}

func (r *MemoryStateRepository) Save(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	r.entries[key] = stateEntry{Value: stored, ExpiresAt: expiresAt}
	return nil
}

func (r *MemoryStateRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, key)
	return nil
}
