package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	SessionStateKey = "auth-storage"
	CartStateKey    = "cart-storage"
)

// persistedRecord is the on-disk layout shared by every store.
type persistedRecord[T any] struct {
	State   T   `json:"state"`
	Version int `json:"version"`
}

func loadRecord[T any](ctx context.Context, repo domain.StateRepository, key string, log *logrus.Logger) (T, bool) {
	var zero T
	raw, err := repo.Load(ctx, key)
	if err != nil {
		if !errors.Is(err, domain.ErrStateNotFound) {
			log.Warnf("Use Case: Could not load persisted %s: %v", key, err)
		}
		return zero, false
	}
	var rec persistedRecord[T]
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Warnf("Use Case: Ignoring unreadable persisted %s: %v", key, err)
		return zero, false
	}
	return rec.State, true
}

func saveRecord[T any](ctx context.Context, repo domain.StateRepository, key string, state T, log *logrus.Logger) {
	raw, err := json.Marshal(persistedRecord[T]{State: state})
	if err != nil {
		log.Errorf("Use Case: Could not encode %s: %v", key, err)
		return
	}
	if err := repo.Save(context.WithoutCancel(ctx), key, raw, time.Time{}); err != nil {
		log.Errorf("Use Case: Could not persist %s: %v", key, err)
	}
}

// subscribers fans state snapshots out to registered listeners.
type subscribers[T any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(T)
}

func (s *subscribers[T]) add(fn func(T)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fns == nil {
		s.fns = make(map[int]func(T))
	}
	id := s.nextID
	s.nextID++
	s.fns[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.fns, id)
	}
}

func (s *subscribers[T]) publish(v T) {
	s.mu.Lock()
	fns := make([]func(T), 0, len(s.fns))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.fns[id]; ok {
			fns = append(fns, fn)
		}
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(v)
	}
}
