package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"storefront/internal/domain"
)

// FileStateRepository keeps every key in one JSON document on disk and
// rewrites it on each change.
type FileStateRepository struct {
	path string

	mu      sync.RWMutex
	entries map[string]stateEntry
	nowFunc func() time.Time
}

func NewFileStateRepository(path string) (*FileStateRepository, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("state file path is required")
	}

	r := &FileStateRepository{
		path:    path,
		entries: make(map[string]stateEntry),
		nowFunc: time.Now,
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *FileStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
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

func (r *FileStateRepository) Save(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := make([]byte, len(value))
	copy(stored, value)
	r.entries[key] = stateEntry{Value: stored, ExpiresAt: expiresAt}
	return r.persistLocked()
}

func (r *FileStateRepository) Delete(ctx context.Context, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; !ok {
		return nil
	}
	delete(r.entries, key)
	return r.persistLocked()
}

func (r *FileStateRepository) load() error {
	b, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read state file: %w", err)
	}
	if len(b) == 0 {
		return nil
	}

	var decoded map[string]stateEntry
	if err := json.Unmarshal(b, &decoded); err != nil {
		return fmt.Errorf("decode state file: %w", err)
	}
	now := r.nowFunc()
	for key, e := range decoded {
		if strings.TrimSpace(key) == "" || e.expired(now) {
			continue
		}
		r.entries[key] = e
	}
	return nil
}

func (r *FileStateRepository) persistLocked() error {
	now := r.nowFunc()
	out := make(map[string]stateEntry, len(r.entries))
	for key, e := range r.entries {
		if e.expired(now) {
			continue
		}
		out[key] = e
	}

	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("mkdir state dir: %w", err)
	}
	// The file holds a bearer credential.
	if err := os.WriteFile(r.path, b, 0o600); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}
