package domain

import (
	"context"
	"errors"
	"time"
)

var ErrStateNotFound = errors.New("state not found")

// StateRepository persists opaque values by key. A zero expiresAt means
// the value never expires. Load returns ErrStateNotFound for missing or
// expired keys.
type StateRepository interface {
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, value []byte, expiresAt time.Time) error
	Delete(ctx context.Context, key string) error
}
