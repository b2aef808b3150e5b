package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"storefront/internal/domain"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

type PostgresStateRepository struct {
	db      *sql.DB
	log     *logrus.Logger
	nowFunc func() time.Time
}

// NewPostgresStateRepository creates the client_state table if needed.
func NewPostgresStateRepository(ctx context.Context, db *sql.DB, logger *logrus.Logger) (*PostgresStateRepository, error) {
	if db == nil {
		return nil, fmt.Errorf("database is required")
	}
	r := &PostgresStateRepository{db: db, log: logger, nowFunc: time.Now}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresStateRepository) ensureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS client_state (
	key TEXT PRIMARY KEY,
	value BYTEA NOT NULL,
	expires_at TIMESTAMPTZ NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`
	if _, err := r.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("ensure client_state schema: %w", err)
	}
	return nil
}

func (r *PostgresStateRepository) Load(ctx context.Context, key string) ([]byte, error) {
	const q = `
SELECT value
FROM client_state
WHERE key = $1 AND (expires_at IS NULL OR expires_at > $2)`
	var value []byte
	err := r.db.QueryRowContext(ctx, q, key, r.nowFunc()).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrStateNotFound
		}
		r.logPQError("load", key, err)
		return nil, fmt.Errorf("could not load state %q: %w", key, err)
	}
	return value, nil
}

func (r *PostgresStateRepository) Save(ctx context.Context, key string, value []byte, expiresAt time.Time) error {
	const q = `
INSERT INTO client_state (key, value, expires_at, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (key) DO UPDATE
SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at, updated_at = NOW()`
	expires := sql.NullTime{Time: expiresAt, Valid: !expiresAt.IsZero()}
	if _, err := r.db.ExecContext(ctx, q, key, value, expires); err != nil {
		r.logPQError("save", key, err)
		return fmt.Errorf("could not save state %q: %w", key, err)
	}
	r.log.Debugf("State saved in postgres: key=%s", key)
	return nil
}

func (r *PostgresStateRepository) Delete(ctx context.Context, key string) error {
	const q = `DELETE FROM client_state WHERE key = $1`
	if _, err := r.db.ExecContext(ctx, q, key); err != nil {
		r.logPQError("delete", key, err)
		return fmt.Errorf("could not delete state %q: %w", key, err)
	}
	return nil
}

func (r *PostgresStateRepository) logPQError(op, key string, err error) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		r.log.Errorf("Postgres state %s failed for key %s: code=%s message=%s", op, key, pqErr.Code, pqErr.Message)
		return
	}
	r.log.Errorf("Postgres state %s failed for key %s: %v", op, key, err)
}
