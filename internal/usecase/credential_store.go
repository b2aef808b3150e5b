package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"storefront/internal/domain"

	"github.com/sirupsen/logrus"
)

const (
	CredentialKey        = "ecommerce_token"
	DefaultCredentialTTL = 7 * 24 * time.Hour
)

// CredentialStore is the single persisted bearer credential slot.
// It satisfies clients.TokenSource and clients.CredentialClearer.
type CredentialStore struct {
	repo    domain.StateRepository
	ttl     time.Duration
	log     *logrus.Logger
	nowFunc func() time.Time
}

func NewCredentialStore(repo domain.StateRepository, ttl time.Duration, logger *logrus.Logger) *CredentialStore {
	if ttl <= 0 {
		ttl = DefaultCredentialTTL
	}
	return &CredentialStore{repo: repo, ttl: ttl, log: logger, nowFunc: time.Now}
}

// Token returns the current credential, or "" when none is stored or it has expired.
func (c *CredentialStore) Token(ctx context.Context) string {
	raw, err := c.repo.Load(ctx, CredentialKey)
	if err != nil {
		if !errors.Is(err, domain.ErrStateNotFound) {
			c.log.Warnf("Credential: load failed: %v", err)
		}
		return ""
	}
	return strings.TrimSpace(string(raw))
}

func (c *CredentialStore) Has(ctx context.Context) bool {
	return c.Token(ctx) != ""
}

func (c *CredentialStore) Set(ctx context.Context, token string) error {
	if err := c.repo.Save(ctx, CredentialKey, []byte(token), c.nowFunc().Add(c.ttl)); err != nil {
		c.log.Errorf("Credential: save failed: %v", err)
		return err
	}
	c.log.Debug("Credential: stored")
	return nil
}

func (c *CredentialStore) Clear(ctx context.Context) {
	if err := c.repo.Delete(ctx, CredentialKey); err != nil {
		c.log.Errorf("Credential: delete failed: %v", err)
		return
	}
	c.log.Debug("Credential: cleared")
}
