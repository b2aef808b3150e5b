package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCredentialStoreExpiresAfterSevenDays(t *testing.T) {
	ctx := context.Background()
	repo := newRecordingRepo()
	creds := NewCredentialStore(repo, 0, quietLogger())
	now := time.Now()
	creds.nowFunc = func() time.Time { return now }

	require.NoError(t, creds.Set(ctx, "tok1"))
	assert.Equal(t, now.Add(7*24*time.Hour), repo.expires[CredentialKey])
	assert.Equal(t, "tok1", creds.Token(ctx))
	assert.True(t, creds.Has(ctx))

	creds.nowFunc = func() time.Time { return now.Add(-7*24*time.Hour - time.Second) }
	require.NoError(t, creds.Set(ctx, "tok2"))
	assert.Empty(t, creds.Token(ctx))
}

func TestCredentialStoreClear(t *testing.T) {
	ctx := context.Background()
	creds := NewCredentialStore(newRecordingRepo(), time.Hour, quietLogger())

	creds.Clear(ctx)
	require.NoError(t, creds.Set(ctx, "tok1"))
	creds.Clear(ctx)

	assert.False(t, creds.Has(ctx))
}
