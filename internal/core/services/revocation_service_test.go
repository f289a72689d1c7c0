package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cleanorder-api/internal/core/domain"
)

func TestRevocationService_RevokeAndCheck(t *testing.T) {
	repo := newFakeRevokedRepo()
	cache := newFakeCache()
	svc := NewRevocationService(repo, cache, zap.NewNop())
	ctx := context.Background()

	session := domain.Session{UserID: 4, TokenID: "jti-1", ExpiresAt: time.Now().Add(30 * time.Minute)}
	require.NoError(t, svc.Revoke(ctx, session))

	assert.Contains(t, repo.rows, "jti-1")
	assert.True(t, cache.entries["jti-1"])
	assert.InDelta(t, float64(30*time.Minute), float64(cache.ttls["jti-1"]), float64(time.Second))

	revoked, err := svc.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Zero(t, repo.lookups, "cache hit must not reach the database")
}

func TestRevocationService_MissBackfillsCache(t *testing.T) {
	repo := newFakeRevokedRepo()
	cache := newFakeCache()
	svc := NewRevocationService(repo, cache, zap.NewNop())
	ctx := context.Background()

	revoked, err := svc.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.False(t, revoked)
	assert.Equal(t, 1, repo.lookups)

	cached, ok := cache.entries["jti-2"]
	assert.True(t, ok)
	assert.False(t, cached)
	assert.Equal(t, activeCacheTTL, cache.ttls["jti-2"])

	_, err = svc.IsRevoked(ctx, "jti-2")
	require.NoError(t, err)
	assert.Equal(t, 1, repo.lookups)
}

func TestRevocationService_CacheFailureFallsBackToDatabase(t *testing.T) {
	repo := newFakeRevokedRepo()
	repo.rows["jti-3"] = time.Now().Add(time.Hour)
	cache := newFakeCache()
	cache.err = errBoom
	svc := NewRevocationService(repo, cache, zap.NewNop())

	revoked, err := svc.IsRevoked(context.Background(), "jti-3")
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.Equal(t, 1, repo.lookups)

	// a broken cache does not fail the revocation either
	require.NoError(t, svc.Revoke(context.Background(), domain.Session{UserID: 1, TokenID: "jti-4", ExpiresAt: time.Now().Add(time.Hour)}))
	assert.Contains(t, repo.rows, "jti-4")
}

func TestRevocationService_DatabaseFailure(t *testing.T) {
	repo := newFakeRevokedRepo()
	repo.existsErr = errBoom
	svc := NewRevocationService(repo, nil, zap.NewNop())

	_, err := svc.IsRevoked(context.Background(), "jti-5")
	assert.ErrorIs(t, err, errBoom)
}

func TestRevocationService_EmptyTokenID(t *testing.T) {
	repo := newFakeRevokedRepo()
	svc := NewRevocationService(repo, nil, zap.NewNop())

	revoked, err := svc.IsRevoked(context.Background(), "")
	require.NoError(t, err)
	assert.False(t, revoked)
	require.NoError(t, svc.Revoke(context.Background(), domain.Session{UserID: 1}))
	assert.Empty(t, repo.rows)
}

func TestRevocationService_PurgeExpired(t *testing.T) {
	repo := newFakeRevokedRepo()
	repo.rows["old"] = time.Now().Add(-time.Hour)
	repo.rows["live"] = time.Now().Add(time.Hour)
	svc := NewRevocationService(repo, nil, zap.NewNop())

	deleted, err := svc.PurgeExpired(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Contains(t, repo.rows, "live")
}
