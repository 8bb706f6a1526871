package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCacheRepo struct{ err error }

func (f failingCacheRepo) Get(context.Context, string, interface{}) error { return f.err }
func (f failingCacheRepo) Set(context.Context, string, interface{}, time.Duration) error {
	return f.err
}
func (f failingCacheRepo) DeleteByPattern(context.Context, string) error { return f.err }

func TestCacheServiceRoundTrip(t *testing.T) {
	metrics := NewMetricsService()
	svc := NewCacheService(&stubCacheRepo{}, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	var dest map[string]int
	hit, err := svc.Get(ctx, "insights:dataset:all", &dest)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, "insights:dataset:all", map[string]int{"samples": 3}, 0))
	hit, err = svc.Get(ctx, "insights:dataset:all", &dest)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, 3, dest["samples"])

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := &stubCacheRepo{}
	svc := NewCacheService(repo, nil, 0, nil, false)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, "k", "v", 0))
	assert.Nil(t, repo.store)
	hit, err := svc.Get(ctx, "k", new(string))
	require.NoError(t, err)
	assert.False(t, hit)
	require.NoError(t, svc.Invalidate(ctx, "insights:*"))
	assert.Empty(t, repo.deleted)

	assert.False(t, NewCacheService(nil, nil, 0, nil, true).Enabled())
}

func TestCacheServiceSurfacesBackendErrors(t *testing.T) {
	svc := NewCacheService(failingCacheRepo{err: errors.New("connection refused")}, nil, 0, nil, true)
	ctx := context.Background()

	hit, err := svc.Get(ctx, "k", new(string))
	require.Error(t, err)
	assert.False(t, hit)
	require.Error(t, svc.Set(ctx, "k", "v", 0))
	require.Error(t, svc.Invalidate(ctx, "insights:*"))
}

func TestMakeCacheKey(t *testing.T) {
	assert.Equal(t, "insights:dataset:all:2026-07-01:_", makeCacheKey(cacheDatasetScope, "all", "2026-07-01", ""))
	assert.Equal(t, "insights:settings", makeCacheKey(cacheSettingsScope))
}
