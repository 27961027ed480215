package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/pnf-horario-api/pkg/errors"
)

type cachedSnapshot struct {
	Key  string `json:"key"`
	Days []int  `json:"days"`
}

func TestMemoryCacheRepositoryRoundTrip(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute)
	ctx := context.Background()

	var got cachedSnapshot
	require.ErrorIs(t, repo.Get(ctx, "horarios:profesor:7", &got), appErrors.ErrCacheMiss)

	value := cachedSnapshot{Key: "p7", Days: []int{1, 3}}
	require.NoError(t, repo.Set(ctx, "horarios:profesor:7", value, time.Minute))
	value.Days[0] = 9

	require.NoError(t, repo.Get(ctx, "horarios:profesor:7", &got))
	assert.Equal(t, []int{1, 3}, got.Days)
}

func TestMemoryCacheRepositoryExpiresAndDeletes(t *testing.T) {
	repo := NewMemoryCacheRepository(time.Minute)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "horarios:aula:3", cachedSnapshot{}, time.Millisecond))
	time.Sleep(5 * time.Millisecond)
	var got cachedSnapshot
	assert.ErrorIs(t, repo.Get(ctx, "horarios:aula:3", &got), appErrors.ErrCacheMiss)

	require.NoError(t, repo.Set(ctx, "horarios:aula:3", cachedSnapshot{}, time.Minute))
	require.NoError(t, repo.Set(ctx, "horarios:aula:4", cachedSnapshot{}, time.Minute))
	require.NoError(t, repo.Set(ctx, "horarios:profesor:1", cachedSnapshot{}, time.Minute))

	require.NoError(t, repo.DeleteByPattern(ctx, "horarios:aula:*"))
	assert.ErrorIs(t, repo.Get(ctx, "horarios:aula:4", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Get(ctx, "horarios:profesor:1", &got))

	require.NoError(t, repo.Delete(ctx, "horarios:profesor:1"))
	assert.ErrorIs(t, repo.Get(ctx, "horarios:profesor:1", &got), appErrors.ErrCacheMiss)
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)
	ctx := context.Background()

	var got cachedSnapshot
	assert.ErrorIs(t, repo.Get(ctx, "k", &got), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "k", got, time.Minute))
	assert.NoError(t, repo.DeleteByPattern(ctx, "*"))
	assert.Error(t, repo.Ping(ctx))
	assert.NoError(t, repo.Close())
}
