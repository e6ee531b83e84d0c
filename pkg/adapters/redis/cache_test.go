package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/hsmgen/pkg/adapters/redis"
	"github.com/aretw0/hsmgen/pkg/domain"
	"github.com/aretw0/hsmgen/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCache(t *testing.T, opts ...redis.Option) (*redis.Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	c := redis.NewFromClient(client, opts...)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestRedisCache_Contract(t *testing.T) {
	cache, _ := newCache(t)
	ports.RunModelCacheContract(t, cache)
}

func TestRedisCache_Ping(t *testing.T) {
	cache, _ := newCache(t)
	assert.NoError(t, cache.Ping(context.Background()))
}

func TestRedisCache_TTL_Expiration(t *testing.T) {
	cache, mr := newCache(t, redis.WithTTL(1*time.Second))
	ctx := context.Background()
	key := "digest-ttl"

	require.NoError(t, cache.Put(ctx, key, []*domain.Diagram{ports.ContractDiagram("m")}))

	keys, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, key)

	// Key expiration in miniredis follows its own clock.
	mr.FastForward(2 * time.Second)

	_, err = cache.Get(ctx, key)
	assert.ErrorIs(t, err, domain.ErrCacheMiss)

	// Index pruning compares against wall-clock time.
	time.Sleep(1200 * time.Millisecond)

	keys, err = cache.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestRedisCache_Prefix(t *testing.T) {
	cache, mr := newCache(t, redis.WithPrefix("custom:app:"))
	ctx := context.Background()

	require.NoError(t, cache.Put(ctx, "digest", []*domain.Diagram{ports.ContractDiagram("m")}))

	assert.True(t, mr.Exists("custom:app:digest"), "Expected key with custom prefix to exist")
	assert.True(t, mr.Exists("custom:app:index"), "Expected index with custom prefix to exist")

	keys, err := cache.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"digest"}, keys)
}
