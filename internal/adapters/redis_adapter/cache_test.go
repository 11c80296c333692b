package redis_a_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	redis_a "github.com/LucasDeWerk/vstcount/internal/adapters/redis_adapter"
	"github.com/LucasDeWerk/vstcount/internal/core/domain"
	"github.com/LucasDeWerk/vstcount/internal/core/ports"
	"github.com/LucasDeWerk/vstcount/test/helpers"
)

func setupCache(t *testing.T) (*miniredis.Miniredis, ports.CacheRepository) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, redis_a.NewCache(client, 5*time.Minute, helpers.TestLogger())
}

func TestCache_SetAndGet(t *testing.T) {
	ctx := context.Background()
	_, cache := setupCache(t)

	t.Run("round-trips a string", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, "count:session:ACME:01", "INV-42"))

		var got string
		require.NoError(t, cache.Get(ctx, "count:session:ACME:01", &got))
		assert.Equal(t, "INV-42", got)
	})

	t.Run("round-trips a product list", func(t *testing.T) {
		counted := 5
		items := []domain.CountItem{
			{ProductID: "P-100", Description: "Round tube", WarehouseID: "WH-1",
				ExpectedStock: decimal.RequireFromString("1234.56")},
			{ProductID: "P-200", Description: "Sheet", WarehouseID: "WH-1",
				ExpectedStock: decimal.NewFromInt(15), CountedQuantity: &counted},
		}
		require.NoError(t, cache.Set(ctx, "count:items:ACME:01", items))

		var got []domain.CountItem
		require.NoError(t, cache.Get(ctx, "count:items:ACME:01", &got))
		require.Len(t, got, 2)
		assert.Equal(t, "P-100", got[0].ProductID)
		assert.True(t, got[0].ExpectedStock.Equal(decimal.RequireFromString("1234.56")))
		require.NotNil(t, got[1].CountedQuantity)
		assert.Equal(t, 5, *got[1].CountedQuantity)
	})

	t.Run("missing key is a cache miss", func(t *testing.T) {
		var got string
		err := cache.Get(ctx, "count:session:nope", &got)
		assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
	})
}

func TestCache_SetWithTTL(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupCache(t)

	require.NoError(t, cache.SetWithTTL(ctx, "ttl:test", "value", 100*time.Millisecond))

	var result string
	require.NoError(t, cache.Get(ctx, "ttl:test", &result))
	assert.Equal(t, "value", result)

	mr.FastForward(200 * time.Millisecond)

	err := cache.Get(ctx, "ttl:test", &result)
	assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
}

func TestCache_Delete(t *testing.T) {
	ctx := context.Background()
	_, cache := setupCache(t)

	keys := []string{"del:1", "del:2", "del:3"}
	for _, key := range keys {
		require.NoError(t, cache.Set(ctx, key, "value"))
	}

	require.NoError(t, cache.Delete(ctx, keys...))

	for _, key := range keys {
		var result string
		err := cache.Get(ctx, key, &result)
		assert.ErrorIs(t, err, redis_a.ErrCacheMiss)
	}
}

func TestCache_Exists(t *testing.T) {
	ctx := context.Background()
	_, cache := setupCache(t)

	require.NoError(t, cache.Set(ctx, "exists:1", "value"))

	ok, err := cache.Exists(ctx, "exists:1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = cache.Exists(ctx, "exists:1", "exists:2")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestCache_GetOrSet(t *testing.T) {
	ctx := context.Background()

	t.Run("fetches once then serves from cache", func(t *testing.T) {
		_, cache := setupCache(t)

		fetchCount := 0
		fetchFunc := func() (interface{}, error) {
			fetchCount++
			return "fetched value", nil
		}

		var result1 string
		require.NoError(t, cache.GetOrSet(ctx, "getorset:test", &result1, fetchFunc, time.Minute))
		assert.Equal(t, "fetched value", result1)
		assert.Equal(t, 1, fetchCount)

		var result2 string
		require.NoError(t, cache.GetOrSet(ctx, "getorset:test", &result2, fetchFunc, time.Minute))
		assert.Equal(t, "fetched value", result2)
		assert.Equal(t, 1, fetchCount)
	})

	t.Run("propagates fetch failure without caching", func(t *testing.T) {
		_, cache := setupCache(t)

		fetchErr := errors.New("upstream down")
		var result string
		err := cache.GetOrSet(ctx, "getorset:fail", &result, func() (interface{}, error) {
			return nil, fetchErr
		}, time.Minute)
		require.Error(t, err)
		assert.ErrorIs(t, err, fetchErr)

		ok, err := cache.Exists(ctx, "getorset:fail")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestCache_Ping(t *testing.T) {
	ctx := context.Background()
	mr, cache := setupCache(t)

	require.NoError(t, cache.Ping(ctx))

	mr.Close()
	assert.Error(t, cache.Ping(ctx))
}
