package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type row struct {
	ItemID string `json:"item_id"`
	Stock  int    `json:"stock"`
}

func newTestCache(t *testing.T) (*IndicatorCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewIndicatorCache(client, time.Minute), mr
}

func TestFetchJSON_CacheaHastaBump(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	calls := 0
	loader := func(context.Context) (interface{}, error) {
		calls++
		return []row{{ItemID: "luva", Stock: calls}}, nil
	}

	var first []row
	require.NoError(t, c.FetchJSON(ctx, "stock:indicators:30", &first, loader))
	var second []row
	require.NoError(t, c.FetchJSON(ctx, "stock:indicators:30", &second, loader))
	assert.Equal(t, 1, calls)
	assert.Equal(t, first, second)
	assert.True(t, mr.Exists("stock:indicators:30:v1"))

	require.NoError(t, c.Bump(ctx))
	var third []row
	require.NoError(t, c.FetchJSON(ctx, "stock:indicators:30", &third, loader))
	assert.Equal(t, 2, calls)
	assert.Equal(t, 2, third[0].Stock)

	ver, err := c.Version(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, ver)
}

func TestFetchJSON_RespetaTTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()
	var out []row
	require.NoError(t, c.FetchJSON(ctx, "k", &out, func(context.Context) (interface{}, error) {
		return []row{}, nil
	}))
	mr.FastForward(2 * time.Minute)
	assert.False(t, mr.Exists("k:v1"))
}

func TestFetchJSON_ErrorDelLoaderNoSeCachea(t *testing.T) {
	c, mr := newTestCache(t)
	boom := errors.New("db caída")
	var out []row
	err := c.FetchJSON(context.Background(), "k", &out, func(context.Context) (interface{}, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("k:v1"))
}

func TestIndicatorCache_NilDelegaEnLoader(t *testing.T) {
	var c *IndicatorCache
	var out []row
	require.NoError(t, c.FetchJSON(context.Background(), "k", &out, func(context.Context) (interface{}, error) {
		return []row{{ItemID: "x", Stock: 3}}, nil
	}))
	assert.Equal(t, []row{{ItemID: "x", Stock: 3}}, out)
	assert.NoError(t, c.Bump(context.Background()))
}
