package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/kupipodariday-backend/internal/domain/wish"
	"github.com/your-org/kupipodariday-backend/internal/interfaces/http/middleware"
	"github.com/your-org/kupipodariday-backend/internal/pkg/logger"
)

var (
	_ wish.Store               = (*Client)(nil)
	_ middleware.WindowCounter = (*Client)(nil)
)

func newTestClient(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewClient(rdb), mr
}

func TestJSONRoundTrip(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()

	var got []string
	found, err := client.GetJSON(ctx, "missing", &got)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, client.SetJSON(ctx, "names", []string{"kite", "ball"}, time.Minute))
	assert.Equal(t, time.Minute, mr.TTL("names"))

	found, err = client.GetJSON(ctx, "names", &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []string{"kite", "ball"}, got)

	require.NoError(t, mr.Set("broken", "{not json"))
	_, err = client.GetJSON(ctx, "broken", &got)
	assert.Error(t, err)
}

func TestCounters(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()

	n, err := client.GetInt(ctx, "version")
	require.NoError(t, err)
	assert.Zero(t, n)

	for i := 0; i < 3; i++ {
		_, err = client.Incr(ctx, "version")
		require.NoError(t, err)
	}

	n, err = client.GetInt(ctx, "version")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
}

func TestIncrWindowExpiresWithWindow(t *testing.T) {
	client, mr := newTestClient(t)
	ctx := context.Background()
	key := "rate_limit:10.0.0.1:1"

	n, err := client.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, mr.TTL(key))

	mr.FastForward(30 * time.Second)
	n, err = client.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
	// later hits do not extend the window
	assert.Equal(t, 30*time.Second, mr.TTL(key))

	mr.FastForward(30 * time.Second)
	assert.False(t, mr.Exists(key))

	n, err = client.IncrWindow(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestRankingCacheOverRedis(t *testing.T) {
	client, _ := newTestClient(t)
	ctx := context.Background()
	cache := wish.NewRankingCache(client, time.Minute, logger.Discard())

	loads := 0
	load := func(context.Context) ([]wish.Wish, error) {
		loads++
		return []wish.Wish{{ID: 1, Name: "Kite", Price: 1000}}, nil
	}

	for i := 0; i < 2; i++ {
		wishes, err := cache.Load(ctx, "top", 40, load)
		require.NoError(t, err)
		require.Len(t, wishes, 1)
		assert.Equal(t, "Kite", wishes[0].Name)
	}
	assert.Equal(t, 1, loads)

	cache.Invalidate(ctx)
	_, err := cache.Load(ctx, "top", 40, load)
	require.NoError(t, err)
	assert.Equal(t, 2, loads)
}

func TestHealth(t *testing.T) {
	client, mr := newTestClient(t)
	assert.NoError(t, client.Health())

	mr.Close()
	assert.Error(t, client.Health())
}
