package store

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRedis(t *testing.T, ttl time.Duration) (*RedisSessions, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessions(client, ttl), mr
}

func TestRedisSessionRoundTrip(t *testing.T) {
	ctx := context.Background()
	rs, _ := newTestRedis(t, 0)
	kv := rs.Session("s1")

	_, ok, err := kv.Get(ctx, KeyResults)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, kv.Set(ctx, KeyResults, []byte(`{"voice":null}`)))
	got, ok, err := kv.Get(ctx, KeyResults)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, `{"voice":null}`, string(got))

	require.NoError(t, kv.Remove(ctx, KeyResults))
	_, ok, _ = kv.Get(ctx, KeyResults)
	assert.False(t, ok)
}

func TestRedisSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	rs, _ := newTestRedis(t, 0)

	require.NoError(t, rs.Session("a").Set(ctx, KeyResults, []byte("a")))
	require.NoError(t, rs.Session("b").Set(ctx, KeyResults, []byte("b")))

	got, ok, err := rs.Session("a").Get(ctx, KeyResults)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "a", string(got))
}

func TestRedisClearSession(t *testing.T) {
	ctx := context.Background()
	rs, _ := newTestRedis(t, 0)

	require.NoError(t, rs.Session("a").Set(ctx, KeyResults, []byte("a")))
	require.NoError(t, rs.Session("a").Set(ctx, "other", []byte("x")))
	require.NoError(t, rs.Session("b").Set(ctx, KeyResults, []byte("b")))

	require.NoError(t, rs.ClearSession(ctx, "a"))

	_, ok, _ := rs.Session("a").Get(ctx, KeyResults)
	assert.False(t, ok)
	_, ok, _ = rs.Session("a").Get(ctx, "other")
	assert.False(t, ok)
	_, ok, _ = rs.Session("b").Get(ctx, KeyResults)
	assert.True(t, ok, "other sessions must survive")
}

func TestRedisSessionExpiry(t *testing.T) {
	ctx := context.Background()
	rs, mr := newTestRedis(t, time.Minute)
	kv := rs.Session("a")

	require.NoError(t, kv.Set(ctx, KeyResults, []byte("a")))
	mr.FastForward(2 * time.Minute)

	_, ok, err := kv.Get(ctx, KeyResults)
	require.NoError(t, err)
	assert.False(t, ok, "session keys must expire with the ttl")
}
