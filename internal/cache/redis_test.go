package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestRedisBackend(t *testing.T) *RedisBackend {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisBackend(client, "quyc:cache:")
}

func TestRedisBackendRoundTrip(t *testing.T) {
	b := newTestRedisBackend(t)

	exp := time.Now().Add(time.Hour).UTC()
	entry := &Entry{Key: "k", StatusCode: 200, Body: []byte("hello"), Expiry: &exp}

	require.NoError(t, b.Put(entry.Key, entry))

	got, ok, err := b.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry.Body, got.Body)
	require.Equal(t, entry.StatusCode, got.StatusCode)

	require.NoError(t, b.Delete("k"))
	_, ok, err = b.Get("k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisBackendMiss(t *testing.T) {
	b := newTestRedisBackend(t)
	_, ok, err := b.Get("missing")
	require.NoError(t, err)
	require.False(t, ok)
}
