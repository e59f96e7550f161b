package tokenstore_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sgdea/go-planner-client/tokenstore"
	"github.com/stretchr/testify/require"
)

func newRedisKV(t *testing.T) *tokenstore.RedisKV {
	t.Helper()

	srv := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: srv.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return tokenstore.NewRedisKV(client, "planner-test")
}

func TestRedisKV(t *testing.T) {
	kv := newRedisKV(t)

	t.Run("missing key", func(t *testing.T) {
		_, ok := kv.Get("id_token_sgdea")
		require.False(t, ok)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, kv.Set("id_token_sgdea", "tok-1"))
		v, ok := kv.Get("id_token_sgdea")
		require.True(t, ok)
		require.Equal(t, "tok-1", v)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, kv.Set("k", "v"))
		require.NoError(t, kv.Delete("k"))
		_, ok := kv.Get("k")
		require.False(t, ok)
	})

	t.Run("store over redis backend", func(t *testing.T) {
		store := tokenstore.New(kv)
		require.NoError(t, store.SaveAccess("access-1"))
		require.NoError(t, store.SaveRefresh("refresh-1"))
		require.Equal(t, "access-1", store.Access())
		require.Equal(t, "refresh-1", store.Refresh())
		store.PurgeTokens()
		require.Equal(t, "", store.Access())
		require.Equal(t, "", store.Refresh())
	})
}
