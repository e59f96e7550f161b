package tokenstore

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

var _ KV = (*RedisKV)(nil)

// RedisKV keeps session state in redis, for deployments where several
// processes (workers, schedulers) share one service account session and a
// local file would mean each of them refreshing tokens independently.
type RedisKV struct {
	client *redis.Client
	prefix string
}

// NewRedisKV wraps an existing redis client. Keys are stored under
// "<prefix>:<key>"; an empty prefix defaults to "planner".
func NewRedisKV(client *redis.Client, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "planner"
	}
	return &RedisKV{client: client, prefix: prefix}
}

func (r *RedisKV) key(key string) string {
	return r.prefix + ":" + key
}

func (r *RedisKV) Get(key string) (string, bool) {
	v, err := r.client.Get(context.Background(), r.key(key)).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (r *RedisKV) Set(key, value string) error {
	if err := r.client.Set(context.Background(), r.key(key), value, 0).Err(); err != nil {
		return errors.Wrap(err, "[RedisKV Set]")
	}
	return nil
}

func (r *RedisKV) Delete(key string) error {
	if err := r.client.Del(context.Background(), r.key(key)).Err(); err != nil {
		return errors.Wrap(err, "[RedisKV Delete]")
	}
	return nil
}
