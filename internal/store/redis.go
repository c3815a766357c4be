package store

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// RedisSessions keeps session buckets in Redis so they expire on their
// own, which is how a session "ends" server-side when the browser never
// resets explicitly.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSessions wraps a client. A zero ttl means keys never expire.
func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	return &RedisSessions{client: client, ttl: ttl}
}

// Ping verifies connectivity.
func (r *RedisSessions) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Session returns the bucket for one session.
func (r *RedisSessions) Session(id string) KV {
	return &redisKV{client: r.client, prefix: sessionPrefix(id), ttl: r.ttl}
}

// ClearSession deletes every key in the session's bucket.
func (r *RedisSessions) ClearSession(ctx context.Context, id string) error {
	var cursor uint64
	pattern := sessionPrefix(id) + "*"
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func sessionPrefix(id string) string {
	return "echohealth:session:" + id + ":"
}

type redisKV struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func (k *redisKV) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := k.client.Get(ctx, k.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (k *redisKV) Set(ctx context.Context, key string, value []byte) error {
	return k.client.Set(ctx, k.prefix+key, value, k.ttl).Err()
}

func (k *redisKV) Remove(ctx context.Context, key string) error {
	return k.client.Del(ctx, k.prefix+key).Err()
}
