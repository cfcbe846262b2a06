package storage

import "context"

// HashStore is the subset of Redis hash commands the Redis backend needs.
// *redis.Client from pkg/redis satisfies it.
type HashStore interface {
	HGet(ctx context.Context, key, field string) (string, bool, error)
	HSet(ctx context.Context, key, field, value string) error
	HDel(ctx context.Context, key, field string) error
	Del(ctx context.Context, keys ...string) error
}

// Redis keeps each device's storage in a single hash, so Clear is one DEL.
type Redis struct {
	hs  HashStore
	key string
}

func NewRedis(hs HashStore, deviceID string) *Redis {
	return &Redis{hs: hs, key: "device:" + deviceID + ":storage"}
}

// RedisFactory opens a Redis-backed KV per device.
func RedisFactory(hs HashStore) Factory {
	return func(deviceID string) KV { return NewRedis(hs, deviceID) }
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	return r.hs.HGet(ctx, r.key, key)
}

func (r *Redis) Set(ctx context.Context, key, value string) error {
	return r.hs.HSet(ctx, r.key, key, value)
}

func (r *Redis) Remove(ctx context.Context, key string) error {
	return r.hs.HDel(ctx, r.key, key)
}

func (r *Redis) Clear(ctx context.Context) error {
	return r.hs.Del(ctx, r.key)
}
