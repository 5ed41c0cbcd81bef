package cache

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend persists cache entries in a Redis keyspace. The LRU
// eviction policy itself still lives in Store — this Backend is a pure
// get/put/delete shim. Store only writes to and deletes from its
// Backend and serves lookups from its own in-process index, so a Store
// does not pick up entries another client wrote to the same keyspace.
type RedisBackend struct {
	client *redis.Client
	prefix string
}

// NewRedisBackend wraps an existing *redis.Client. keyPrefix namespaces
// this cache's keys within a shared Redis instance.
func NewRedisBackend(client *redis.Client, keyPrefix string) *RedisBackend {
	return &RedisBackend{client: client, prefix: keyPrefix}
}

func (r *RedisBackend) redisKey(key string) string {
	return r.prefix + key
}

func (r *RedisBackend) Put(key string, entry *Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("cache: marshaling entry: %w", err)
	}
	return r.client.Set(context.Background(), r.redisKey(key), data, 0).Err()
}

func (r *RedisBackend) Get(key string) (*Entry, bool, error) {
	ctx := context.Background()
	data, err := r.client.Get(ctx, r.redisKey(key)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: reading from redis: %w", err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("cache: unmarshaling entry: %w", err)
	}
	return &entry, true, nil
}

func (r *RedisBackend) Delete(key string) error {
	return r.client.Del(context.Background(), r.redisKey(key)).Err()
}
