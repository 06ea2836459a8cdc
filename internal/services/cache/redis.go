package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/buildwise-ai/buildwise/internal/models"

	fiberlog "github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "buildwise:method:"

// RedisStore is a redis-backed store. Entries are JSON documents; redis
// key TTLs are set slightly past the entry TTL so the store expires
// entries on its own even if no reader ever purges them.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and verifies the connection.
func NewRedisStore(redisURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		fiberlog.Errorf("RedisStore: connection check failed: %v", err)
	}

	return &RedisStore{client: client}, nil
}

// Get returns the stored entry.
func (s *RedisStore) Get(ctx context.Context, key string) (models.CacheEntry, bool, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return models.CacheEntry{}, false, nil
	}
	if err != nil {
		return models.CacheEntry{}, false, err
	}

	var entry models.CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return models.CacheEntry{}, false, fmt.Errorf("corrupt cache entry for %s: %w", key, err)
	}
	return entry, true, nil
}

// Set stores the entry with a redis-level TTL as a backstop.
func (s *RedisStore) Set(ctx context.Context, entry models.CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	// Keep the key a little past logical expiry so DeleteOlderThan
	// accounting sees entries the sweeper is expected to count.
	expiry := time.Duration(entry.TTLSeconds)*time.Second + time.Minute
	return s.client.Set(ctx, redisKeyPrefix+entry.Key, data, expiry).Err()
}

// Delete removes a key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, redisKeyPrefix+key).Err()
}

// DeleteOlderThan scans the keyspace and removes entries created before
// the cutoff.
func (s *RedisStore) DeleteOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)
	var removed int64

	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		redisKey := iter.Val()

		data, err := s.client.Get(ctx, redisKey).Bytes()
		if err != nil {
			continue // expired or deleted between scan and get
		}

		var entry models.CacheEntry
		if err := json.Unmarshal(data, &entry); err != nil {
			fiberlog.Warnf("RedisStore: removing corrupt entry %s: %v", redisKey, err)
			if s.client.Del(ctx, redisKey).Err() == nil {
				removed++
			}
			continue
		}

		if entry.CreatedAt.Before(cutoff) {
			if err := s.client.Del(ctx, redisKey).Err(); err == nil {
				removed++
			}
		}
	}
	if err := iter.Err(); err != nil {
		return removed, err
	}

	return removed, nil
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
