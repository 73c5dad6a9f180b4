package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/spend-dashboard/internal/parser"

	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces parse results in a shared redis.
const KeyPrefix = "spend-dashboard:parse:"

// RedisCache stores parse results as JSON in redis so that several server
// instances share them.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient builds a client from a redis:// URL or a bare host:port.
func NewRedisClient(redisURL string) *redis.Client {
	if !strings.Contains(redisURL, "://") {
		redisURL = "redis://" + redisURL
	}
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: strings.TrimPrefix(redisURL, "redis://")}
	}
	return redis.NewClient(opt)
}

// NewRedisCache wraps client. A ttl of zero keeps entries until deleted.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// Ping checks connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to redis: %w", err)
	}
	return nil
}

// Close releases the client's connections.
func (r *RedisCache) Close() error {
	return r.client.Close()
}

func (r *RedisCache) Get(ctx context.Context, key string) (*parser.Result, bool, error) {
	data, err := r.client.Get(ctx, KeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get: %w", err)
	}

	var result parser.Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, false, fmt.Errorf("decoding cached result: %w", err)
	}
	return &result, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, result *parser.Result) error {
	data, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	if err := r.client.Set(ctx, KeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (r *RedisCache) Delete(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, KeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
