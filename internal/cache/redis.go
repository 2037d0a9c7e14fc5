// Package cache stores computed report packages in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "tally"

// Redis is a JSON cache whose keys are scoped by a generation counter.
// Invalidate bumps the generation so every earlier entry is orphaned and
// left to expire.
type Redis struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedis connects to the server at url and verifies the connection. A
// bare "host:port" is accepted as well as a redis:// URL.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		if strings.Contains(url, "://") {
			return nil, fmt.Errorf("parsing redis URL: %w", err)
		}
		opt = &redis.Options{Addr: url}
	}
	client := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}
	return NewRedisWithClient(client, defaultPrefix, ttl), nil
}

// NewRedisWithClient wraps an existing client. Keys are namespaced by
// prefix.
func NewRedisWithClient(client *redis.Client, prefix string, ttl time.Duration) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}
	return &Redis{client: client, prefix: prefix, ttl: ttl}
}

// Close closes the client.
func (r *Redis) Close() error {
	return r.client.Close()
}

// Get decodes the entry for key into dst. It reports false on a miss and
// returns the generation it looked under, which is set whenever the
// generation counter could be read.
func (r *Redis) Get(ctx context.Context, key string, dst any) (bool, string, error) {
	gen, err := r.generation(ctx)
	if err != nil {
		return false, "", err
	}
	data, err := r.client.Get(ctx, entryKey(r.prefix, gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, gen, nil
	}
	if err != nil {
		return false, gen, fmt.Errorf("reading cache %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, gen, fmt.Errorf("decoding cache %s: %w", key, err)
	}
	return true, gen, nil
}

// Set stores v as JSON under key in the given generation with the cache
// TTL. Entries written to a generation that has since been bumped are
// never read.
func (r *Redis) Set(ctx context.Context, generation, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding cache %s: %w", key, err)
	}
	if err := r.client.Set(ctx, entryKey(r.prefix, generation, key), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache %s: %w", key, err)
	}
	return nil
}

// Invalidate discards every entry written so far.
func (r *Redis) Invalidate(ctx context.Context) error {
	if err := r.client.Incr(ctx, r.generationKey()).Err(); err != nil {
		return fmt.Errorf("bumping cache generation: %w", err)
	}
	return nil
}

func (r *Redis) generationKey() string {
	return r.prefix + ":generation"
}

func (r *Redis) generation(ctx context.Context) (string, error) {
	gen, err := r.client.Get(ctx, r.generationKey()).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	if err != nil {
		return "", fmt.Errorf("reading cache generation: %w", err)
	}
	return gen, nil
}

func entryKey(prefix, generation, key string) string {
	return prefix + ":" + generation + ":" + key
}
