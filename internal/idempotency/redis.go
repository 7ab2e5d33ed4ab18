// Package idempotency remembers which order an Idempotency-Key produced so a
// retried POST /orders returns the original order instead of a duplicate.
package idempotency

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	Header = "Idempotency-Key"

	pending   = "pending"
	keyPrefix = "storefront:idem:"
	maxKeyLen = 255
)

var (
	ErrInProgress = errors.New("idempotent request in progress")
	ErrInvalidKey = errors.New("invalid idempotency key")
)

func Key(r *http.Request) string {
	return strings.TrimSpace(r.Header.Get(Header))
}

type redisClient interface {
	SetNX(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.BoolCmd
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type RedisStore struct {
	Client redisClient
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{Client: client, TTL: ttl}
}

// Reserve claims key for a new request. When the key was already used it
// returns the stored result and reserved=false; a claim whose request has
// not finished yet yields ErrInProgress.
func (s *RedisStore) Reserve(ctx context.Context, key string) (result string, reserved bool, err error) {
	if key == "" || len(key) > maxKeyLen {
		return "", false, ErrInvalidKey
	}
	ok, err := s.Client.SetNX(ctx, keyPrefix+key, pending, s.TTL).Result()
	if err != nil {
		return "", false, fmt.Errorf("redis setnx: %w", err)
	}
	if ok {
		return "", true, nil
	}

	v, err := s.Client.Get(ctx, keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		// expired between SETNX and GET; treat as a fresh request
		return s.Reserve(ctx, key)
	}
	if err != nil {
		return "", false, fmt.Errorf("redis get: %w", err)
	}
	if v == pending {
		return "", false, ErrInProgress
	}
	return v, false, nil
}

func (s *RedisStore) Complete(ctx context.Context, key, result string) error {
	if err := s.Client.Set(ctx, keyPrefix+key, result, s.TTL).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

// Release drops a reservation whose request failed so the client may retry.
func (s *RedisStore) Release(ctx context.Context, key string) error {
	if err := s.Client.Del(ctx, keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
