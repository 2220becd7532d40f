package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ksalp/portal/internal/core/domain"
)

const (
	defaultMaxAttempts = 10
	defaultWindow      = 15 * time.Minute
)

// AttemptLimiter counts failed sign-ins per key in a fixed window.
// Key format: signin:<key>
type AttemptLimiter struct {
	client *redis.Client
	max    int64
	window time.Duration
}

// NewAttemptLimiter wraps client. Non-positive limits select the defaults.
func NewAttemptLimiter(client *redis.Client, maxAttempts int, window time.Duration) *AttemptLimiter {
	if maxAttempts <= 0 {
		maxAttempts = defaultMaxAttempts
	}
	if window <= 0 {
		window = defaultWindow
	}
	return &AttemptLimiter{client: client, max: int64(maxAttempts), window: window}
}

// Allow returns domain.ErrTooManyAttempts once the window holds max failures.
func (l *AttemptLimiter) Allow(ctx context.Context, key string) error {
	count, err := l.client.Get(ctx, l.key(key)).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return fmt.Errorf("limiter check: %w", err)
	}
	if count >= l.max {
		return domain.ErrTooManyAttempts
	}
	return nil
}

// Fail records one failure. The first failure opens the window.
func (l *AttemptLimiter) Fail(ctx context.Context, key string) error {
	count, err := l.client.Incr(ctx, l.key(key)).Result()
	if err != nil {
		return fmt.Errorf("limiter incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, l.key(key), l.window).Err(); err != nil {
			return fmt.Errorf("limiter expire: %w", err)
		}
	}
	return nil
}

func (l *AttemptLimiter) Reset(ctx context.Context, key string) error {
	if err := l.client.Del(ctx, l.key(key)).Err(); err != nil {
		return fmt.Errorf("limiter reset: %w", err)
	}
	return nil
}

func (l *AttemptLimiter) key(k string) string {
	return "signin:" + k
}
