package service

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"vidstream/pkg/database"
)

// RateLimiter handles rate limiting using Redis
type RateLimiter struct {
	redis *database.Redis
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(redis *database.Redis) *RateLimiter {
	return &RateLimiter{redis: redis}
}

// Allow checks if a request is allowed based on a sliding window log.
// Returns false once the window holds limit entries.
func (r *RateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window)

	redisKey := fmt.Sprintf("ratelimit:%s", key)

	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err()
	if err != nil {
		return false, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("failed to count entries: %w", err)
	}

	if count >= int64(limit) {
		return false, nil
	}

	member := fmt.Sprintf("%d", now.UnixNano())
	err = r.redis.Client.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.Unix()),
		Member: member,
	}).Err()
	if err != nil {
		return false, fmt.Errorf("failed to add entry: %w", err)
	}

	// Expiry slightly beyond the window so stale keys clean themselves up
	_ = r.redis.Client.Expire(ctx, redisKey, window+time.Minute).Err()

	return true, nil
}

// Remaining returns the number of remaining requests allowed in the window
func (r *RateLimiter) Remaining(ctx context.Context, key string, limit int, window time.Duration) (int, error) {
	windowStart := time.Now().Add(-window)

	redisKey := fmt.Sprintf("ratelimit:%s", key)

	err := r.redis.Client.ZRemRangeByScore(ctx, redisKey, "0", fmt.Sprintf("%d", windowStart.Unix())).Err()
	if err != nil {
		return 0, fmt.Errorf("failed to clean old entries: %w", err)
	}

	count, err := r.redis.Client.ZCard(ctx, redisKey).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to count entries: %w", err)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}

	return remaining, nil
}
