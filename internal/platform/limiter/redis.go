// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package limiter

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/quill/internal/platform/constants"
)

// FixedWindow allows max hits per key in each window, counted with INCR.
// The first hit of a window sets the key TTL, so counters expire on their own.
type FixedWindow struct {
	client redis.Cmdable
	max    int64
	window time.Duration
	prefix string
}

// NewFixedWindow creates a Redis backed limiter. scope separates counter
// families that share one Redis database.
func NewFixedWindow(client redis.Cmdable, scope string, max int, window time.Duration) *FixedWindow {
	return &FixedWindow{
		client: client,
		max:    int64(max),
		window: window,
		prefix: constants.RedisPrefixAuthLimit + scope + ":",
	}
}

// Allow implements [Limiter].
func (limiter *FixedWindow) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := limiter.prefix + key

	count, err := limiter.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if count == 1 {
		if err := limiter.client.Expire(ctx, redisKey, limiter.window).Err(); err != nil {
			return Decision{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if count <= limiter.max {
		return Decision{Allowed: true}, nil
	}

	retryAfter, err := limiter.client.TTL(ctx, redisKey).Result()
	if err != nil || retryAfter <= 0 {
		retryAfter = limiter.window
	}

	return Decision{Allowed: false, RetryAfter: retryAfter}, nil
}
