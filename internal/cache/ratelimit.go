package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/dom/donutdot/internal/domain"
)

// RateLimiter allows one action per key per window.
type RateLimiter struct {
	rdb    *Redis
	window time.Duration
}

func NewRateLimiter(rdb *Redis, window time.Duration) *RateLimiter {
	return &RateLimiter{rdb: rdb, window: window}
}

func (l *RateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	ok, err := l.rdb.SetNX(ctx, "ratelimit:"+key, 1, l.window)
	if err != nil {
		return false, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return ok, nil
}
