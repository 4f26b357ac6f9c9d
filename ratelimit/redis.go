// Package ratelimit provides the pre-flight request limiter for workflow
// runs.
//
// Information Hiding:
// - Counter backend and window arithmetic hidden behind Check
// - Backend outages degrade to allowing the request
package ratelimit

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// ExceededMessage is returned to callers that hit the limit.
const ExceededMessage = "Rate limit exceeded. Please try again a bit later."

// Limiter is a fixed-window counter on Redis. All runs share one window;
// the limit protects the model backends, not individual users.
type Limiter struct {
	client *redis.Client
	key    string
	limit  int64
	window time.Duration
	logger *log.Logger
}

// NewLimiter creates a limiter allowing limit requests per window.
func NewLimiter(client *redis.Client, limit int, window time.Duration, logger *log.Logger) *Limiter {
	return &Limiter{
		client: client,
		key:    "adforge:ratelimit",
		limit:  int64(limit),
		window: window,
		logger: logger,
	}
}

// Check counts this request against the current window. It reports whether
// the limit is exceeded, with a user-facing message when it is. Redis
// failures are logged and the request is allowed through: losing rate
// limiting briefly is better than refusing all traffic.
func (l *Limiter) Check(ctx context.Context) (bool, string) {
	windowStart := time.Now().UnixMilli() / l.window.Milliseconds()
	key := fmt.Sprintf("%s:%d", l.key, windowStart)

	count, err := l.client.Incr(ctx, key).Result()
	if err != nil {
		l.logger.Printf("[ratelimit] check failed, allowing request: %v", err)
		return false, ""
	}
	if count == 1 {
		if err := l.client.Expire(ctx, key, l.window).Err(); err != nil {
			l.logger.Printf("[ratelimit] expire failed: %v", err)
		}
	}

	if count > l.limit {
		return true, ExceededMessage
	}
	return false, ""
}
