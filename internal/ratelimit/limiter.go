// Package ratelimit provides a Redis-backed fixed-window request limiter.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// allowScript increments the window counter and sets its TTL on first use.
// Returns 1 when the request fits in the window, 0 otherwise.
const allowScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
    redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
if current > tonumber(ARGV[1]) then
    return 0
end
return 1
`

// Limiter allows at most limit requests per key per window.
type Limiter struct {
	client *redis.Client
	script *redis.Script
	prefix string
	limit  int
	window time.Duration
	now    func() time.Time
}

// New creates a limiter. A non-positive limit disables limiting.
func New(client *redis.Client, prefix string, limit int, window time.Duration) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	return &Limiter{
		client: client,
		script: redis.NewScript(allowScript),
		prefix: prefix,
		limit:  limit,
		window: window,
		now:    time.Now,
	}
}

// Allow records one request for key and reports whether it is within the
// limit for the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	bucket := l.now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	res, err := l.script.Run(ctx, l.client, []string{redisKey}, l.limit, l.window.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("rate limit %s: %w", key, err)
	}
	return res == 1, nil
}
