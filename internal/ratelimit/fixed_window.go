package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

var fixedWindowScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// FixedWindowLimiter limits requests per key in a fixed time window
// counted in Redis. When Redis fails the request is allowed through.
type FixedWindowLimiter struct {
	limit  int
	window time.Duration

	client *redis.Client
	prefix string
	logger *logrus.Logger
	now    func() time.Time
}

// NewFixedWindowLimiter creates a Redis-backed limiter
func NewFixedWindowLimiter(client *redis.Client, prefix string, limit int, window time.Duration, logger *logrus.Logger) (*FixedWindowLimiter, error) {
	if limit <= 0 || window <= 0 {
		return nil, errors.New("rate limiter requires positive limit and window")
	}
	if client == nil {
		return nil, errors.New("rate limiter requires a redis client")
	}
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		prefix = "skillbridge"
	}
	return &FixedWindowLimiter{
		limit:  limit,
		window: window,
		client: client,
		prefix: prefix + ":ratelimit",
		logger: logger,
		now:    time.Now,
	}, nil
}

// Allow reports whether key is still within quota for the current window
func (l *FixedWindowLimiter) Allow(ctx context.Context, key string) bool {
	key = strings.TrimSpace(key)
	if key == "" {
		key = "unknown"
	}

	windowMs := l.window.Milliseconds()
	slot := l.now().UTC().UnixMilli() / windowMs
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, slot)

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, windowMs).Int64()
	if err != nil {
		if l.logger != nil {
			l.logger.WithError(err).WithField("key", key).Warn("Rate limiter unavailable, allowing request")
		}
		return true
	}
	return count <= int64(l.limit)
}

// Window returns the length of one counting window
func (l *FixedWindowLimiter) Window() time.Duration {
	return l.window
}
