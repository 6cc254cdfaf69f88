package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "secretvault:rl:"

var rateLimitScript = redis.NewScript(`
local key = KEYS[1]
local limit = tonumber(ARGV[1])
local window_ms = tonumber(ARGV[2])

local current = redis.call("INCR", key)
if current == 1 then
  redis.call("PEXPIRE", key, window_ms)
end

local ttl = redis.call("PTTL", key)
if ttl < 0 then
  ttl = window_ms
end

if current > limit then
  return {0, ttl}
end
return {1, ttl}
`)

// Redis shares counters between server instances. The window starts at the
// first attempt and is enforced by the key TTL.
type Redis struct {
	client redis.UniversalClient
	limit  int
	window time.Duration
	prefix string
}

func NewRedis(client redis.UniversalClient, limit int, window time.Duration, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &Redis{client: client, limit: limit, window: window, prefix: prefix}
}

func (l *Redis) Allow(ctx context.Context, key string, now time.Time) (Decision, error) {
	windowMS := int64(l.window / time.Millisecond)
	if windowMS <= 0 {
		return Decision{}, fmt.Errorf("invalid rate limit window")
	}

	res, err := rateLimitScript.Run(ctx, l.client, []string{l.prefix + key}, l.limit, windowMS).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("redis rate limit: %w", err)
	}

	vals, ok := res.([]interface{})
	if !ok || len(vals) != 2 {
		return Decision{}, fmt.Errorf("unexpected redis response")
	}
	allowed, ok := vals[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected redis response")
	}
	ttlMS, ok := vals[1].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected redis response")
	}

	return Decision{
		Allowed: allowed == 1,
		ResetAt: now.Add(time.Duration(ttlMS) * time.Millisecond),
	}, nil
}
