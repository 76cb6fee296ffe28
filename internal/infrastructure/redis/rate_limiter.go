package redis

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/jhoicas/sweetshop-api/pkg/config"
	"github.com/redis/go-redis/v9"
)

// tokenBucketScript rellena y consume atómicamente el bucket guardado en un hash.
// Devuelve { permitido (0|1), tokens restantes, ms hasta el próximo token }.
var tokenBucketScript = redis.NewScript(`
	local key = KEYS[1]
	local now_ms = tonumber(ARGV[1])
	local capacity = tonumber(ARGV[2])
	local refill_tokens = tonumber(ARGV[3])
	local interval_ms = tonumber(ARGV[4])
	local ttl_seconds = tonumber(ARGV[5])

	local state = redis.call('HMGET', key, 'tokens', 'last_refill_ms')
	local tokens = tonumber(state[1])
	local last_refill = tonumber(state[2])

	if tokens == nil or last_refill == nil then
		tokens = capacity
		last_refill = now_ms
	end

	if interval_ms > 0 and refill_tokens > 0 then
		local elapsed = math.max(0, now_ms - last_refill)
		local intervals = math.floor(elapsed / interval_ms)
		if intervals > 0 then
			tokens = math.min(capacity, tokens + (intervals * refill_tokens))
			last_refill = last_refill + (intervals * interval_ms)
		end
	end

	local allowed = 0
	local retry_after_ms = 0
	if tokens > 0 then
		allowed = 1
		tokens = tokens - 1
	else
		retry_after_ms = interval_ms - (now_ms - last_refill)
		if retry_after_ms < 0 then retry_after_ms = 0 end
	end

	redis.call('HSET', key, 'tokens', tokens, 'last_refill_ms', last_refill)
	redis.call('EXPIRE', key, ttl_seconds)

	return { allowed, tokens, retry_after_ms }
`)

// Decision resultado de consumir un token.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int64
	RetryAfter time.Duration
}

// RetryAfterSeconds redondea hacia arriba para la cabecera Retry-After.
func (d Decision) RetryAfterSeconds() int {
	return int(math.Ceil(d.RetryAfter.Seconds()))
}

// RateLimiter token bucket distribuido por clave.
type RateLimiter struct {
	rdb    *redis.Client
	cfg    config.RateLimitConfig
	prefix string
	now    func() time.Time
}

// NewRateLimiter construye el limitador. prefix separa las claves de otros usos del mismo Redis.
func NewRateLimiter(rdb *redis.Client, cfg config.RateLimitConfig, prefix string) *RateLimiter {
	return &RateLimiter{rdb: rdb, cfg: cfg, prefix: prefix, now: time.Now}
}

// Allow consume un token del bucket identificado por key.
func (l *RateLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	// El bucket vive lo que tarda en llenarse desde cero, más un margen.
	fill := time.Duration(int64(l.cfg.Capacity)/int64(l.cfg.RefillTokens)+1) * l.cfg.RefillInterval
	ttl := int64(fill/time.Second) + 1

	vals, err := tokenBucketScript.Run(ctx, l.rdb, []string{l.prefix + ":" + key},
		l.now().UnixMilli(),
		l.cfg.Capacity,
		l.cfg.RefillTokens,
		l.cfg.RefillInterval.Milliseconds(),
		ttl,
	).Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit script: %w", err)
	}
	if len(vals) != 3 {
		return Decision{}, fmt.Errorf("rate limit script: resultado inesperado %v", vals)
	}
	return Decision{
		Allowed:    asInt64(vals[0]) == 1,
		Limit:      l.cfg.Capacity,
		Remaining:  asInt64(vals[1]),
		RetryAfter: time.Duration(asInt64(vals[2])) * time.Millisecond,
	}, nil
}

func asInt64(v any) int64 {
	switch t := v.(type) {
	case int64:
		return t
	case int:
		return int64(t)
	case float64:
		return int64(t)
	case string:
		if n, err := strconv.ParseInt(t, 10, 64); err == nil {
			return n
		}
	}
	return 0
}
