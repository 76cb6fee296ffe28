package http

import (
	"context"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/sweetshop-api/internal/domain"
	"github.com/jhoicas/sweetshop-api/internal/infrastructure/redis"
	"github.com/rs/zerolog"
)

// Limiter consume un token del bucket de key. Lo implementa *redis.RateLimiter.
type Limiter interface {
	Allow(ctx context.Context, key string) (redis.Decision, error)
}

// RateLimit limita por IP de cliente. Si el limitador falla la petición pasa (fail-open)
// y se registra el error.
func RateLimit(limiter Limiter, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if limiter == nil {
			return c.Next()
		}
		d, err := limiter.Allow(c.UserContext(), c.IP())
		if err != nil {
			log.Warn().Err(err).Str("ip", c.IP()).Msg("rate limit no disponible")
			return c.Next()
		}
		c.Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Set("X-RateLimit-Remaining", strconv.FormatInt(d.Remaining, 10))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(d.RetryAfterSeconds()))
			return domain.ErrTooManyRequests
		}
		return c.Next()
	}
}
