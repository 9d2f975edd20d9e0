package middlewares

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// RateLimitMiddleware applies a fixed one-minute window per client IP using
// a Redis counter. When Redis is unreachable the request is let through; the
// limiter protects against brute force, not against Redis outages.
func RateLimitMiddleware(client *redis.Client, limitPerMinute int) fiber.Handler {
	return func(c fiber.Ctx) error {
		window := time.Now().Unix() / 60
		key := fmt.Sprintf("ratelimit:%s:%s:%d", c.Path(), c.IP(), window)

		count, err := client.Incr(c.Context(), key).Result()
		if err != nil {
			log.Warn().Err(err).Msg("Rate limiter unavailable, allowing request")
			return c.Next()
		}

		if count == 1 {
			client.Expire(c.Context(), key, time.Minute)
		}

		if count > int64(limitPerMinute) {
			retryAfter := 60 - time.Now().Unix()%60
			c.Set("Retry-After", fmt.Sprintf("%d", retryAfter))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, try again later",
			})
		}

		return c.Next()
	}
}
