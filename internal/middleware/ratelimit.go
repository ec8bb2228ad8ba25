package middleware

import (
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stadtnetz/stops_core/internal/cache"
)

// RateLimitConfig holds per-window request limits for one client IP
type RateLimitConfig struct {
	PerSecond int
	PerMinute int
}

// DefaultRateLimits are generous: the API is public and read-only
var DefaultRateLimits = RateLimitConfig{
	PerSecond: 20,
	PerMinute: 600,
}

// RateLimitMiddleware enforces per-IP request limits backed by Redis
// counters. If Redis is unavailable the request passes through: rate
// limiting degrades before availability does.
func RateLimitMiddleware(limits RateLimitConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx := c.Context()
		clientIP := c.IP()
		now := time.Now()

		keySecond := cache.RequestCountKey(clientIP, fmt.Sprintf("second:%d", now.Unix()))
		keyMinute := cache.RequestCountKey(clientIP, "minute:"+now.Format("2006-01-02T15:04"))

		countSecond, err := cache.IncrementWindow(ctx, keySecond, 2*time.Second)
		if err != nil {
			log.Printf("Rate limit check failed: %v", err)
			return c.Next()
		}
		if countSecond > int64(limits.PerSecond) {
			return tooManyRequests(c, "per-second", 1)
		}

		countMinute, err := cache.IncrementWindow(ctx, keyMinute, 2*time.Minute)
		if err != nil {
			log.Printf("Rate limit check failed: %v", err)
			return c.Next()
		}
		if countMinute > int64(limits.PerMinute) {
			retryAfter := 60 - now.Second()
			return tooManyRequests(c, "per-minute", retryAfter)
		}

		return c.Next()
	}
}

func tooManyRequests(c *fiber.Ctx, window string, retryAfterSecs int) error {
	c.Set("Retry-After", strconv.Itoa(retryAfterSecs))
	return c.Status(429).JSON(fiber.Map{
		"error": fmt.Sprintf("rate limit exceeded (%s)", window),
	})
}
