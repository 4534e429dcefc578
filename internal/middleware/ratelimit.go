package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/campus-gate-entry/internal/config"
)

// NewRateLimiter returns a fixed-window limiter backed by Redis. The
// window counter is keyed on client IP plus authenticated user so a
// single kiosk hammering the API cannot starve the others. When Redis
// is unavailable or the limiter disabled, requests pass through.
func NewRateLimiter(cfg config.RateLimitConfig, rdb *redis.Client) echo.MiddlewareFunc {
	if !cfg.Enabled || rdb == nil {
		return func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error { return next(c) }
		}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			who := c.RealIP()
			if uid := c.Get("user_id"); uid != nil {
				who = fmt.Sprintf("%s:%v", who, uid)
			}
			window := time.Now().Unix() / int64(cfg.Window.Seconds())
			key := fmt.Sprintf("%s:%s:%d", cfg.Prefix, who, window)

			n, err := rdb.Incr(ctx, key).Result()
			if err != nil {
				// Redis down: fail open.
				return next(c)
			}
			if n == 1 {
				_ = rdb.Expire(ctx, key, cfg.Window).Err()
			}

			remaining := int64(cfg.Limit) - n
			if remaining < 0 {
				remaining = 0
			}
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.FormatInt(remaining, 10))

			if n > int64(cfg.Limit) {
				retry := cfg.Window - time.Duration(time.Now().Unix()%int64(cfg.Window.Seconds()))*time.Second
				h.Set("Retry-After", strconv.Itoa(int(retry.Seconds())))
				return c.JSON(http.StatusTooManyRequests, echo.Map{"error": "rate limit exceeded"})
			}
			return next(c)
		}
	}
}
