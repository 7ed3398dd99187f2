package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RateLimiter limits requests per client IP to RateLimitRequests per
// RateLimitDuration. Without redis, or when redis fails, requests pass.
func RateLimiter(redisClient *redis.Client, cfg *config.Config, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		key := fmt.Sprintf("rate_limit:%s", c.ClientIP())

		count, err := redisClient.Get(ctx, key).Int()
		switch {
		case errors.Is(err, redis.Nil):
			if err := redisClient.Set(ctx, key, 1, cfg.RateLimitDuration).Err(); err != nil {
				log.Warn("rate limiter failed to set key", zap.Error(err))
			}
			setRateLimitHeaders(c, cfg.RateLimitRequests, cfg.RateLimitRequests-1, 0)
		case err != nil:
			log.Warn("rate limiter unavailable", zap.Error(err))
		case count >= cfg.RateLimitRequests:
			ttl, _ := redisClient.TTL(ctx, key).Result()
			setRateLimitHeaders(c, cfg.RateLimitRequests, 0, ttl)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "too_many_requests",
				"message":     "Слишком много запросов. Попробуйте позже.",
				"retry_after": int(ttl.Seconds()),
			})
			return
		default:
			newCount, _ := redisClient.Incr(ctx, key).Result()
			setRateLimitHeaders(c, cfg.RateLimitRequests, cfg.RateLimitRequests-int(newCount), 0)
		}

		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, limit, remaining int, reset time.Duration) {
	if remaining < 0 {
		remaining = 0
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
	if reset > 0 {
		c.Header("X-RateLimit-Reset", strconv.FormatInt(time.Now().Add(reset).Unix(), 10))
	}
}
