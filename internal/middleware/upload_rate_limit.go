package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// UploadRateLimit caps track uploads per uploader per calendar day.
// Signed-in uploaders are keyed by user ID, anonymous ones by client IP.
// A limit of 0 disables the check.
func UploadRateLimit(redisClient *redis.Client, cfg *config.Config, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || cfg.UploadDailyLimit == 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()

		uploader := "ip:" + c.ClientIP()
		if userID := CurrentUserID(c); userID != nil {
			uploader = "user:" + userID.String()
		}

		// resets at midnight
		now := time.Now()
		key := fmt.Sprintf("upload_limit:%s:%s", uploader, now.Format("2006-01-02"))

		count, err := redisClient.Get(ctx, key).Int()
		switch {
		case errors.Is(err, redis.Nil):
			midnight := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, now.Location())
			if err := redisClient.Set(ctx, key, 1, midnight.Sub(now)).Err(); err != nil {
				log.Warn("upload limiter failed to set key", zap.Error(err))
			}
		case err != nil:
			log.Warn("upload limiter unavailable", zap.Error(err))
		case count >= cfg.UploadDailyLimit:
			ttl, _ := redisClient.TTL(ctx, key).Result()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":               "upload_rate_limit_exceeded",
				"message":             "Слишком много загрузок за сегодня. Попробуйте завтра.",
				"retry_after_hours":   int(ttl.Hours()),
				"uploads_today":       count,
				"max_uploads_per_day": cfg.UploadDailyLimit,
			})
			return
		default:
			redisClient.Incr(ctx, key)
		}

		c.Next()
	}
}
