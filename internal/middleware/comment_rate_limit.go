package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/musiclib/backend/internal/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const commentBlockDuration = time.Hour

// CommentRateLimit throttles anonymous comments per client IP. Clients that
// keep posting after hitting the limit are blocked for an hour.
func CommentRateLimit(redisClient *redis.Client, cfg *config.Config, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if redisClient == nil || cfg.CommentRateLimit <= 0 {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		ip := c.ClientIP()
		blockKey := fmt.Sprintf("comment_blocked:%s", ip)
		countKey := fmt.Sprintf("comment_limit:%s", ip)

		if blocked, err := redisClient.Exists(ctx, blockKey).Result(); err == nil && blocked > 0 {
			ttl, _ := redisClient.TTL(ctx, blockKey).Result()
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":                 "comments_temporarily_blocked",
				"message":               "Комментарии временно заблокированы из-за подозрительной активности.",
				"blocked_until_minutes": int(ttl.Minutes()),
			})
			return
		}

		count, err := redisClient.Incr(ctx, countKey).Result()
		if err != nil {
			log.Warn("comment limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			redisClient.Expire(ctx, countKey, cfg.CommentRateWindow)
		}

		limit := int64(cfg.CommentRateLimit)
		switch {
		case count > 2*limit:
			_ = redisClient.Set(ctx, blockKey, "1", commentBlockDuration).Err()
			log.Info("comment poster blocked", zap.String("ip", ip), zap.Int64("attempts", count))
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":               "comments_temporarily_blocked",
				"message":             "Слишком много комментариев. Комментарии заблокированы на час.",
				"blocked_for_minutes": int(commentBlockDuration.Minutes()),
			})
			return
		case count > limit:
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":               "rate_limit_exceeded",
				"message":             "Слишком много комментариев. Подождите несколько минут.",
				"retry_after_minutes": int(cfg.CommentRateWindow.Minutes()),
				"warning":             "Дальнейшие попытки приведут к блокировке на час.",
			})
			return
		}

		c.Next()
	}
}
