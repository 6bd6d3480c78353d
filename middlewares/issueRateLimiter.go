package middlewares

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"pragatipath-be/utils"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// QuotaWindow is how long a reporter's issue count lives.
const QuotaWindow = 24 * time.Hour

// Quota counts hits per key inside a fixed window.
type Quota interface {
	Hit(ctx context.Context, key string) (int64, error)
	RetryAfter(ctx context.Context, key string) (time.Duration, error)
}

// RedisQuota keeps one counter per key with a TTL set on the first hit.
type RedisQuota struct {
	client *redis.Client
	prefix string
	window time.Duration
}

func NewRedisQuota(client *redis.Client, prefix string) *RedisQuota {
	return &RedisQuota{client: client, prefix: prefix, window: QuotaWindow}
}

func (q *RedisQuota) key(k string) string {
	return q.prefix + ":" + k
}

func (q *RedisQuota) Hit(ctx context.Context, key string) (int64, error) {
	userKey := q.key(key)

	count, err := q.client.Incr(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error incrementing count: %w", err)
	}

	// Set TTL only for the first increment
	if count == 1 {
		if err := q.client.Expire(ctx, userKey, q.window).Err(); err != nil {
			return 0, fmt.Errorf("redis error setting TTL: %w", err)
		}
	}
	return count, nil
}

func (q *RedisQuota) RetryAfter(ctx context.Context, key string) (time.Duration, error) {
	return q.client.TTL(ctx, q.key(key)).Result()
}

// IssueRateLimiter caps how many issues one reporter may file per window.
// It must run after AuthMiddleware.
func IssueRateLimiter(quota Quota, limit int, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetString(UserIDKey)
		if userID == "" {
			utils.RespondError(c, logger, utils.Unauthorized("Access denied. No token provided."))
			return
		}

		ctx := c.Request.Context()
		count, err := quota.Hit(ctx, userID)
		if err != nil {
			utils.RespondError(c, logger, utils.Internal("Internal server error. Failed to report issue.", err))
			return
		}

		if count > int64(limit) {
			retryAfter, _ := quota.RetryAfter(ctx, userID)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Daily issue limit reached. Please try again later.",
				"code":        utils.CodeTooManyRequests,
				"retry_after": retryAfter.Seconds(),
			})
			return
		}

		c.Next()
	}
}
