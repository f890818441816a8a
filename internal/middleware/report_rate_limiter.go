package middleware

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/roadsmart/backend/internal/logger"
)

const submissionWindow = 24 * time.Hour

// SubmissionCounter counts hits on key within a fixed window. It returns the count
// including this hit and the time left in the window.
type SubmissionCounter interface {
	Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client, prefix: "roadsmart:report-limit"}
}

func (rc *RedisCounter) Hit(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	key = rc.prefix + ":" + key

	count, err := rc.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis error incrementing count: %w", err)
	}

	// TTL is set on the first hit only so the window is fixed, not sliding
	if count == 1 {
		if err := rc.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, 0, fmt.Errorf("redis error setting TTL: %w", err)
		}
		return count, window, nil
	}

	ttl, err := rc.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, 0, fmt.Errorf("redis error reading TTL: %w", err)
	}
	return count, ttl, nil
}

// MemoryCounter is a single-process SubmissionCounter.
type MemoryCounter struct {
	mu      sync.Mutex
	windows map[string]*counterWindow
}

type counterWindow struct {
	count   int64
	resetAt time.Time
}

func NewMemoryCounter() *MemoryCounter {
	return &MemoryCounter{windows: make(map[string]*counterWindow)}
}

func (mc *MemoryCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	now := time.Now()
	w, ok := mc.windows[key]
	if !ok || !now.Before(w.resetAt) {
		w = &counterWindow{resetAt: now.Add(window)}
		mc.windows[key] = w
	}
	w.count++
	return w.count, w.resetAt.Sub(now), nil
}

// ReportRateLimiter caps report submissions per authenticated user per day. A nil
// counter disables the limit.
func ReportRateLimiter(counter SubmissionCounter, limit int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if counter == nil {
			c.Next()
			return
		}

		userID, ok := CurrentUserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		count, retryAfter, err := counter.Hit(c.Request.Context(), fmt.Sprintf("%d", userID), submissionWindow)
		if err != nil {
			logger.WithError(err, "rate_limiter").Error("Report rate limit check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "rate limit unavailable"})
			return
		}

		if count > int64(limit) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": int64(math.Ceil(retryAfter.Seconds())),
			})
			return
		}

		c.Next()
	}
}
