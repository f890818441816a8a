package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/roadsmart/backend/internal/logger"
)

const requestIDHeader = "X-Request-ID"

// CustomLoggerMiddleware tags each request with an id and logs one line per request.
func CustomLoggerMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader(requestIDHeader)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set("request_id", requestID)
		c.Header(requestIDHeader, requestID)

		c.Next()

		userID, _ := CurrentUserID(c)
		fields := map[string]interface{}{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency":    time.Since(start).String(),
			"client_ip":  c.ClientIP(),
			"user_id":    userID,
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("[API] request failed", fields)
		case c.Writer.Status() >= 400:
			logger.Warn("[API] request rejected", fields)
		default:
			logger.Info("[API] request", fields)
		}
	}
}
