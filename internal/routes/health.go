package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/roadsmart/backend/internal/db"
	"gorm.io/gorm"
)

const version = "1.0.0"

// HealthHandler reports database and, when configured, Redis reachability.
func HealthHandler(gdb *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		services := gin.H{}
		overallStatus := "ok"
		statusCode := http.StatusOK

		dbStatus := gin.H{"status": "ok"}
		if err := db.Ping(gdb); err != nil {
			dbStatus = gin.H{"status": "error", "error": err.Error()}
			overallStatus = "error"
			statusCode = http.StatusServiceUnavailable
		}
		services["database"] = dbStatus

		if rdb != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()

			redisStatus := gin.H{"status": "ok"}
			if err := rdb.Ping(ctx).Err(); err != nil {
				redisStatus = gin.H{"status": "degraded", "error": err.Error()}
				if overallStatus == "ok" {
					overallStatus = "degraded"
				}
			}
			services["redis"] = redisStatus
		}

		c.JSON(statusCode, gin.H{
			"status":    overallStatus,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"version":   version,
			"services":  services,
		})
	}
}
