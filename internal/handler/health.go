package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/nazim1903/Businesstracker/internal/infra"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports store and cache connectivity. db is nil for the memory store
// and rdb is nil when the report cache is disabled; neither is then checked.
// The cache is optional, so only a store failure makes the service unhealthy.
func Health(driver string, db *gorm.DB, rdb *redis.Client, cache *infra.ReportCache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		storeStatus := "connected"
		if db != nil {
			sqlDB, err := db.DB()
			if err != nil || sqlDB.PingContext(ctx) != nil {
				storeStatus = "error"
			}
		}

		cacheStatus := "disabled"
		if rdb != nil {
			cacheStatus = "connected"
			if rdb.Ping(ctx).Err() != nil {
				cacheStatus = "error"
			}
		}

		status := http.StatusOK
		if storeStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		body := gin.H{
			"ok":    status == http.StatusOK,
			"store": gin.H{"driver": driver, "status": storeStatus},
			"cache": cacheStatus,
		}
		if cache != nil {
			body["cache_breaker"] = cache.State().String()
		}
		c.JSON(status, body)
	}
}
