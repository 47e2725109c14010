package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CacheHealth reports cache store reachability.
type CacheHealth interface {
	Health(ctx context.Context) error
}

// HealthHandler answers liveness checks. A dead database fails the check; a
// dead cache only marks it degraded, since the service keeps answering from
// the database alone.
type HealthHandler struct {
	db    *gorm.DB
	cache CacheHealth
}

func NewHealthHandler(db *gorm.DB, cache CacheHealth) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(ctx)
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":   "unavailable",
			"database": err.Error(),
		})
		return
	}

	status := "ok"
	cacheStatus := "ok"
	if err := h.cache.Health(ctx); err != nil {
		status = "degraded"
		cacheStatus = "unavailable"
	}

	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"database": "ok",
		"cache":    cacheStatus,
	})
}
