package router

import (
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"spimexapi/internal/handler"
)

type Config struct {
	TradingHandler *handler.TradingHandler
	HealthHandler  *handler.HealthHandler
	RateLimitRPS   int
	RateLimitBurst int
}

func NewRouter(cfg *Config) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestID())
	router.Use(RateLimit(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst))

	registerTradingRoutes(router, cfg.TradingHandler)

	if cfg.HealthHandler != nil {
		router.GET("/healthz", cfg.HealthHandler.Check)
	}

	return router
}
