package router

import (
	"github.com/gin-gonic/gin"

	"spimexapi/internal/handler"
)

func registerTradingRoutes(router *gin.Engine, tradingHandler *handler.TradingHandler) {
	router.GET("/get_last_trading_dates", tradingHandler.GetLastTradingDates)
	router.GET("/get_dynamics", tradingHandler.GetDynamics)
	router.GET("/get_trading_results", tradingHandler.GetTradingResults)
}
