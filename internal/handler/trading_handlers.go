package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"spimexapi/internal/model"
	"spimexapi/internal/repository"
	"spimexapi/internal/service"
)

const dateLayout = "2006-01-02"

type lastTradingDatesQuery struct {
	Limit int `form:"limit,default=5" binding:"min=1,max=100"`
}

type dynamicsQuery struct {
	OilID           string `form:"oil_id"`
	DeliveryTypeID  string `form:"delivery_type_id"`
	DeliveryBasisID string `form:"delivery_basis_id"`
	StartDate       string `form:"start_date"`
	EndDate         string `form:"end_date"`
}

type tradingResultsQuery struct {
	OilID           string `form:"oil_id"`
	DeliveryTypeID  string `form:"delivery_type_id"`
	DeliveryBasisID string `form:"delivery_basis_id"`
	Limit           int    `form:"limit,default=10" binding:"min=1,max=100"`
}

type TradingHandler struct {
	service *service.TradingService
	logger  *logrus.Logger
}

func NewTradingHandler(service *service.TradingService, logger *logrus.Logger) *TradingHandler {
	return &TradingHandler{
		service: service,
		logger:  logger,
	}
}

func (h *TradingHandler) GetLastTradingDates(c *gin.Context) {
	var q lastTradingDatesQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	dates, err := h.service.LastTradingDates(c.Request.Context(), q.Limit)
	if err != nil {
		h.logger.WithError(err).Error("get_last_trading_dates failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	out := make([]string, 0, len(dates))
	for _, d := range dates {
		out = append(out, d.Format(dateLayout))
	}
	c.JSON(http.StatusOK, out)
}

func (h *TradingHandler) GetDynamics(c *gin.Context) {
	var q dynamicsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	startDate, err := parseDateParam(q.StartDate)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": fmt.Sprintf("start_date: %v", err)})
		return
	}
	endDate, err := parseDateParam(q.EndDate)
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": fmt.Sprintf("end_date: %v", err)})
		return
	}

	results, err := h.service.Dynamics(c.Request.Context(), repository.DynamicsFilter{
		OilID:           q.OilID,
		DeliveryTypeID:  q.DeliveryTypeID,
		DeliveryBasisID: q.DeliveryBasisID,
		StartDate:       startDate,
		EndDate:         endDate,
	})
	if err != nil {
		h.logger.WithError(err).Error("get_dynamics failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	if results == nil {
		results = []model.TradingResult{}
	}
	c.JSON(http.StatusOK, results)
}

func (h *TradingHandler) GetTradingResults(c *gin.Context) {
	var q tradingResultsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"detail": err.Error()})
		return
	}

	results, err := h.service.TradingResults(c.Request.Context(), repository.ResultsFilter{
		OilID:           q.OilID,
		DeliveryTypeID:  q.DeliveryTypeID,
		DeliveryBasisID: q.DeliveryBasisID,
	}, q.Limit)
	if err != nil {
		h.logger.WithError(err).Error("get_trading_results failed")
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal server error"})
		return
	}

	if results == nil {
		results = []model.TradingResult{}
	}
	c.JSON(http.StatusOK, results)
}

// parseDateParam accepts a plain date or an RFC 3339 datetime. An empty
// value means the filter is absent.
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("invalid datetime %q", value)
}
