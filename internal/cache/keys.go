package cache

import (
	"fmt"
	"time"
)

// Absent filter parameters render as a literal placeholder so that requests
// with the same filter set, present or absent, collide on the same key.
const nullParam = "null"

func KeyLastTradingDates(limit int) string {
	return fmt.Sprintf("last_trading_dates:%d", limit)
}

func KeyDynamics(oilID, deliveryTypeID, deliveryBasisID string, startDate, endDate *time.Time) string {
	return fmt.Sprintf("dynamics:%s:%s:%s:%s:%s",
		strOrNull(oilID),
		strOrNull(deliveryTypeID),
		strOrNull(deliveryBasisID),
		timeOrNull(startDate),
		timeOrNull(endDate),
	)
}

func KeyTradingResults(oilID, deliveryTypeID, deliveryBasisID string, limit int) string {
	return fmt.Sprintf("trading_results:%s:%s:%s:%d",
		strOrNull(oilID),
		strOrNull(deliveryTypeID),
		strOrNull(deliveryBasisID),
		limit,
	)
}

func strOrNull(s string) string {
	if s == "" {
		return nullParam
	}
	return s
}

func timeOrNull(t *time.Time) string {
	if t == nil {
		return nullParam
	}
	return t.Format(time.RFC3339)
}
