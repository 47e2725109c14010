package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestKeyLastTradingDates(t *testing.T) {
	assert.Equal(t, "last_trading_dates:5", KeyLastTradingDates(5))
	assert.Equal(t, KeyLastTradingDates(7), KeyLastTradingDates(7))
	assert.NotEqual(t, KeyLastTradingDates(5), KeyLastTradingDates(10))
}

func TestKeyDynamics(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)

	key := KeyDynamics("A1", "", "B2", &start, &end)
	assert.Equal(t, "dynamics:A1:null:B2:2024-03-01T00:00:00Z:2024-03-31T00:00:00Z", key)

	// identical parameters always derive the identical key
	assert.Equal(t, key, KeyDynamics("A1", "", "B2", &start, &end))

	// any single differing parameter derives a different key
	assert.NotEqual(t, key, KeyDynamics("A2", "", "B2", &start, &end))
	assert.NotEqual(t, key, KeyDynamics("A1", "D1", "B2", &start, &end))
	assert.NotEqual(t, key, KeyDynamics("A1", "", "B2", nil, &end))
	assert.NotEqual(t, key, KeyDynamics("A1", "", "B2", &start, nil))
}

func TestKeyDynamicsAllAbsent(t *testing.T) {
	assert.Equal(t, "dynamics:null:null:null:null:null", KeyDynamics("", "", "", nil, nil))
}

func TestKeyTradingResults(t *testing.T) {
	key := KeyTradingResults("A1", "D1", "", 10)
	assert.Equal(t, "trading_results:A1:D1:null:10", key)
	assert.Equal(t, key, KeyTradingResults("A1", "D1", "", 10))
	assert.NotEqual(t, key, KeyTradingResults("A1", "D1", "", 11))
	assert.NotEqual(t, key, KeyTradingResults("A1", "D1", "B2", 10))
}
