package simconfig

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRateAtExactMinute(t *testing.T) {
	cfg := Defaults
	cfg.TransactionRates = map[int]float64{0: 1.0, 5: 2.5, 10: 0.5}

	assert.Equal(t, 2.5, cfg.RateAt(5))
}

func TestRateAtFallsBackToPriorMinute(t *testing.T) {
	cfg := Defaults
	cfg.TransactionRates = map[int]float64{0: 1.0, 5: 2.5, 10: 0.5}

	assert.Equal(t, 2.5, cfg.RateAt(7))
	assert.Equal(t, 1.0, cfg.RateAt(3))
}

func TestRateAtNoConfigReturnsZero(t *testing.T) {
	cfg := Defaults
	cfg.TransactionRates = nil

	assert.Equal(t, 0.0, cfg.RateAt(5))
}

func TestRateAtBeforeFirstConfiguredMinute(t *testing.T) {
	cfg := Defaults
	cfg.TransactionRates = map[int]float64{10: 0.5}

	assert.Equal(t, 0.0, cfg.RateAt(3))
}

func TestLoadMissingFileErrors(t *testing.T) {
	_, err := Load("/nonexistent/path/to/config.toml")
	assert.Error(t, err)
}
