package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeKeepsValidOverrides(t *testing.T) {
	cfg := DefaultAssistantConfig()
	cfg.HorizonDays = 120
	cfg.RecentDays = 14
	cfg.MarginLowThresholdPct = 20

	cfg.Sanitize()

	assert.Equal(t, 120, cfg.HorizonDays)
	assert.Equal(t, 14, cfg.RecentDays)
	assert.Equal(t, 20.0, cfg.MarginLowThresholdPct)
}

func TestSanitizeReplacesNonFiniteValues(t *testing.T) {
	def := DefaultAssistantConfig()

	cfg := DefaultAssistantConfig()
	cfg.DaysCoverLowThreshold = math.NaN()
	cfg.TrendDropThresholdPct = math.Inf(-1)
	cfg.HighStockMultiplier = math.Inf(1)

	cfg.Sanitize()

	assert.Equal(t, def.DaysCoverLowThreshold, cfg.DaysCoverLowThreshold)
	assert.Equal(t, def.TrendDropThresholdPct, cfg.TrendDropThresholdPct)
	assert.Equal(t, def.HighStockMultiplier, cfg.HighStockMultiplier)
}

func TestSanitizeRepairsWindowAndTTL(t *testing.T) {
	def := DefaultAssistantConfig()

	cfg := DefaultAssistantConfig()
	cfg.HorizonDays = 0
	cfg.RecentDays = -5
	cfg.CacheTTLSeconds = 0

	cfg.Sanitize()

	assert.Equal(t, def.HorizonDays, cfg.HorizonDays)
	assert.Equal(t, def.RecentDays, cfg.RecentDays)
	assert.Equal(t, def.CacheTTLSeconds, cfg.CacheTTLSeconds)
}

func TestSanitizeBoundsDiscountMarginFloor(t *testing.T) {
	def := DefaultAssistantConfig()

	// 100% would make the price floor divide by zero downstream.
	cfg := DefaultAssistantConfig()
	cfg.MinMarginAfterDiscountPct = 100
	cfg.Sanitize()
	assert.Equal(t, def.MinMarginAfterDiscountPct, cfg.MinMarginAfterDiscountPct)

	cfg = DefaultAssistantConfig()
	cfg.MinMarginAfterDiscountPct = -3
	cfg.Sanitize()
	assert.Equal(t, def.MinMarginAfterDiscountPct, cfg.MinMarginAfterDiscountPct)

	cfg = DefaultAssistantConfig()
	cfg.MinMarginAfterDiscountPct = 35
	cfg.Sanitize()
	assert.Equal(t, 35.0, cfg.MinMarginAfterDiscountPct)
}
