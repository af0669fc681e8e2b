package models

import (
	"math"
	"time"
)

// BusinessAssistantConfig is the mutable singleton that drives the
// recommendation heuristics. It is lazily created with defaults on first read
// and replaced wholesale by the admin endpoint; UpdatedAt doubles as the
// version every recommendation cache key embeds.
type BusinessAssistantConfig struct {
	ID int `db:"id" json:"-"`

	// Window defaults (days).
	HorizonDays int `db:"horizon_days" json:"horizonDays"`
	RecentDays  int `db:"recent_days" json:"recentDays"`

	// Replenishment thresholds.
	DaysCoverLowThreshold float64 `db:"days_cover_low_threshold" json:"daysCoverLowThreshold"`
	BuyTargetDays         float64 `db:"buy_target_days" json:"buyTargetDays"`

	// Rotation / stock thresholds.
	LowRotationUnitsThreshold float64 `db:"low_rotation_units_threshold" json:"lowRotationUnitsThreshold"`
	HighStockMultiplier       float64 `db:"high_stock_multiplier" json:"highStockMultiplier"`
	HighStockMinUnits         float64 `db:"high_stock_min_units" json:"highStockMinUnits"`

	// Trend thresholds (percent).
	TrendDropThresholdPct   float64 `db:"trend_drop_threshold_pct" json:"trendDropThresholdPct"`
	TrendGrowthThresholdPct float64 `db:"trend_growth_threshold_pct" json:"trendGrowthThresholdPct"`
	MinUnitsForGrowth       float64 `db:"min_units_for_growth" json:"minUnitsForGrowthStrategy"`

	// Margin thresholds (percent).
	MarginLowThresholdPct     float64 `db:"margin_low_threshold_pct" json:"marginLowThresholdPct"`
	TargetMarginPct           float64 `db:"target_margin_pct" json:"targetMarginPct"`
	MinMarginAfterDiscountPct float64 `db:"min_margin_after_discount_pct" json:"minMarginAfterDiscountPct"`

	// Price-vs-category thresholds and adjustment percentages.
	PriceAboveCategoryPct float64 `db:"price_above_category_pct" json:"priceAboveCategoryPct"`
	PriceBelowCategoryPct float64 `db:"price_below_category_pct" json:"priceBelowCategoryPct"`
	DecreasePricePct      float64 `db:"decrease_price_pct" json:"decreasePricePct"`
	IncreasePricePct      float64 `db:"increase_price_pct" json:"increasePricePct"`

	// Cache controls.
	CacheEnabled    bool `db:"cache_enabled" json:"cacheEnabled"`
	CacheTTLSeconds int  `db:"cache_ttl_seconds" json:"cacheTtlSeconds"`

	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}

// DefaultAssistantConfig returns the configuration used until an admin
// customizes it.
func DefaultAssistantConfig() BusinessAssistantConfig {
	return BusinessAssistantConfig{
		HorizonDays:               90,
		RecentDays:                30,
		DaysCoverLowThreshold:     15,
		BuyTargetDays:             30,
		LowRotationUnitsThreshold: 5,
		HighStockMultiplier:       3,
		HighStockMinUnits:         20,
		TrendDropThresholdPct:     -25,
		TrendGrowthThresholdPct:   25,
		MinUnitsForGrowth:         10,
		MarginLowThresholdPct:     15,
		TargetMarginPct:           30,
		MinMarginAfterDiscountPct: 10,
		PriceAboveCategoryPct:     10,
		PriceBelowCategoryPct:     -10,
		DecreasePricePct:          -10,
		IncreasePricePct:          5,
		CacheEnabled:              true,
		CacheTTLSeconds:           300,
	}
}

// Sanitize replaces non-finite or nonsensical overrides with their defaults so
// a bad value can never corrupt a computation downstream.
func (c *BusinessAssistantConfig) Sanitize() {
	def := DefaultAssistantConfig()

	if c.HorizonDays <= 0 {
		c.HorizonDays = def.HorizonDays
	}
	if c.RecentDays <= 0 {
		c.RecentDays = def.RecentDays
	}
	if c.CacheTTLSeconds <= 0 {
		c.CacheTTLSeconds = def.CacheTTLSeconds
	}

	fixups := []struct {
		field *float64
		def   float64
	}{
		{&c.DaysCoverLowThreshold, def.DaysCoverLowThreshold},
		{&c.BuyTargetDays, def.BuyTargetDays},
		{&c.LowRotationUnitsThreshold, def.LowRotationUnitsThreshold},
		{&c.HighStockMultiplier, def.HighStockMultiplier},
		{&c.HighStockMinUnits, def.HighStockMinUnits},
		{&c.TrendDropThresholdPct, def.TrendDropThresholdPct},
		{&c.TrendGrowthThresholdPct, def.TrendGrowthThresholdPct},
		{&c.MinUnitsForGrowth, def.MinUnitsForGrowth},
		{&c.MarginLowThresholdPct, def.MarginLowThresholdPct},
		{&c.TargetMarginPct, def.TargetMarginPct},
		{&c.MinMarginAfterDiscountPct, def.MinMarginAfterDiscountPct},
		{&c.PriceAboveCategoryPct, def.PriceAboveCategoryPct},
		{&c.PriceBelowCategoryPct, def.PriceBelowCategoryPct},
		{&c.DecreasePricePct, def.DecreasePricePct},
		{&c.IncreasePricePct, def.IncreasePricePct},
	}
	for _, f := range fixups {
		if math.IsNaN(*f.field) || math.IsInf(*f.field, 0) {
			*f.field = f.def
		}
	}

	// A discount-margin floor of 100% or more would make the price floor
	// formula divide by zero.
	if c.MinMarginAfterDiscountPct >= 100 || c.MinMarginAfterDiscountPct < 0 {
		c.MinMarginAfterDiscountPct = def.MinMarginAfterDiscountPct
	}
}
