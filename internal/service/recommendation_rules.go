package service

import (
	"fmt"
	"math"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/utils"
)

// ruleFunc evaluates one heuristic against a product aggregate. Rules are
// pure: same aggregate and config, same actions.
type ruleFunc func(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action

// rulePipeline is the fixed evaluation order. The fallback is applied
// separately because it only fires when nothing else did.
var rulePipeline = []ruleFunc{
	ruleCriticalReplenishment,
	ruleLowCoverReplenishment,
	ruleLowRotationHighStock,
	ruleNegativeTrend,
	ruleMarginRepair,
	ruleGrowthUnderpriced,
}

// actionPriority ranks action kinds for primary selection; lower wins.
var actionPriority = map[models.ActionKind]int{
	models.ActionBuyMoreInventory: 1,
	models.ActionPausePurchases:   2,
	models.ActionDecreasePrice:    3,
	models.ActionClearance:        3,
	models.ActionRunPromotion:     4,
	models.ActionIncreasePrice:    5,
	models.ActionReviewMargin:     6,
	models.ActionKeep:             7,
}

// EvaluateProduct runs the rule pipeline for one product and assembles its
// recommendation: all triggered actions, the primary one, justification
// strings and the impact score.
func EvaluateProduct(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) models.ProductRecommendation {
	var actions []models.Action
	for _, rule := range rulePipeline {
		actions = append(actions, rule(p, cfg)...)
	}
	if len(actions) == 0 {
		actions = ruleFallback(p, cfg)
	}

	primary := pickPrimary(actions)

	justification := make([]string, 0, len(actions))
	for _, a := range actions {
		if a.Reason != "" {
			justification = append(justification, a.Reason)
		}
	}

	return models.ProductRecommendation{
		ProductID:     p.ProductID,
		ProductName:   p.Name,
		Category:      p.Category,
		Metrics:       p.Metrics,
		Actions:       actions,
		Primary:       primary,
		Justification: justification,
		ImpactScore:   impactScore(p),
	}
}

// pickPrimary applies the fixed priority table, tie-broken by confidence.
func pickPrimary(actions []models.Action) models.Action {
	best := actions[0]
	for _, a := range actions[1:] {
		if actionPriority[a.Kind] < actionPriority[best.Kind] ||
			(actionPriority[a.Kind] == actionPriority[best.Kind] && a.Confidence > best.Confidence) {
			best = a
		}
	}
	return best
}

// impactScore is a heuristic priority proxy: recent revenue and profit at
// stake plus a fifth of the capital tied up in stock.
func impactScore(p *models.ProductAggregate) float64 {
	return utils.Round2(p.Recent.Revenue + p.Recent.Profit + 0.2*p.Metrics.InventoryValue)
}

// Rule 1: out of stock, or nearly so, while the product still sells.
func ruleCriticalReplenishment(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action {
	if p.Recent.Units == 0 {
		return nil
	}
	critical := p.WarehouseStock <= 0
	if !critical && p.Metrics.DaysCover != nil {
		critical = *p.Metrics.DaysCover <= math.Max(3, cfg.DaysCoverLowThreshold/4)
	}
	if !critical {
		return nil
	}

	qty := replenishmentQty(p, cfg)
	return []models.Action{{
		Kind:         models.ActionBuyMoreInventory,
		Severity:     models.SeverityCritical,
		Confidence:   0.92,
		Reason:       fmt.Sprintf("%s sells %.2f units/day but warehouse stock is %d", p.Name, p.Metrics.AvgDailyUnits, p.WarehouseStock),
		SuggestedQty: &qty,
	}}
}

// Rule 2: days of cover under the configured threshold with stock at or below
// the alert band.
func ruleLowCoverReplenishment(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action {
	if p.Metrics.DaysCover == nil || *p.Metrics.DaysCover >= cfg.DaysCoverLowThreshold {
		return nil
	}
	if float64(p.WarehouseStock) > math.Max(float64(p.LowStockAlert)*1.5, 5) {
		return nil
	}

	qty := replenishmentQty(p, cfg)
	return []models.Action{{
		Kind:         models.ActionBuyMoreInventory,
		Severity:     daysCoverSeverity(*p.Metrics.DaysCover),
		Confidence:   0.85,
		Reason:       fmt.Sprintf("%.1f days of cover left, below the %.0f-day threshold", *p.Metrics.DaysCover, cfg.DaysCoverLowThreshold),
		SuggestedQty: &qty,
	}}
}

// Rule 3: slow rotation with an oversized warehouse position.
func ruleLowRotationHighStock(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action {
	if !isLowRotation(p, cfg) {
		return nil
	}
	stock := float64(p.WarehouseStock)
	if stock <= float64(p.LowStockAlert)*cfg.HighStockMultiplier || stock < cfg.HighStockMinUnits {
		return nil
	}

	actions := []models.Action{{
		Kind:       models.ActionPausePurchases,
		Severity:   stockMagnitudeSeverity(stock, cfg),
		Confidence: 0.8,
		Reason:     fmt.Sprintf("only %d units sold recently against %d in stock", p.Recent.Units, p.WarehouseStock),
	}}

	if p.CategoryAvgPrice > 0 && p.Metrics.PriceVsCategoryPct > cfg.PriceAboveCategoryPct {
		actions = append(actions, priceAction(p, cfg, models.ActionDecreasePrice, models.SeverityMedium, 0.7,
			cfg.DecreasePricePct,
			fmt.Sprintf("priced %.1f%% above the category average with low rotation", p.Metrics.PriceVsCategoryPct)))
	} else {
		actions = append(actions, models.Action{
			Kind:       models.ActionRunPromotion,
			Severity:   models.SeverityMedium,
			Confidence: 0.65,
			Reason:     "stock is high and rotation is low at a competitive price",
		})
	}

	if p.Recent.Units == 0 && stock >= 4*cfg.HighStockMinUnits {
		actions = append(actions, models.Action{
			Kind:       models.ActionClearance,
			Severity:   models.SeverityHigh,
			Confidence: 0.75,
			Reason:     fmt.Sprintf("no recent sales with %d units tying up capital", p.WarehouseStock),
		})
	}

	return actions
}

// Rule 4: demand dropping while stock sits above the alert level.
func ruleNegativeTrend(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action {
	if isLowRotation(p, cfg) {
		return nil
	}
	if p.Metrics.UnitsGrowthPct >= cfg.TrendDropThresholdPct || p.WarehouseStock <= p.LowStockAlert {
		return nil
	}

	if p.CategoryAvgPrice > 0 && p.Metrics.PriceVsCategoryPct > cfg.PriceAboveCategoryPct {
		return []models.Action{priceAction(p, cfg, models.ActionDecreasePrice, models.SeverityHigh, 0.72,
			cfg.DecreasePricePct,
			fmt.Sprintf("units dropped %.1f%% while priced %.1f%% above category", p.Metrics.UnitsGrowthPct, p.Metrics.PriceVsCategoryPct))}
	}

	return []models.Action{{
		Kind:       models.ActionRunPromotion,
		Severity:   models.SeverityMedium,
		Confidence: 0.68,
		Reason:     fmt.Sprintf("units dropped %.1f%% versus the previous window", p.Metrics.UnitsGrowthPct),
	}}
}

// Rule 5: margin below the configured floor on a product that still sells.
func ruleMarginRepair(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action {
	if p.Recent.Units == 0 || p.Metrics.RecentMarginPct >= cfg.MarginLowThresholdPct {
		return nil
	}

	negative := p.Metrics.RecentMarginPct < 0
	severity := marginSeverity(p.Metrics.RecentMarginPct, cfg)
	if negative {
		severity = models.SeverityCritical
	}

	actions := []models.Action{{
		Kind:       models.ActionReviewMargin,
		Severity:   severity,
		Confidence: 0.82,
		Reason:     fmt.Sprintf("recent margin %.1f%% is below the %.0f%% threshold", p.Metrics.RecentMarginPct, cfg.MarginLowThresholdPct),
	}}

	switch {
	case negative:
		pct := math.Max(cfg.IncreasePricePct, 8)
		actions = append(actions, priceAction(p, cfg, models.ActionIncreasePrice, models.SeverityCritical, 0.78,
			pct, "selling below cost, price must recover margin"))
	case p.CategoryAvgPrice > 0 && p.Metrics.PriceVsCategoryPct < 0:
		actions = append(actions, priceAction(p, cfg, models.ActionIncreasePrice, models.SeverityMedium, 0.66,
			cfg.IncreasePricePct, "thin margin while priced below the category average"))
	}

	return actions
}

// Rule 6: growing demand while clearly underpriced for the category.
func ruleGrowthUnderpriced(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action {
	if float64(p.Recent.Units) < cfg.MinUnitsForGrowth {
		return nil
	}
	if p.Metrics.UnitsGrowthPct < cfg.TrendGrowthThresholdPct {
		return nil
	}
	if p.CategoryAvgPrice <= 0 || p.Metrics.PriceVsCategoryPct >= cfg.PriceBelowCategoryPct {
		return nil
	}

	return []models.Action{priceAction(p, cfg, models.ActionIncreasePrice, models.SeverityLow, 0.6,
		cfg.IncreasePricePct,
		fmt.Sprintf("demand grew %.1f%% while priced %.1f%% below category", p.Metrics.UnitsGrowthPct, p.Metrics.PriceVsCategoryPct))}
}

// ruleFallback covers products no rule matched.
func ruleFallback(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) []models.Action {
	if p.WarehouseStock > p.LowStockAlert {
		return []models.Action{
			{
				Kind:       models.ActionRunPromotion,
				Severity:   models.SeverityLow,
				Confidence: 0.5,
				Reason:     "no stronger signal; stock above alert level can move with a promotion",
			},
			{
				Kind:       models.ActionPausePurchases,
				Severity:   models.SeverityLow,
				Confidence: 0.5,
				Reason:     "hold purchases until the position shrinks",
			},
		}
	}
	return []models.Action{{
		Kind:       models.ActionKeep,
		Severity:   models.SeverityLow,
		Confidence: 0.55,
		Reason:     "metrics inside normal ranges",
	}}
}

// replenishmentQty targets buyTargetDays of cover at the recent daily rate.
func replenishmentQty(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) int {
	qty := int(math.Ceil(p.Metrics.AvgDailyUnits*cfg.BuyTargetDays)) - p.WarehouseStock
	if qty < 0 {
		qty = 0
	}
	return qty
}

func isLowRotation(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig) bool {
	return float64(p.Recent.Units) <= cfg.LowRotationUnitsThreshold
}

// daysCoverSeverity grades urgency by remaining days of cover.
func daysCoverSeverity(daysCover float64) models.Severity {
	switch {
	case daysCover <= 3:
		return models.SeverityCritical
	case daysCover <= 7:
		return models.SeverityHigh
	case daysCover <= 14:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// stockMagnitudeSeverity grades a pause recommendation by how oversized the
// position is relative to the high-stock floor.
func stockMagnitudeSeverity(stock float64, cfg *models.BusinessAssistantConfig) models.Severity {
	switch {
	case stock >= 4*cfg.HighStockMinUnits:
		return models.SeverityHigh
	case stock >= 2*cfg.HighStockMinUnits:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// marginSeverity grades a non-negative low margin against the threshold.
func marginSeverity(marginPct float64, cfg *models.BusinessAssistantConfig) models.Severity {
	switch {
	case marginPct < cfg.MarginLowThresholdPct/3:
		return models.SeverityHigh
	case marginPct < 2*cfg.MarginLowThresholdPct/3:
		return models.SeverityMedium
	default:
		return models.SeverityLow
	}
}

// currentPrice picks the first defined price for a product: client price,
// suggested price, distributor price, then the recent average.
func currentPrice(p *models.ProductAggregate) (float64, bool) {
	for _, v := range []*float64{p.ClientPrice, p.SuggestedPrice, p.DistributorPrice} {
		if v != nil && *v > 0 {
			return *v, true
		}
	}
	if p.RecentAvgPrice > 0 {
		return p.RecentAvgPrice, true
	}
	return 0, false
}

// priceAction builds a price-changing action with a bounded suggested price:
// the adjusted price never falls below the floor that keeps the configured
// minimum margin after discounts.
func priceAction(p *models.ProductAggregate, cfg *models.BusinessAssistantConfig, kind models.ActionKind, severity models.Severity, confidence, pct float64, reason string) models.Action {
	a := models.Action{
		Kind:         kind,
		Severity:     severity,
		Confidence:   confidence,
		Reason:       reason,
		SuggestedPct: &pct,
	}

	cur, ok := currentPrice(p)
	if !ok {
		return a
	}

	raw := cur * (1 + pct/100)
	floor := p.PurchasePrice / (1 - cfg.MinMarginAfterDiscountPct/100)
	if raw < floor {
		raw = floor
	}
	suggested := utils.Round2(raw)
	a.SuggestedPrice = &suggested
	return a
}
