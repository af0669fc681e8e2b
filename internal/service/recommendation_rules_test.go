package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distriventas/dv_api/internal/models"
)

func testConfig() models.BusinessAssistantConfig {
	return models.DefaultAssistantConfig()
}

func aggregateWithMetrics(p models.ProductAggregate) *models.ProductAggregate {
	win := AggregationWindow{RecentDays: 30}
	p.Metrics = deriveMetrics(&p, win)
	return &p
}

func findAction(actions []models.Action, kind models.ActionKind) *models.Action {
	for i := range actions {
		if actions[i].Kind == kind {
			return &actions[i]
		}
	}
	return nil
}

func TestCriticalReplenishment(t *testing.T) {
	cfg := testConfig()
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      1,
		Name:           "Serum",
		PurchasePrice:  100,
		WarehouseStock: 5,
		LowStockAlert:  10,
		Recent:         models.SalesRollup{Units: 60, Revenue: 12000, Profit: 3000},
	})

	rec := EvaluateProduct(p, &cfg)

	buy := findAction(rec.Actions, models.ActionBuyMoreInventory)
	require.NotNil(t, buy)
	assert.Equal(t, models.SeverityCritical, buy.Severity)
	assert.Equal(t, 0.92, buy.Confidence)
	// Target 30 days of cover at 2 units per day, minus the 5 on hand.
	require.NotNil(t, buy.SuggestedQty)
	assert.Equal(t, 55, *buy.SuggestedQty)

	assert.Equal(t, models.ActionBuyMoreInventory, rec.Primary.Kind)
}

func TestCriticalReplenishmentAtBandBoundary(t *testing.T) {
	cfg := testConfig()
	// 40 units over 30 days with 5 in stock is 3.75 days of cover, right at
	// the critical band edge under the default threshold.
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      1,
		Name:           "Serum",
		PurchasePrice:  10000,
		WarehouseStock: 5,
		LowStockAlert:  10,
		Recent:         models.SalesRollup{Units: 40, Revenue: 600000, Profit: 200000},
	})

	require.NotNil(t, p.Metrics.DaysCover)
	assert.InDelta(t, 3.75, *p.Metrics.DaysCover, 1e-9)

	rec := EvaluateProduct(p, &cfg)

	buy := findAction(rec.Actions, models.ActionBuyMoreInventory)
	require.NotNil(t, buy)
	assert.Equal(t, models.SeverityCritical, buy.Severity)
	assert.Equal(t, 0.92, buy.Confidence)
	require.NotNil(t, buy.SuggestedQty)
	assert.Equal(t, 35, *buy.SuggestedQty)

	assert.Equal(t, models.ActionBuyMoreInventory, rec.Primary.Kind)
	assert.Equal(t, models.SeverityCritical, rec.Primary.Severity)
}

func TestCriticalReplenishmentSkipsDeadProduct(t *testing.T) {
	cfg := testConfig()
	// Out of stock but also not selling: replenishing serves nothing.
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      1,
		WarehouseStock: 0,
		LowStockAlert:  10,
	})

	rec := EvaluateProduct(p, &cfg)
	assert.Nil(t, findAction(rec.Actions, models.ActionBuyMoreInventory))
}

func TestLowCoverReplenishmentSeverity(t *testing.T) {
	cfg := testConfig()
	// 5 units at 0.5/day is 10 days of cover: below the 15-day threshold but
	// above the critical band.
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      2,
		WarehouseStock: 5,
		LowStockAlert:  4,
		Recent:         models.SalesRollup{Units: 15, Revenue: 3000, Profit: 600},
	})

	rec := EvaluateProduct(p, &cfg)

	buy := findAction(rec.Actions, models.ActionBuyMoreInventory)
	require.NotNil(t, buy)
	assert.Equal(t, models.SeverityMedium, buy.Severity)
	assert.Equal(t, 0.85, buy.Confidence)
}

func TestLowRotationHighStockPausesAndPromotes(t *testing.T) {
	cfg := testConfig()
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      3,
		PurchasePrice:  50,
		WarehouseStock: 60,
		LowStockAlert:  5,
		Recent:         models.SalesRollup{Units: 2, Revenue: 200, Profit: 40},
	})

	rec := EvaluateProduct(p, &cfg)

	require.NotNil(t, findAction(rec.Actions, models.ActionPausePurchases))
	// Competitive price: promotion instead of a price cut.
	assert.NotNil(t, findAction(rec.Actions, models.ActionRunPromotion))
	assert.Nil(t, findAction(rec.Actions, models.ActionDecreasePrice))

	assert.Equal(t, models.ActionPausePurchases, rec.Primary.Kind)
}

func TestLowRotationOverpricedCutsPrice(t *testing.T) {
	cfg := testConfig()
	price := 300.0
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:        3,
		PurchasePrice:    50,
		ClientPrice:      &price,
		WarehouseStock:   60,
		LowStockAlert:    5,
		Recent:           models.SalesRollup{Units: 2, Revenue: 600, Profit: 120},
		RecentAvgPrice:   300,
		CategoryAvgPrice: 200,
	})

	rec := EvaluateProduct(p, &cfg)

	cut := findAction(rec.Actions, models.ActionDecreasePrice)
	require.NotNil(t, cut)
	require.NotNil(t, cut.SuggestedPrice)
	// 300 at -10% stays well above the margin floor.
	assert.Equal(t, 270.0, *cut.SuggestedPrice)
}

func TestClearanceForDeadOversizedStock(t *testing.T) {
	cfg := testConfig()
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      4,
		PurchasePrice:  50,
		WarehouseStock: 120,
		LowStockAlert:  5,
	})

	rec := EvaluateProduct(p, &cfg)

	clearance := findAction(rec.Actions, models.ActionClearance)
	require.NotNil(t, clearance)
	assert.Equal(t, models.SeverityHigh, clearance.Severity)
}

func TestNegativeTrendPromotion(t *testing.T) {
	cfg := testConfig()
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      5,
		PurchasePrice:  50,
		WarehouseStock: 40,
		LowStockAlert:  5,
		Recent:         models.SalesRollup{Units: 9, Revenue: 900, Profit: 200},
		Previous:       models.SalesRollup{Units: 20, Revenue: 2000, Profit: 450},
	})

	rec := EvaluateProduct(p, &cfg)

	promo := findAction(rec.Actions, models.ActionRunPromotion)
	require.NotNil(t, promo)
	assert.Nil(t, findAction(rec.Actions, models.ActionPausePurchases))
}

func TestMarginRepairNegativeMargin(t *testing.T) {
	cfg := testConfig()
	price := 100.0
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      6,
		PurchasePrice:  110,
		ClientPrice:    &price,
		WarehouseStock: 10,
		LowStockAlert:  5,
		Recent:         models.SalesRollup{Units: 20, Revenue: 2000, Profit: -200},
	})

	rec := EvaluateProduct(p, &cfg)

	review := findAction(rec.Actions, models.ActionReviewMargin)
	require.NotNil(t, review)
	assert.Equal(t, models.SeverityCritical, review.Severity)

	raise := findAction(rec.Actions, models.ActionIncreasePrice)
	require.NotNil(t, raise)
	require.NotNil(t, raise.SuggestedPrice)
	// The floor keeps the minimum post-discount margin: 110 / 0.9.
	assert.InDelta(t, 122.22, *raise.SuggestedPrice, 0.01)
}

func TestGrowthUnderpricedRaisesPrice(t *testing.T) {
	cfg := testConfig()
	price := 100.0
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:        7,
		PurchasePrice:    40,
		ClientPrice:      &price,
		WarehouseStock:   80,
		LowStockAlert:    5,
		Recent:           models.SalesRollup{Units: 30, Revenue: 3000, Profit: 1500},
		Previous:         models.SalesRollup{Units: 20, Revenue: 2000, Profit: 1000},
		RecentAvgPrice:   100,
		CategoryAvgPrice: 125,
	})

	rec := EvaluateProduct(p, &cfg)

	raise := findAction(rec.Actions, models.ActionIncreasePrice)
	require.NotNil(t, raise)
	require.NotNil(t, raise.SuggestedPrice)
	assert.Equal(t, 105.0, *raise.SuggestedPrice)
}

func TestFallbackKeep(t *testing.T) {
	cfg := testConfig()
	// Healthy rotation, sane margin, stock under the alert level: no rule fires.
	p := aggregateWithMetrics(models.ProductAggregate{
		ProductID:      8,
		PurchasePrice:  50,
		WarehouseStock: 4,
		LowStockAlert:  5,
		Recent:         models.SalesRollup{Units: 2, Revenue: 400, Profit: 150},
		Previous:       models.SalesRollup{Units: 2, Revenue: 400, Profit: 150},
	})

	rec := EvaluateProduct(p, &cfg)

	require.NotEmpty(t, rec.Actions)
	assert.Equal(t, models.ActionKeep, rec.Primary.Kind)
}

func TestPrimaryFollowsPriorityOverConfidence(t *testing.T) {
	actions := []models.Action{
		{Kind: models.ActionRunPromotion, Confidence: 0.99},
		{Kind: models.ActionBuyMoreInventory, Confidence: 0.6},
		{Kind: models.ActionPausePurchases, Confidence: 0.9},
	}
	assert.Equal(t, models.ActionBuyMoreInventory, pickPrimary(actions).Kind)

	// Equal priority falls back to confidence.
	tied := []models.Action{
		{Kind: models.ActionDecreasePrice, Confidence: 0.6},
		{Kind: models.ActionClearance, Confidence: 0.8},
	}
	assert.Equal(t, models.ActionClearance, pickPrimary(tied).Kind)
}

func TestImpactScore(t *testing.T) {
	p := aggregateWithMetrics(models.ProductAggregate{
		PurchasePrice:  10,
		WarehouseStock: 100,
		Recent:         models.SalesRollup{Units: 10, Revenue: 500, Profit: 200},
	})
	// 500 + 200 + 0.2 * 1000.
	assert.Equal(t, 900.0, impactScore(p))
}
