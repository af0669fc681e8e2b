package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/utils"
)

type fakeAssistantSaleStore struct {
	sales []models.Sale
}

func (f *fakeAssistantSaleStore) FindConfirmedInRange(from, to time.Time) ([]models.Sale, error) {
	var out []models.Sale
	for _, s := range f.sales {
		if !s.SaleDate.Before(from) && !s.SaleDate.After(to) {
			out = append(out, s)
		}
	}
	return out, nil
}

type fakeAssistantProductStore struct {
	products []models.Product
}

func (f *fakeAssistantProductStore) GetAll(category string) ([]models.Product, error) {
	return f.products, nil
}

func assistantNow() time.Time {
	return time.Date(2025, 6, 30, 12, 0, 0, 0, time.UTC)
}

func confirmedSale(productID, qty int, price, profit float64, daysAgo int) models.Sale {
	return models.Sale{
		ProductID:     productID,
		Quantity:      qty,
		SalePrice:     price,
		TotalProfit:   profit,
		PaymentStatus: models.PaymentConfirmed,
		SaleDate:      assistantNow().AddDate(0, 0, -daysAgo),
	}
}

func TestResolveWindowDefaults(t *testing.T) {
	svc := NewAssistantService(&fakeAssistantSaleStore{}, &fakeAssistantProductStore{})
	cfg := models.DefaultAssistantConfig()
	now := assistantNow()

	win, err := svc.ResolveWindow(models.RecommendationJobParams{}, cfg, now)
	require.NoError(t, err)
	assert.Equal(t, 90, win.HorizonDays)
	assert.Equal(t, 30, win.RecentDays)
	assert.Equal(t, now.AddDate(0, 0, -90), win.HorizonStart)
	assert.Equal(t, now, win.HorizonEnd)
	assert.Equal(t, now.AddDate(0, 0, -30), win.RecentStart)
	assert.Equal(t, now.AddDate(0, 0, -60), win.PreviousStart)
	assert.False(t, win.Explicit)
}

func TestResolveWindowExplicitRange(t *testing.T) {
	svc := NewAssistantService(&fakeAssistantSaleStore{}, &fakeAssistantProductStore{})
	cfg := models.DefaultAssistantConfig()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	win, err := svc.ResolveWindow(models.RecommendationJobParams{StartDate: &start, EndDate: &end}, cfg, assistantNow())
	require.NoError(t, err)
	assert.True(t, win.Explicit)
	assert.Equal(t, start, win.HorizonStart)
	assert.Equal(t, end, win.HorizonEnd)
	assert.Equal(t, 59, win.HorizonDays)
}

func TestResolveWindowRejectsPartialAndMixedRange(t *testing.T) {
	svc := NewAssistantService(&fakeAssistantSaleStore{}, &fakeAssistantProductStore{})
	cfg := models.DefaultAssistantConfig()
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.ResolveWindow(models.RecommendationJobParams{StartDate: &start}, cfg, assistantNow())
	assert.ErrorIs(t, err, utils.ErrInvalidWindow)

	_, err = svc.ResolveWindow(models.RecommendationJobParams{EndDate: &end}, cfg, assistantNow())
	assert.ErrorIs(t, err, utils.ErrInvalidWindow)

	// horizonDays and an explicit range are mutually exclusive.
	_, err = svc.ResolveWindow(models.RecommendationJobParams{StartDate: &start, EndDate: &end, HorizonDays: 30}, cfg, assistantNow())
	assert.ErrorIs(t, err, utils.ErrInvalidWindow)

	// Inverted range.
	_, err = svc.ResolveWindow(models.RecommendationJobParams{StartDate: &end, EndDate: &start}, cfg, assistantNow())
	assert.ErrorIs(t, err, utils.ErrInvalidWindow)
}

func TestBuildAggregatesWindowsAndBaselines(t *testing.T) {
	products := &fakeAssistantProductStore{products: []models.Product{
		{ID: 1, Name: "Serum", Category: "skincare", PurchasePrice: 100, WarehouseStock: 50, LowStockAlert: 10},
		{ID: 2, Name: "Tonico", Category: "skincare", PurchasePrice: 80, WarehouseStock: 30, LowStockAlert: 5},
		{ID: 3, Name: "Crema", Category: "skincare", PurchasePrice: 60, WarehouseStock: 20, LowStockAlert: 5},
	}}
	sales := &fakeAssistantSaleStore{sales: []models.Sale{
		confirmedSale(1, 10, 200, 500, 5), // recent
		confirmedSale(1, 5, 220, 300, 45), // previous
		confirmedSale(2, 4, 150, 200, 10), // recent
		confirmedSale(1, 2, 210, 100, 80), // horizon only
	}}

	svc := NewAssistantService(sales, products)
	cfg := models.DefaultAssistantConfig()
	win, err := svc.ResolveWindow(models.RecommendationJobParams{}, cfg, assistantNow())
	require.NoError(t, err)

	aggs, err := svc.BuildAggregates(context.Background(), win, cfg)
	require.NoError(t, err)
	require.Len(t, aggs, 3)

	serum := aggs[0]
	assert.Equal(t, 1, serum.ProductID)
	assert.Equal(t, 17, serum.Total.Units)
	assert.Equal(t, 10, serum.Recent.Units)
	assert.Equal(t, 5, serum.Previous.Units)
	assert.Equal(t, 200.0, serum.RecentAvgPrice)

	// Category baseline is revenue-weighted across recent skincare sales:
	// (10*200 + 4*150) / 14 units.
	wantBaseline := (2000.0 + 600.0) / 14.0
	assert.InDelta(t, wantBaseline, serum.CategoryAvgPrice, 1e-9)
	assert.InDelta(t, wantBaseline, aggs[1].CategoryAvgPrice, 1e-9)

	// Products with zero sales stay in the result set.
	crema := aggs[2]
	assert.Equal(t, 3, crema.ProductID)
	assert.Equal(t, 0, crema.Total.Units)
	assert.Equal(t, 0.0, crema.Metrics.AvgDailyUnits)
	assert.Nil(t, crema.Metrics.DaysCover)
}

func TestBuildAggregatesIncludesUncataloguedSoldProduct(t *testing.T) {
	products := &fakeAssistantProductStore{products: []models.Product{
		{ID: 1, Name: "Serum", Category: "skincare", PurchasePrice: 100, WarehouseStock: 50},
	}}
	sales := &fakeAssistantSaleStore{sales: []models.Sale{
		confirmedSale(9, 3, 120, 90, 2), // sold but deactivated mid-horizon
	}}

	svc := NewAssistantService(sales, products)
	cfg := models.DefaultAssistantConfig()
	win, err := svc.ResolveWindow(models.RecommendationJobParams{}, cfg, assistantNow())
	require.NoError(t, err)

	aggs, err := svc.BuildAggregates(context.Background(), win, cfg)
	require.NoError(t, err)
	require.Len(t, aggs, 2)
	assert.Equal(t, 9, aggs[1].ProductID)
	assert.Equal(t, 3, aggs[1].Recent.Units)
}

func TestDeriveMetricsGrowthEdges(t *testing.T) {
	win := AggregationWindow{RecentDays: 30}

	// Sales appearing from nothing report +100%.
	fresh := models.ProductAggregate{Recent: models.SalesRollup{Units: 12}}
	assert.Equal(t, 100.0, deriveMetrics(&fresh, win).UnitsGrowthPct)

	// No sales in either window reports 0, not NaN.
	idle := models.ProductAggregate{}
	assert.Equal(t, 0.0, deriveMetrics(&idle, win).UnitsGrowthPct)

	// Regular case.
	steady := models.ProductAggregate{
		Recent:   models.SalesRollup{Units: 6},
		Previous: models.SalesRollup{Units: 8},
	}
	assert.InDelta(t, -25.0, deriveMetrics(&steady, win).UnitsGrowthPct, 1e-9)
}

func TestDeriveMetricsDaysCover(t *testing.T) {
	win := AggregationWindow{RecentDays: 30}

	p := models.ProductAggregate{
		WarehouseStock: 60,
		Recent:         models.SalesRollup{Units: 30},
	}
	m := deriveMetrics(&p, win)
	assert.Equal(t, 1.0, m.AvgDailyUnits)
	require.NotNil(t, m.DaysCover)
	assert.Equal(t, 60.0, *m.DaysCover)

	// Zero sell-through: cover is unknown, not infinite.
	stale := models.ProductAggregate{WarehouseStock: 60}
	assert.Nil(t, deriveMetrics(&stale, win).DaysCover)
}

func TestDeriveMetricsPriceVsCategoryGuard(t *testing.T) {
	win := AggregationWindow{RecentDays: 30}

	// No recent own price: signal stays neutral instead of reporting -100%.
	p := models.ProductAggregate{CategoryAvgPrice: 150}
	assert.Equal(t, 0.0, deriveMetrics(&p, win).PriceVsCategoryPct)

	priced := models.ProductAggregate{
		RecentAvgPrice:   165,
		CategoryAvgPrice: 150,
		Recent:           models.SalesRollup{Units: 1},
	}
	assert.InDelta(t, 10.0, deriveMetrics(&priced, win).PriceVsCategoryPct, 1e-9)
}
