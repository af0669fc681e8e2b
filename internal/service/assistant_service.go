package service

import (
	"context"
	"sort"
	"time"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/utils"
)

// AssistantSaleStore is the sales read the aggregator performs.
type AssistantSaleStore interface {
	FindConfirmedInRange(from, to time.Time) ([]models.Sale, error)
}

// AssistantProductStore is the catalog read the aggregator performs.
type AssistantProductStore interface {
	GetAll(category string) ([]models.Product, error)
}

// AssistantService builds the unified per-product dataset the rule engine
// evaluates: the union of the catalog and every product with confirmed sales
// in the horizon, with three windowed rollups and category price baselines.
// It issues exactly two bulk reads per run.
type AssistantService struct {
	sales    AssistantSaleStore
	products AssistantProductStore
}

// NewAssistantService constructs an AssistantService.
func NewAssistantService(sales AssistantSaleStore, products AssistantProductStore) *AssistantService {
	return &AssistantService{sales: sales, products: products}
}

// AggregationWindow holds the resolved time windows of one run.
type AggregationWindow struct {
	Now           time.Time
	HorizonDays   int
	RecentDays    int
	HorizonStart  time.Time
	HorizonEnd    time.Time
	RecentStart   time.Time
	PreviousStart time.Time
	Explicit      bool
}

// ResolveWindow derives the windows from request parameters and config
// defaults. An explicit [start, end] range overrides the horizon and is
// mutually exclusive with horizonDays; the recent/previous trend windows
// always trail the current time.
func (s *AssistantService) ResolveWindow(params models.RecommendationJobParams, cfg models.BusinessAssistantConfig, now time.Time) (AggregationWindow, error) {
	win := AggregationWindow{Now: now}

	win.RecentDays = params.RecentDays
	if win.RecentDays <= 0 {
		win.RecentDays = cfg.RecentDays
	}
	win.RecentStart = now.AddDate(0, 0, -win.RecentDays)
	win.PreviousStart = now.AddDate(0, 0, -2*win.RecentDays)

	explicit := params.StartDate != nil || params.EndDate != nil
	if explicit {
		if params.StartDate == nil || params.EndDate == nil || params.HorizonDays > 0 {
			return AggregationWindow{}, utils.ErrInvalidWindow
		}
		if params.EndDate.Before(*params.StartDate) {
			return AggregationWindow{}, utils.ErrInvalidWindow
		}
		win.Explicit = true
		win.HorizonStart = *params.StartDate
		win.HorizonEnd = *params.EndDate
		win.HorizonDays = int(params.EndDate.Sub(*params.StartDate).Hours() / 24)
		return win, nil
	}

	win.HorizonDays = params.HorizonDays
	if win.HorizonDays <= 0 {
		win.HorizonDays = cfg.HorizonDays
	}
	win.HorizonStart = now.AddDate(0, 0, -win.HorizonDays)
	win.HorizonEnd = now
	return win, nil
}

// rollupAccumulator is the mutable reduction state for one product. It never
// leaves this package: the public result is the immutable ProductAggregate.
type rollupAccumulator struct {
	total    models.SalesRollup
	recent   models.SalesRollup
	previous models.SalesRollup

	recentWeightedPriceSum float64
}

// categoryBaseline accumulates the revenue-weighted recent price per category.
type categoryBaseline struct {
	weightedSum float64
	units       float64
}

// BuildAggregates runs the aggregation pipeline: two bulk reads, one reducer
// pass over the ordered sales, then metric derivation per product.
func (s *AssistantService) BuildAggregates(ctx context.Context, win AggregationWindow, cfg models.BusinessAssistantConfig) ([]models.ProductAggregate, error) {
	products, err := s.products.GetAll("")
	if err != nil {
		return nil, err
	}
	sales, err := s.sales.FindConfirmedInRange(win.HorizonStart, win.HorizonEnd)
	if err != nil {
		return nil, err
	}

	catalog := make(map[int]models.Product, len(products))
	for _, p := range products {
		catalog[p.ID] = p
	}

	accs := make(map[int]*rollupAccumulator)
	baselines := make(map[string]*categoryBaseline)

	for _, sale := range sales {
		acc := accs[sale.ProductID]
		if acc == nil {
			acc = &rollupAccumulator{}
			accs[sale.ProductID] = acc
		}

		units := sale.Quantity
		revenue := sale.SalePrice * float64(sale.Quantity)

		addRollup(&acc.total, units, revenue, sale.TotalProfit)

		switch {
		case !sale.SaleDate.Before(win.RecentStart):
			addRollup(&acc.recent, units, revenue, sale.TotalProfit)
			acc.recentWeightedPriceSum += revenue

			if p, ok := catalog[sale.ProductID]; ok && p.Category != "" {
				b := baselines[p.Category]
				if b == nil {
					b = &categoryBaseline{}
					baselines[p.Category] = b
				}
				b.weightedSum += revenue
				b.units += float64(units)
			}
		case !sale.SaleDate.Before(win.PreviousStart):
			addRollup(&acc.previous, units, revenue, sale.TotalProfit)
		}
	}

	// Union: every catalog product, plus sold products missing from the
	// catalog (deactivated mid-horizon). Zero-sale products must not drop out.
	ids := make([]int, 0, len(catalog)+len(accs))
	for id := range catalog {
		ids = append(ids, id)
	}
	for id := range accs {
		if _, ok := catalog[id]; !ok {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)

	aggregates := make([]models.ProductAggregate, 0, len(ids))
	for _, id := range ids {
		p := catalog[id]
		acc := accs[id]
		if acc == nil {
			acc = &rollupAccumulator{}
		}

		agg := models.ProductAggregate{
			ProductID:        id,
			Name:             p.Name,
			Category:         p.Category,
			PurchasePrice:    p.PurchasePrice,
			DistributorPrice: p.DistributorPrice,
			SuggestedPrice:   p.SuggestedPrice,
			ClientPrice:      p.ClientPrice,
			WarehouseStock:   p.WarehouseStock,
			StoreStock:       p.StoreStock,
			LowStockAlert:    p.LowStockAlert,
			Total:            acc.total,
			Recent:           acc.recent,
			Previous:         acc.previous,
			RecentAvgPrice:   utils.SafeDiv(acc.recentWeightedPriceSum, float64(acc.recent.Units)),
		}
		if b, ok := baselines[p.Category]; ok && p.Category != "" {
			agg.CategoryAvgPrice = utils.SafeDiv(b.weightedSum, b.units)
		}
		agg.Metrics = deriveMetrics(&agg, win)
		aggregates = append(aggregates, agg)
	}

	return aggregates, nil
}

func addRollup(r *models.SalesRollup, units int, revenue, profit float64) {
	r.Units += units
	r.SalesCount++
	r.Revenue += revenue
	r.Profit += profit
}

// deriveMetrics computes the per-product signals. Every ratio is guarded:
// zero denominators yield 0, except days-cover where nil marks "unknown".
func deriveMetrics(p *models.ProductAggregate, win AggregationWindow) models.ProductMetrics {
	m := models.ProductMetrics{}

	m.AvgDailyUnits = utils.SafeDiv(float64(p.Recent.Units), float64(win.RecentDays))
	m.DaysCover = utils.SafeDivPtr(float64(p.WarehouseStock), m.AvgDailyUnits)

	switch {
	case p.Previous.Units > 0:
		m.UnitsGrowthPct = utils.SafeDiv(float64(p.Recent.Units-p.Previous.Units), float64(p.Previous.Units)) * 100
	case p.Recent.Units > 0:
		m.UnitsGrowthPct = 100
	default:
		m.UnitsGrowthPct = 0
	}

	m.RecentMarginPct = utils.SafeDiv(p.Recent.Profit, p.Recent.Revenue) * 100
	if p.RecentAvgPrice > 0 {
		m.PriceVsCategoryPct = utils.SafeDiv(p.RecentAvgPrice-p.CategoryAvgPrice, p.CategoryAvgPrice) * 100
	}
	m.InventoryValue = utils.Round2(float64(p.WarehouseStock) * p.PurchasePrice)

	return m
}
