package service

import (
	"context"
	"database/sql"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/repository"
	"github.com/distriventas/dv_api/internal/utils"
)

// SaleStore is the ledger access the sale-write path needs.
type SaleStore interface {
	Create(sale *models.Sale) error
	GetByID(id int) (*models.Sale, error)
	GetAllPaged(filter *repository.SaleFilter) ([]models.Sale, int, error)
	UpdateProfitFields(sale *models.Sale) error
	FindIntegrityViolations() ([]models.Sale, error)
}

// SaleProductStore resolves the product a sale references.
type SaleProductStore interface {
	GetByID(id int) (*models.Product, error)
}

// SaleDistributorStore resolves the distributor a sale references.
type SaleDistributorStore interface {
	GetByID(id int) (*models.Distributor, error)
}

// CacheInvalidator is the slice of the recommendation cache the write path
// touches.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// SaleService implements the sale-write path: resolve the commission tier for
// the sale's distributor at write time, run the profit split exactly once,
// persist atomically, then invalidate derived caches.
type SaleService struct {
	sales        SaleStore
	products     SaleProductStore
	distributors SaleDistributorStore
	ranking      *RankingService
	recCache     CacheInvalidator
}

// NewSaleService constructs a SaleService.
func NewSaleService(sales SaleStore, products SaleProductStore, distributors SaleDistributorStore, ranking *RankingService, recCache CacheInvalidator) *SaleService {
	return &SaleService{
		sales:        sales,
		products:     products,
		distributors: distributors,
		ranking:      ranking,
		recCache:     recCache,
	}
}

// CreateSaleInput is the request payload of the sale-write path. The
// purchase price always comes from the catalog, never from the caller.
type CreateSaleInput struct {
	DistributorID *int                 `json:"distributorId"`
	ProductID     int                  `json:"productId" binding:"required"`
	Quantity      int                  `json:"quantity" binding:"required"`
	SalePrice     float64              `json:"salePrice" binding:"required"`
	PaymentStatus models.PaymentStatus `json:"paymentStatus"`
	SaleDate      *time.Time           `json:"saleDate"`
}

// CreateSale registers a sale with its commission tier and profit split fixed
// at this moment. The resolved percentage is stored on the record so the
// split stays reproducible when the ranking moves later.
func (s *SaleService) CreateSale(ctx context.Context, in CreateSaleInput) (*models.Sale, error) {
	if in.Quantity < 1 {
		return nil, utils.ErrInvalidQuantity
	}

	product, err := s.products.GetByID(in.ProductID)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrProductNotFound
		}
		return nil, err
	}

	saleDate := time.Now()
	if in.SaleDate != nil {
		saleDate = *in.SaleDate
	}
	status := in.PaymentStatus
	if status == "" {
		status = models.PaymentPending
	}

	tier := models.CommissionTier{}
	if in.DistributorID != nil {
		if _, err := s.distributors.GetByID(*in.DistributorID); err != nil {
			if err == sql.ErrNoRows {
				return nil, utils.ErrDistributorNotFound
			}
			return nil, err
		}
		tier, err = s.ranking.ResolveTier(ctx, *in.DistributorID, saleDate)
		if err != nil {
			return nil, err
		}
	}

	split := ComputeProfitSplit(ProfitInput{
		Quantity:       in.Quantity,
		PurchasePrice:  product.PurchasePrice,
		SalePrice:      in.SalePrice,
		DistributorPct: tier.DistributorProfitPct,
		HouseSale:      in.DistributorID == nil,
	})

	sale := &models.Sale{
		DistributorID:        in.DistributorID,
		ProductID:            in.ProductID,
		Quantity:             in.Quantity,
		PurchasePrice:        product.PurchasePrice,
		SalePrice:            in.SalePrice,
		CommissionBonusPct:   tier.CommissionBonusPct,
		DistributorProfitPct: tier.DistributorProfitPct,
		DistributorProfit:    split.DistributorProfit,
		AdminProfit:          split.AdminProfit,
		TotalProfit:          split.TotalProfit,
		PaymentStatus:        status,
		SaleDate:             saleDate,
	}

	if err := s.sales.Create(sale); err != nil {
		return nil, err
	}

	if err := s.recCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Int("sale_id", sale.ID).Msg("Cache invalidation failed after sale write")
	}

	log.Info().
		Int("sale_id", sale.ID).
		Float64("total_profit", sale.TotalProfit).
		Float64("distributor_pct", sale.DistributorProfitPct).
		Msg("Sale registered")
	return sale, nil
}

// GetSale returns one sale.
func (s *SaleService) GetSale(ctx context.Context, id int) (*models.Sale, error) {
	sale, err := s.sales.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrSaleNotFound
		}
		return nil, err
	}
	return sale, nil
}

// ListSales returns sales matching the filter with the total count.
func (s *SaleService) ListSales(ctx context.Context, filter *repository.SaleFilter) ([]models.Sale, int, error) {
	return s.sales.GetAllPaged(filter)
}

// RecomputeSale re-runs the profit split against the percentage stored on the
// sale. The repair path never consults the ranking: the stored percentage is
// the historical truth.
func (s *SaleService) RecomputeSale(ctx context.Context, id int) (*models.Sale, error) {
	sale, err := s.sales.GetByID(id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, utils.ErrSaleNotFound
		}
		return nil, err
	}

	split := ComputeProfitSplit(ProfitInput{
		Quantity:       sale.Quantity,
		PurchasePrice:  sale.PurchasePrice,
		SalePrice:      sale.SalePrice,
		DistributorPct: sale.DistributorProfitPct,
		HouseSale:      sale.IsHouseSale(),
	})
	sale.DistributorProfit = split.DistributorProfit
	sale.AdminProfit = split.AdminProfit
	sale.TotalProfit = split.TotalProfit
	if sale.IsHouseSale() {
		sale.DistributorProfitPct = 0
		sale.CommissionBonusPct = 0
	}

	if err := s.sales.UpdateProfitFields(sale); err != nil {
		return nil, err
	}

	if err := s.recCache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Int("sale_id", sale.ID).Msg("Cache invalidation failed after recompute")
	}

	log.Info().Int("sale_id", sale.ID).Msg("Sale profit fields recomputed")
	return sale, nil
}

// VerifyIntegrity scans the ledger for profit-split invariant violations and
// logs each as a data-integrity warning. It reports, it does not repair.
func (s *SaleService) VerifyIntegrity(ctx context.Context) ([]models.Sale, error) {
	violations, err := s.sales.FindIntegrityViolations()
	if err != nil {
		return nil, err
	}
	for _, v := range violations {
		log.Warn().
			Int("sale_id", v.ID).
			Float64("distributor_profit", v.DistributorProfit).
			Float64("admin_profit", v.AdminProfit).
			Float64("total_profit", v.TotalProfit).
			Msg("Profit split invariant violated, out-of-band edit suspected")
	}
	return violations, nil
}
