package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/distriventas/dv_api/internal/models"
	"github.com/distriventas/dv_api/internal/repository"
	"github.com/distriventas/dv_api/internal/utils"
)

type fakeSaleStore struct {
	created *models.Sale
	byID    map[int]*models.Sale
	updated *models.Sale
}

func (f *fakeSaleStore) Create(sale *models.Sale) error {
	sale.ID = 101
	f.created = sale
	return nil
}

func (f *fakeSaleStore) GetByID(id int) (*models.Sale, error) {
	if s, ok := f.byID[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, sql.ErrNoRows
}

func (f *fakeSaleStore) GetAllPaged(filter *repository.SaleFilter) ([]models.Sale, int, error) {
	return nil, 0, nil
}

func (f *fakeSaleStore) UpdateProfitFields(sale *models.Sale) error {
	f.updated = sale
	return nil
}

func (f *fakeSaleStore) FindIntegrityViolations() ([]models.Sale, error) {
	return nil, nil
}

type fakeProductStore struct {
	products map[int]*models.Product
}

func (f *fakeProductStore) GetByID(id int) (*models.Product, error) {
	if p, ok := f.products[id]; ok {
		return p, nil
	}
	return nil, sql.ErrNoRows
}

type fakeDistributorStore struct {
	distributors map[int]*models.Distributor
}

func (f *fakeDistributorStore) GetByID(id int) (*models.Distributor, error) {
	if d, ok := f.distributors[id]; ok {
		return d, nil
	}
	return nil, sql.ErrNoRows
}

type spyInvalidator struct {
	calls int
}

func (s *spyInvalidator) Invalidate(context.Context) error {
	s.calls++
	return nil
}

func newSaleFixture(rankings []models.RankingEntry) (*SaleService, *fakeSaleStore, *spyInvalidator) {
	sales := &fakeSaleStore{byID: map[int]*models.Sale{}}
	products := &fakeProductStore{products: map[int]*models.Product{
		1: {ID: 1, Name: "Serum", PurchasePrice: 10500},
	}}
	distributors := &fakeDistributorStore{distributors: map[int]*models.Distributor{
		7: {ID: 7, Name: "Ana"},
	}}
	invalidator := &spyInvalidator{}
	ranking := newTestRankingService(&fakeRankingStore{entries: rankings})
	svc := NewSaleService(sales, products, distributors, ranking, invalidator)
	return svc, sales, invalidator
}

func TestCreateSaleResolvesTierAtWriteTime(t *testing.T) {
	svc, sales, invalidator := newSaleFixture([]models.RankingEntry{
		{DistributorID: 7, TotalRevenue: 900000},
	})
	distID := 7

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		DistributorID: &distID,
		ProductID:     1,
		Quantity:      1,
		SalePrice:     22000,
	})
	require.NoError(t, err)

	// Top of the ranking: 25% share plus 5% bonus, fixed on the record.
	assert.Equal(t, 25.0, sale.DistributorProfitPct)
	assert.Equal(t, 5.0, sale.CommissionBonusPct)
	assert.Equal(t, 5500.0, sale.DistributorProfit)
	assert.Equal(t, 6000.0, sale.AdminProfit)
	assert.Equal(t, 11500.0, sale.TotalProfit)
	assert.Equal(t, 10500.0, sale.PurchasePrice, "purchase price comes from the catalog")
	assert.Equal(t, models.PaymentPending, sale.PaymentStatus)

	assert.NotNil(t, sales.created)
	assert.Equal(t, 1, invalidator.calls)
}

func TestCreateSaleUnrankedDistributorDefaultTier(t *testing.T) {
	svc, _, _ := newSaleFixture(nil)
	distID := 7

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		DistributorID: &distID,
		ProductID:     1,
		Quantity:      1,
		SalePrice:     22000,
	})
	require.NoError(t, err)
	assert.Equal(t, 20.0, sale.DistributorProfitPct)
	assert.Equal(t, 0.0, sale.CommissionBonusPct)
}

func TestCreateHouseSale(t *testing.T) {
	svc, _, _ := newSaleFixture([]models.RankingEntry{
		{DistributorID: 7, TotalRevenue: 900000},
	})

	sale, err := svc.CreateSale(context.Background(), CreateSaleInput{
		ProductID: 1,
		Quantity:  1,
		SalePrice: 22000,
	})
	require.NoError(t, err)

	assert.Nil(t, sale.DistributorID)
	assert.Equal(t, 0.0, sale.DistributorProfit)
	assert.Equal(t, 11500.0, sale.AdminProfit)
	assert.Equal(t, sale.TotalProfit, sale.AdminProfit)
}

func TestCreateSaleValidation(t *testing.T) {
	svc, _, _ := newSaleFixture(nil)
	distID := 99

	_, err := svc.CreateSale(context.Background(), CreateSaleInput{ProductID: 1, Quantity: 0, SalePrice: 100})
	assert.ErrorIs(t, err, utils.ErrInvalidQuantity)

	_, err = svc.CreateSale(context.Background(), CreateSaleInput{ProductID: 42, Quantity: 1, SalePrice: 100})
	assert.ErrorIs(t, err, utils.ErrProductNotFound)

	_, err = svc.CreateSale(context.Background(), CreateSaleInput{DistributorID: &distID, ProductID: 1, Quantity: 1, SalePrice: 100})
	assert.ErrorIs(t, err, utils.ErrDistributorNotFound)
}

func TestRecomputeSaleUsesStoredPercentage(t *testing.T) {
	svc, sales, _ := newSaleFixture(nil)
	distID := 7

	// Stored with 25% from a period long gone; the ranking is empty now.
	sales.byID[55] = &models.Sale{
		ID:                   55,
		DistributorID:        &distID,
		ProductID:            1,
		Quantity:             1,
		PurchasePrice:        10500,
		SalePrice:            22000,
		DistributorProfitPct: 25,
		DistributorProfit:    9999, // corrupted out of band
		SaleDate:             time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	sale, err := svc.RecomputeSale(context.Background(), 55)
	require.NoError(t, err)

	assert.Equal(t, 25.0, sale.DistributorProfitPct, "stored percentage is authoritative")
	assert.Equal(t, 5500.0, sale.DistributorProfit)
	assert.Equal(t, 6000.0, sale.AdminProfit)
	require.NotNil(t, sales.updated)
}

func TestRecomputeHouseSaleClearsDistributorFields(t *testing.T) {
	svc, sales, _ := newSaleFixture(nil)

	sales.byID[56] = &models.Sale{
		ID:                   56,
		ProductID:            1,
		Quantity:             2,
		PurchasePrice:        100,
		SalePrice:            150,
		DistributorProfitPct: 25, // inconsistent for a house sale
		CommissionBonusPct:   5,
	}

	sale, err := svc.RecomputeSale(context.Background(), 56)
	require.NoError(t, err)

	assert.Equal(t, 0.0, sale.DistributorProfitPct)
	assert.Equal(t, 0.0, sale.CommissionBonusPct)
	assert.Equal(t, 0.0, sale.DistributorProfit)
	assert.Equal(t, 100.0, sale.AdminProfit)
}
