package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/distriventas/dv_api/internal/models"
)

// SaleRepository handles data access for the sales ledger.
type SaleRepository struct {
	db *sqlx.DB
}

// NewSaleRepository creates a new SaleRepository.
func NewSaleRepository(db *sqlx.DB) *SaleRepository {
	return &SaleRepository{db: db}
}

// SaleFilter holds optional filters for sale list queries.
type SaleFilter struct {
	DistributorID *int
	ProductID     *int
	PaymentStatus string
	From          *time.Time
	To            *time.Time
	Page          int
	Limit         int
}

// Create inserts a sale with its fully computed profit fields. The insert is a
// single statement so the profit split can never be partially persisted.
func (r *SaleRepository) Create(sale *models.Sale) error {
	const q = `
        INSERT INTO sales (
            distributor_id, product_id, quantity, purchase_price, sale_price,
            commission_bonus_pct, distributor_profit_pct, distributor_profit,
            admin_profit, total_profit, payment_status, sale_date
        ) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowx(q,
		sale.DistributorID,
		sale.ProductID,
		sale.Quantity,
		sale.PurchasePrice,
		sale.SalePrice,
		sale.CommissionBonusPct,
		sale.DistributorProfitPct,
		sale.DistributorProfit,
		sale.AdminProfit,
		sale.TotalProfit,
		sale.PaymentStatus,
		sale.SaleDate,
	).Scan(&sale.ID, &sale.CreatedAt, &sale.UpdatedAt)
}

// GetByID returns a single sale by id.
func (r *SaleRepository) GetByID(id int) (*models.Sale, error) {
	const q = `SELECT * FROM sales WHERE id = $1 LIMIT 1`
	var s models.Sale
	if err := r.db.Get(&s, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &s, nil
}

// GetAllPaged returns sales matching the filter with pagination and total count.
func (r *SaleRepository) GetAllPaged(filter *SaleFilter) ([]models.Sale, int, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	offset := (filter.Page - 1) * filter.Limit

	// Build dynamic WHERE clause
	baseWhere := `WHERE 1=1`
	args := []interface{}{}
	argIdx := 1

	if filter.DistributorID != nil {
		baseWhere += fmt.Sprintf(" AND distributor_id = $%d", argIdx)
		args = append(args, *filter.DistributorID)
		argIdx++
	}
	if filter.ProductID != nil {
		baseWhere += fmt.Sprintf(" AND product_id = $%d", argIdx)
		args = append(args, *filter.ProductID)
		argIdx++
	}
	if filter.PaymentStatus != "" {
		baseWhere += fmt.Sprintf(" AND payment_status = $%d", argIdx)
		args = append(args, filter.PaymentStatus)
		argIdx++
	}
	if filter.From != nil {
		baseWhere += fmt.Sprintf(" AND sale_date >= $%d", argIdx)
		args = append(args, *filter.From)
		argIdx++
	}
	if filter.To != nil {
		baseWhere += fmt.Sprintf(" AND sale_date <= $%d", argIdx)
		args = append(args, *filter.To)
		argIdx++
	}

	countQuery := `SELECT COUNT(1) FROM sales ` + baseWhere
	var total int
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT * FROM sales %s ORDER BY sale_date DESC, id DESC LIMIT $%d OFFSET $%d`,
		baseWhere, argIdx, argIdx+1)
	args = append(args, filter.Limit, offset)

	var sales []models.Sale
	if err := r.db.Select(&sales, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// FindConfirmedInRange returns confirmed sales whose sale_date falls inside
// [from, to], ordered by sale_date. The assistant aggregator reduces over this
// slice in one pass, so it is the only sales read a generation run needs.
func (r *SaleRepository) FindConfirmedInRange(from, to time.Time) ([]models.Sale, error) {
	const q = `
        SELECT * FROM sales
        WHERE payment_status = 'confirmed' AND sale_date >= $1 AND sale_date <= $2
        ORDER BY sale_date, id`

	var sales []models.Sale
	if err := r.db.Select(&sales, q, from, to); err != nil {
		return nil, err
	}
	return sales, nil
}

// AggregateDistributorRevenue groups confirmed, distributor-attached sales
// inside [from, to] by distributor, summing revenue (sale_price * quantity)
// and generated admin profit, ordered by revenue descending.
//
// Ties carry no secondary sort key: equal-revenue order is whatever the
// storage returns.
func (r *SaleRepository) AggregateDistributorRevenue(from, to time.Time) ([]models.RankingEntry, error) {
	const q = `
        SELECT
            s.distributor_id,
            d.name AS distributor_name,
            SUM(s.sale_price * s.quantity) AS total_revenue,
            SUM(s.admin_profit) AS total_admin_profit
        FROM sales s
        JOIN distributors d ON d.id = s.distributor_id
        WHERE s.payment_status = 'confirmed'
          AND s.distributor_id IS NOT NULL
          AND s.sale_date >= $1 AND s.sale_date <= $2
        GROUP BY s.distributor_id, d.name
        ORDER BY total_revenue DESC`

	var entries []models.RankingEntry
	if err := r.db.Select(&entries, q, from, to); err != nil {
		return nil, err
	}
	return entries, nil
}

// UpdateProfitFields persists recomputed profit fields for a sale in a single
// statement (the repair path).
func (r *SaleRepository) UpdateProfitFields(sale *models.Sale) error {
	const q = `
        UPDATE sales SET
            distributor_profit_pct = $2,
            commission_bonus_pct = $3,
            distributor_profit = $4,
            admin_profit = $5,
            total_profit = $6,
            updated_at = NOW()
        WHERE id = $1
        RETURNING updated_at`

	return r.db.QueryRowx(q,
		sale.ID,
		sale.DistributorProfitPct,
		sale.CommissionBonusPct,
		sale.DistributorProfit,
		sale.AdminProfit,
		sale.TotalProfit,
	).Scan(&sale.UpdatedAt)
}

// FindIntegrityViolations returns sales whose stored profit fields break the
// split invariants. Production writes always go through the calculator, so
// hits here mean out-of-band edits.
func (r *SaleRepository) FindIntegrityViolations() ([]models.Sale, error) {
	const q = `
        SELECT * FROM sales
        WHERE ROUND(distributor_profit + admin_profit, 2) <> ROUND(total_profit, 2)
           OR (distributor_id IS NULL AND (distributor_profit <> 0 OR distributor_profit_pct <> 0))
        ORDER BY id`

	var sales []models.Sale
	if err := r.db.Select(&sales, q); err != nil {
		return nil, err
	}
	return sales, nil
}
