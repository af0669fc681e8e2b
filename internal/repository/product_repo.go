package repository

import (
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/distriventas/dv_api/internal/models"
)

// ProductRepository handles data access for the catalog.
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new ProductRepository.
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// GetAll returns all active products, optionally filtered by category.
// The assistant aggregator calls this once per generation run.
func (r *ProductRepository) GetAll(category string) ([]models.Product, error) {
	const q = `
        SELECT * FROM products
        WHERE ($1 = '' OR category = $1)
        AND is_active = true
        ORDER BY category, name`

	var products []models.Product
	if err := r.db.Select(&products, q, category); err != nil {
		return nil, err
	}
	return products, nil
}

// GetByID returns a single product by id.
func (r *ProductRepository) GetByID(id int) (*models.Product, error) {
	const q = `SELECT * FROM products WHERE id = $1 LIMIT 1`
	var p models.Product
	if err := r.db.Get(&p, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &p, nil
}

// GetAllPaged returns products with filters and pagination plus total count.
// Empty filters are ignored. Page begins at 1.
func (r *ProductRepository) GetAllPaged(category, search string, page, limit int) ([]models.Product, int, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 100 {
		limit = 100
	}
	offset := (page - 1) * limit

	baseWhere := `WHERE is_active = true`
	args := []interface{}{}
	argIdx := 1

	if category != "" {
		baseWhere += fmt.Sprintf(" AND category = $%d", argIdx)
		args = append(args, category)
		argIdx++
	}
	if search != "" {
		baseWhere += fmt.Sprintf(" AND name ILIKE $%d", argIdx)
		args = append(args, "%"+search+"%")
		argIdx++
	}

	countQuery := `SELECT COUNT(1) FROM products ` + baseWhere
	var total int
	if err := r.db.Get(&total, countQuery, args...); err != nil {
		return nil, 0, err
	}

	listQuery := fmt.Sprintf(`SELECT * FROM products %s ORDER BY category, name LIMIT $%d OFFSET $%d`,
		baseWhere, argIdx, argIdx+1)
	args = append(args, limit, offset)

	var products []models.Product
	if err := r.db.Select(&products, listQuery, args...); err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetDistinctCategories returns all distinct categories.
func (r *ProductRepository) GetDistinctCategories() ([]string, error) {
	const q = `SELECT DISTINCT category FROM products WHERE category != '' ORDER BY category`
	var categories []string
	if err := r.db.Select(&categories, q); err != nil {
		return nil, err
	}
	return categories, nil
}
