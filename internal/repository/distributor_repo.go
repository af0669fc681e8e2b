package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/distriventas/dv_api/internal/models"
)

// DistributorRepository handles data access for distributors.
type DistributorRepository struct {
	db *sqlx.DB
}

// NewDistributorRepository creates a new DistributorRepository.
func NewDistributorRepository(db *sqlx.DB) *DistributorRepository {
	return &DistributorRepository{db: db}
}

// Create inserts a distributor and fills in generated fields.
func (r *DistributorRepository) Create(d *models.Distributor) error {
	const q = `
        INSERT INTO distributors (name, email, phone, api_key, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowx(q, d.Name, d.Email, d.Phone, d.APIKey, d.IsActive).
		Scan(&d.ID, &d.CreatedAt, &d.UpdatedAt)
}

// GetByID returns a distributor by id.
func (r *DistributorRepository) GetByID(id int) (*models.Distributor, error) {
	const q = `SELECT * FROM distributors WHERE id = $1 LIMIT 1`
	var d models.Distributor
	if err := r.db.Get(&d, q, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &d, nil
}

// GetByAPIKey returns an active distributor matching the API key.
func (r *DistributorRepository) GetByAPIKey(apiKey string) (*models.Distributor, error) {
	const q = `SELECT * FROM distributors WHERE api_key = $1 AND is_active = true LIMIT 1`
	var d models.Distributor
	if err := r.db.Get(&d, q, apiKey); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &d, nil
}

// GetAll returns all distributors ordered by name.
func (r *DistributorRepository) GetAll() ([]models.Distributor, error) {
	const q = `SELECT * FROM distributors ORDER BY name`
	var out []models.Distributor
	if err := r.db.Select(&out, q); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateAPIKey replaces a distributor's API key.
func (r *DistributorRepository) UpdateAPIKey(id int, apiKey string) error {
	const q = `UPDATE distributors SET api_key = $2, updated_at = NOW() WHERE id = $1`
	res, err := r.db.Exec(q, id, apiKey)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
