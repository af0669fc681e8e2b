package repository

import (
	"database/sql"

	"github.com/jmoiron/sqlx"

	"github.com/distriventas/dv_api/internal/models"
)

// AdminUserRepository handles data access for admin panel users.
type AdminUserRepository struct {
	db *sqlx.DB
}

// NewAdminUserRepository creates a new AdminUserRepository.
func NewAdminUserRepository(db *sqlx.DB) *AdminUserRepository {
	return &AdminUserRepository{db: db}
}

// GetByEmail returns an admin user by email.
func (r *AdminUserRepository) GetByEmail(email string) (*models.AdminUser, error) {
	const q = `SELECT * FROM admin_users WHERE email = $1 LIMIT 1`
	var u models.AdminUser
	if err := r.db.Get(&u, q, email); err != nil {
		if err == sql.ErrNoRows {
			return nil, sql.ErrNoRows
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts an admin user.
func (r *AdminUserRepository) Create(u *models.AdminUser) error {
	const q = `
        INSERT INTO admin_users (email, password_hash, name, is_active)
        VALUES ($1, $2, $3, $4)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRowx(q, u.Email, u.PasswordHash, u.Name, u.IsActive).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
}
