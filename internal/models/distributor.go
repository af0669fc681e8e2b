package models

import "time"

// Distributor represents a registered reseller in the sales network.
// The API key authenticates the distributor on the sale-write endpoints and is
// omitted from JSON responses unless explicitly requested.
type Distributor struct {
	ID        int       `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Email     string    `db:"email" json:"email"`
	Phone     string    `db:"phone" json:"phone"`
	APIKey    string    `db:"api_key" json:"apiKey,omitempty"`
	IsActive  bool      `db:"is_active" json:"isActive"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"updatedAt"`
}
