package models

import "time"

// Product represents a catalog entry sold either directly or through
// distributors. Price fields other than the purchase price are optional: the
// recommendation engine picks the first defined value when it needs a current
// price (client, suggested, distributor, then recent average).
type Product struct {
	ID               int       `db:"id" json:"id"`
	Name             string    `db:"name" json:"name"`
	Category         string    `db:"category" json:"category"`
	PurchasePrice    float64   `db:"purchase_price" json:"purchasePrice"`
	DistributorPrice *float64  `db:"distributor_price" json:"distributorPrice,omitempty"`
	SuggestedPrice   *float64  `db:"suggested_price" json:"suggestedPrice,omitempty"`
	ClientPrice      *float64  `db:"client_price" json:"clientPrice,omitempty"`
	WarehouseStock   int       `db:"warehouse_stock" json:"warehouseStock"`
	StoreStock       int       `db:"store_stock" json:"storeStock"`
	LowStockAlert    int       `db:"low_stock_alert" json:"lowStockAlert"`
	IsActive         bool      `db:"is_active" json:"isActive"`
	CreatedAt        time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt        time.Time `db:"updated_at" json:"updatedAt"`
}
